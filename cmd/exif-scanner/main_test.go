package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	exif_scanner "github.com/bondhansarker/exif_scanner"
	"github.com/bondhansarker/exif_scanner/bucket"
	"github.com/bondhansarker/exif_scanner/config"
)

// pagedBucket serves pages keyed by continuation token and fails on listErr tokens.
type pagedBucket struct {
	pages   map[string]*bucket.Page
	listErr map[string]error
}

func (b *pagedBucket) ListPage(_ context.Context, req bucket.PageRequest) (*bucket.Page, error) {
	if err := b.listErr[req.ContinuationToken]; err != nil {
		return nil, err
	}
	page, ok := b.pages[req.ContinuationToken]
	if !ok {
		return nil, errors.New("unexpected page request " + req.ContinuationToken)
	}
	return page, nil
}

func (b *pagedBucket) PresignGet(_ context.Context, _, _ string, _ time.Duration) (string, error) {
	return "", errors.New("presigning not expected")
}

func (b *pagedBucket) Download(_ context.Context, _, key string) ([]byte, error) {
	return []byte(key), nil
}

type stubFetcher struct{}

func (stubFetcher) Fetch(context.Context, string) ([]byte, error) {
	return nil, errors.New("fetch not expected")
}

type stubParser struct{}

func (stubParser) Parse(fileObject *exif_scanner.FileObject) (*exif_scanner.Metadata, error) {
	return &exif_scanner.Metadata{
		Key:        fileObject.ObjectKey(),
		Structured: &exif_scanner.StructuredFileMetadata{Type: exif_scanner.Photo},
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Scan: exif_scanner.Options{
			Bucket: "test-bucket",
			Source: exif_scanner.SourceSDK,
			Retry:  exif_scanner.RetryPolicy{Attempts: 1},
		},
	}
}

func TestScan_ListingFailureStillReportsSummary(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := &pagedBucket{
		pages: map[string]*bucket.Page{
			"": {
				Objects:               []bucket.Object{{Key: "a.jpg"}, {Key: "notes.txt"}, {Key: "b.png"}},
				IsTruncated:           true,
				NextContinuationToken: "T1",
			},
		},
		listErr: map[string]error{"T1": errors.New("access denied")},
	}

	err := scan(context.Background(), testConfig(), zap.New(core), b, stubFetcher{}, stubParser{})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("Error in listing S3 objects").Len())
	assert.Zero(t, logs.FilterMessage("Scan interrupted").Len())

	completed := logs.FilterMessage("Listing completed.").All()
	require.Len(t, completed, 1)
	fields := completed[0].ContextMap()
	assert.EqualValues(t, 1, fields["pages"])
	assert.EqualValues(t, 3, fields["listed"])
	assert.EqualValues(t, 2, fields["matched"])
	assert.EqualValues(t, 2, fields["processed"])
	assert.EqualValues(t, 0, fields["failed"])
}

func TestScan_FirstPageFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := &pagedBucket{listErr: map[string]error{"": errors.New("no such bucket")}}

	err := scan(context.Background(), testConfig(), zap.New(core), b, stubFetcher{}, stubParser{})
	require.NoError(t, err)

	completed := logs.FilterMessage("Listing completed.").All()
	require.Len(t, completed, 1)
	assert.EqualValues(t, 0, completed[0].ContextMap()["pages"])
	assert.EqualValues(t, 0, completed[0].ContextMap()["listed"])
}

func TestScan_CancelledContextIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := scan(ctx, testConfig(), zap.New(core), &pagedBucket{}, stubFetcher{}, stubParser{})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("Scan interrupted").Len())
	assert.Equal(t, 1, logs.FilterMessage("Listing completed.").Len())
}
