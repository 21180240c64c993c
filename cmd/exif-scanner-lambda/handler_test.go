package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	exif_scanner "github.com/bondhansarker/exif_scanner"
)

type call struct {
	bucket string
	key    string
}

type fakeProcessor struct {
	calls []call
	fail  map[string]bool
}

func (p *fakeProcessor) Match(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), ".jpg")
}

func (p *fakeProcessor) ProcessObject(_ context.Context, bucketName, key string) (*exif_scanner.Metadata, error) {
	p.calls = append(p.calls, call{bucket: bucketName, key: key})
	if p.fail[key] {
		return nil, errors.New("exhausted")
	}
	return &exif_scanner.Metadata{Key: key}, nil
}

func record(bucketName, key, decoded string) events.S3EventRecord {
	return events.S3EventRecord{
		EventName: "ObjectCreated:Put",
		S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: bucketName},
			Object: events.S3Object{Key: key, URLDecodedKey: decoded},
		},
	}
}

func TestHandle(t *testing.T) {
	p := &fakeProcessor{}
	h := &handler{processor: p, logger: zap.NewNop()}

	err := h.Handle(context.Background(), events.S3Event{Records: []events.S3EventRecord{
		record("photos", "summer+trip.JPG", "summer trip.JPG"),
		record("photos", "notes.txt", ""),
		record("archive", "old.jpg", ""),
	}})

	require.NoError(t, err)
	assert.Equal(t, []call{
		{bucket: "photos", key: "summer trip.JPG"},
		{bucket: "archive", key: "old.jpg"},
	}, p.calls)
}

func TestHandle_ReportsFailures(t *testing.T) {
	p := &fakeProcessor{fail: map[string]bool{"b.jpg": true}}
	h := &handler{processor: p, logger: zap.NewNop()}

	err := h.Handle(context.Background(), events.S3Event{Records: []events.S3EventRecord{
		record("photos", "a.jpg", ""),
		record("photos", "b.jpg", ""),
		record("photos", "readme.txt", ""),
		record("photos", "thumbs.db", ""),
	}})

	require.Error(t, err)
	assert.Equal(t, "1 of 2 objects failed", err.Error())
	assert.Len(t, p.calls, 2)
}
