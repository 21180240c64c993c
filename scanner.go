package exif_scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bondhansarker/exif_scanner/bucket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source selects how object bytes are retrieved.
type Source string

const (
	// SourcePresigned fetches each object over HTTP through a signed URL.
	SourcePresigned Source = "presigned"
	// SourceSDK downloads each object with the S3 transfer manager.
	SourceSDK Source = "sdk"
)

const DefaultURLExpiry = 60 * time.Second

type Options struct {
	Bucket     string
	Prefix     string
	StartAfter string
	Extensions []string
	URLExpiry  time.Duration
	Retry      RetryPolicy
	// Concurrency is the number of objects of one page processed at once.
	Concurrency int
	Source      Source
}

func (o *Options) setDefaults() {
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultImageExtensions
	}
	if o.URLExpiry <= 0 {
		o.URLExpiry = DefaultURLExpiry
	}
	if o.Retry == (RetryPolicy{}) {
		o.Retry = DefaultRetryPolicy()
	}
	if o.Retry.Attempts < 1 {
		o.Retry.Attempts = 1
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.Source == "" {
		o.Source = SourcePresigned
	}
}

// Summary counts what one run saw.
type Summary struct {
	Pages     int
	Listed    int
	Matched   int
	Processed int
	Failed    int
}

// Scanner walks a bucket page by page and extracts the metadata of every
// image object it finds.
type Scanner struct {
	bucket  bucket.IBucketImplementation
	fetcher Fetcher
	parser  Parser
	filter  *KeyFilter
	logger  *zap.Logger
	opts    Options
}

func NewScanner(b bucket.IBucketImplementation, fetcher Fetcher, parser Parser, logger *zap.Logger, opts Options) (*Scanner, error) {
	if b == nil || parser == nil {
		return nil, errors.New("scanner: bucket and parser are required")
	}
	opts.setDefaults()
	if opts.Source == SourcePresigned && fetcher == nil {
		return nil, errors.New("scanner: presigned source requires a fetcher")
	}
	if opts.Source != SourcePresigned && opts.Source != SourceSDK {
		return nil, fmt.Errorf("scanner: unknown source %q", opts.Source)
	}
	filter, err := NewKeyFilter(opts.Extensions)
	if err != nil {
		return nil, fmt.Errorf("scanner: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		bucket:  b,
		fetcher: fetcher,
		parser:  parser,
		filter:  filter,
		logger:  logger,
		opts:    opts,
	}, nil
}

// Match reports whether key names an image object.
func (s *Scanner) Match(key string) bool {
	return s.filter.Match(key)
}

// Run enumerates the configured bucket until the listing is exhausted.
// A listing failure ends the run and is returned as an ErrListing error;
// object failures are logged, counted, and skipped.
func (s *Scanner) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	req := bucket.PageRequest{
		Bucket:     s.opts.Bucket,
		Prefix:     s.opts.Prefix,
		StartAfter: s.opts.StartAfter,
	}

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		page, err := s.bucket.ListPage(ctx, req)
		if err != nil {
			lerr := newListingError(s.opts.Bucket, err)
			s.logger.Error("Error in listing S3 objects",
				zap.Int("page", summary.Pages+1),
				zap.Error(lerr))
			return summary, lerr
		}
		summary.Pages++
		summary.Listed += len(page.Objects)

		s.processPage(ctx, page, &summary)

		if !page.HasNext() {
			return summary, nil
		}
		req.ContinuationToken = page.NextContinuationToken
	}
}

// processPage returns only once every dispatched object has finished.
func (s *Scanner) processPage(ctx context.Context, page *bucket.Page, summary *Summary) {
	var (
		mu        sync.Mutex
		processed int
		failed    int
	)
	g := new(errgroup.Group)
	g.SetLimit(s.opts.Concurrency)

	for _, obj := range page.Objects {
		if !s.filter.Match(obj.Key) {
			s.logger.Debug("Skipping non-image object", zap.String("key", obj.Key))
			continue
		}
		if ctx.Err() != nil {
			break
		}
		summary.Matched++
		s.logger.Info("Image found", zap.String("key", obj.Key), zap.Int64("size", obj.Size))

		key := obj.Key
		g.Go(func() error {
			_, err := s.ProcessObject(ctx, s.opts.Bucket, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
			} else {
				processed++
			}
			return nil
		})
	}
	_ = g.Wait()

	summary.Processed += processed
	summary.Failed += failed
}

// ProcessObject retrieves one object and logs its metadata. Retrieval and
// parsing are retried together under the configured policy.
func (s *Scanner) ProcessObject(ctx context.Context, bucketName, key string) (*Metadata, error) {
	logger := s.logger.With(zap.String("key", key))

	var fetch func() ([]byte, error)
	switch s.opts.Source {
	case SourceSDK:
		fetch = func() ([]byte, error) {
			return s.bucket.Download(ctx, bucketName, key)
		}
	default:
		url, err := s.bucket.PresignGet(ctx, bucketName, key, s.opts.URLExpiry)
		if err != nil {
			ferr := newFetchError("presign", bucketName, key, err)
			logger.Error("Failed to process object", zap.Error(ferr))
			return nil, ferr
		}
		fetch = func() ([]byte, error) {
			return s.fetcher.Fetch(ctx, url)
		}
	}

	md, err := Retry(ctx, logger, s.opts.Retry, func() (*Metadata, error) {
		data, err := fetch()
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		return s.parser.Parse(NewFileObject(key, data))
	})
	if err != nil {
		ferr := newFetchError("process", bucketName, key, err)
		logger.Error("Failed to process object",
			zap.Int("attempts", s.opts.Retry.Attempts),
			zap.Error(ferr))
		return nil, ferr
	}

	logger.Info("Metadata extracted",
		zap.Any("structured", md.Structured),
		zap.Any("tags", md.Tags))
	if len(md.Warnings) > 0 {
		logger.Debug("Incomplete structured metadata", zap.Strings("warnings", md.Warnings))
	}
	return md, nil
}
