package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"go.uber.org/zap"

	exif_scanner "github.com/bondhansarker/exif_scanner"
	"github.com/bondhansarker/exif_scanner/bucket"
	"github.com/bondhansarker/exif_scanner/config"
)

func main() {
	os.Exit(realMain())
}

// realMain returns the exit code so deferred cleanup runs before the process exits.
func realMain() int {
	cfg, err := config.Load("exif-scanner", os.Args[1:])
	var helpErr *config.HelpError
	switch {
	case errors.As(err, &helpErr):
		fmt.Fprintf(os.Stdout, "%s\n", helpErr.Text)
		return 0
	case errors.Is(err, ff.ErrHelp):
		return 0
	case err != nil:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Failed to start scan", zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	bucketClient, err := bucket.NewBucketImplementation(ctx, &cfg.Bucket, logger)
	if err != nil {
		return fmt.Errorf("failed to create bucket client: %w", err)
	}

	parser, err := exif_scanner.NewExiftoolParser()
	if err != nil {
		return err
	}
	defer parser.Close()

	return scan(ctx, cfg, logger, bucketClient, exif_scanner.NewHTTPFetcher(cfg.FetchTimeout), parser)
}

// scan runs one listing pass and always reports the summary, even when the
// listing stopped early.
func scan(ctx context.Context, cfg *config.Config, logger *zap.Logger, bucketClient bucket.IBucketImplementation, fetcher exif_scanner.Fetcher, parser exif_scanner.Parser) error {
	scanner, err := exif_scanner.NewScanner(bucketClient, fetcher, parser, logger, cfg.Scan)
	if err != nil {
		return err
	}

	logger.Info("Scanning bucket",
		zap.String("bucket", cfg.Scan.Bucket),
		zap.String("prefix", cfg.Scan.Prefix),
		zap.String("source", string(cfg.Scan.Source)),
		zap.Int("concurrency", cfg.Scan.Concurrency))

	// A listing failure has already been logged by the scanner and does not
	// change the outcome of the run.
	summary, err := scanner.Run(ctx)
	if err != nil && !errors.Is(err, exif_scanner.ErrListing) {
		logger.Warn("Scan interrupted", zap.Error(err))
	}

	logger.Info("Listing completed.",
		zap.Int("pages", summary.Pages),
		zap.Int("listed", summary.Listed),
		zap.Int("matched", summary.Matched),
		zap.Int("processed", summary.Processed),
		zap.Int("failed", summary.Failed))
	return nil
}
