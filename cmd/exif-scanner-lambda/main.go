package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	exif_scanner "github.com/bondhansarker/exif_scanner"
	"github.com/bondhansarker/exif_scanner/bucket"
	"github.com/bondhansarker/exif_scanner/config"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, err := config.Load("exif-scanner-lambda", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	cfg.Log.Format = config.FormatJSON

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx := context.Background()
	bucketClient, err := bucket.NewBucketImplementation(ctx, &cfg.Bucket, logger)
	if err != nil {
		logger.Error("Failed to create bucket client", zap.Error(err))
		return 1
	}

	// The exiftool process is shared across warm invocations.
	parser, err := exif_scanner.NewExiftoolParser()
	if err != nil {
		logger.Error("Failed to start exiftool", zap.Error(err))
		return 1
	}
	defer parser.Close()

	scanner, err := exif_scanner.NewScanner(bucketClient, exif_scanner.NewHTTPFetcher(cfg.FetchTimeout), parser, logger, cfg.Scan)
	if err != nil {
		logger.Error("Failed to create scanner", zap.Error(err))
		return 1
	}

	h := &handler{processor: scanner, logger: logger}
	lambda.Start(h.Handle)
	return 0
}
