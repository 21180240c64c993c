package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	exif_scanner "github.com/bondhansarker/exif_scanner"
)

type objectProcessor interface {
	Match(key string) bool
	ProcessObject(ctx context.Context, bucketName, key string) (*exif_scanner.Metadata, error)
}

type handler struct {
	processor objectProcessor
	logger    *zap.Logger
}

// Handle inspects every image named by an S3 notification. A non-nil error
// makes Lambda redeliver the event.
func (h *handler) Handle(ctx context.Context, event events.S3Event) error {
	matched, failed := 0, 0
	for _, record := range event.Records {
		bucketName := record.S3.Bucket.Name
		key := record.S3.Object.URLDecodedKey
		if key == "" {
			key = record.S3.Object.Key
		}
		if !h.processor.Match(key) {
			h.logger.Debug("Skipping non-image object",
				zap.String("bucket", bucketName),
				zap.String("key", key))
			continue
		}
		matched++
		h.logger.Info("Image found",
			zap.String("bucket", bucketName),
			zap.String("key", key),
			zap.String("event", record.EventName))
		if _, err := h.processor.ProcessObject(ctx, bucketName, key); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d objects failed", failed, matched)
	}
	return nil
}
