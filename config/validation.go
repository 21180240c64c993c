package config

import (
	"errors"
	"fmt"
	"strings"

	exif_scanner "github.com/bondhansarker/exif_scanner"
)

// ValidationError collects every invalid setting found.
type ValidationError struct {
	Errors []error
}

func (ve *ValidationError) Error() string {
	msgs := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		msgs = append(msgs, err.Error())
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

func (ve *ValidationError) Unwrap() []error {
	return ve.Errors
}

func (c *Config) Validate() error {
	var errs []error

	if c.Bucket.S3 == nil || c.Bucket.S3.BucketName == "" {
		errs = append(errs, errors.New("S3 bucket name is required"))
	}
	if c.Bucket.S3 != nil && c.Bucket.S3.Region == "" {
		errs = append(errs, errors.New("AWS region is required"))
	}
	if (c.Bucket.AccessKeyID == "") != (c.Bucket.SecretAccessKey == "") {
		errs = append(errs, errors.New("AWS access key ID and secret access key must be set together"))
	}
	if len(c.Scan.Extensions) == 0 {
		errs = append(errs, errors.New("at least one image extension is required"))
	}
	if c.Scan.URLExpiry <= 0 || c.Scan.URLExpiry > maxURLExpiry {
		errs = append(errs, fmt.Errorf("URL expiry must be within (0, %s], got %s", maxURLExpiry, c.Scan.URLExpiry))
	}
	if c.Scan.Retry.Attempts < 1 {
		errs = append(errs, fmt.Errorf("retry attempts must be at least 1, got %d", c.Scan.Retry.Attempts))
	}
	if c.Scan.Retry.Delay < 0 {
		errs = append(errs, fmt.Errorf("retry delay must not be negative, got %s", c.Scan.Retry.Delay))
	}
	if c.Scan.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Scan.Concurrency))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout))
	}
	switch c.Scan.Source {
	case exif_scanner.SourcePresigned, exif_scanner.SourceSDK:
	default:
		errs = append(errs, fmt.Errorf("unknown source %q", c.Scan.Source))
	}
	switch c.Log.Format {
	case FormatConsole, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
