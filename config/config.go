// Package config reads the process configuration once at startup from
// command-line flags and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	exif_scanner "github.com/bondhansarker/exif_scanner"
	"github.com/bondhansarker/exif_scanner/bucket"
)

// DefaultBucketName is scanned when no bucket is configured.
const DefaultBucketName = "dev.cd1.incdatagate.cz"

// maxURLExpiry is the longest lifetime S3 accepts for a SigV4 signed URL.
const maxURLExpiry = 7 * 24 * time.Hour

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type LogConfig struct {
	Level  string
	Format string
}

type Config struct {
	Bucket       bucket.Config
	Scan         exif_scanner.Options
	FetchTimeout time.Duration
	Log          LogConfig
}

// HelpError is returned by Load when help was requested. It matches ff.ErrHelp.
type HelpError struct {
	Text string
}

func (e *HelpError) Error() string { return e.Text }

func (e *HelpError) Unwrap() error { return ff.ErrHelp }

type flagValues struct {
	accessKeyID     string
	secretAccessKey string
	sessionToken    string
	region          string
	bucketName      string
	endpoint        string
	forcePathStyle  bool
	prefix          string
	startAfter      string
	extensions      string
	urlExpiry       time.Duration
	retryAttempts   int
	retryDelay      time.Duration
	concurrency     int
	fetchTimeout    time.Duration
	source          string
	logLevel        string
	logFormat       string
}

func newFlagSet(name string, v *flagValues) *ff.FlagSet {
	fs := ff.NewFlagSet(name)
	fs.StringVar(&v.accessKeyID, 0, "aws-access-key-id", "", "AWS access key ID (default credential chain when empty)")
	fs.StringVar(&v.secretAccessKey, 0, "aws-secret-access-key", "", "AWS secret access key")
	fs.StringVar(&v.sessionToken, 0, "aws-session-token", "", "AWS session token")
	fs.StringVar(&v.region, 0, "aws-region", "us-east-1", "AWS region")
	fs.StringVar(&v.bucketName, 'b', "s3-bucket-name", DefaultBucketName, "bucket to scan")
	fs.StringVar(&v.endpoint, 0, "s3-endpoint", "", "S3-compatible endpoint URL")
	fs.BoolVar(&v.forcePathStyle, 0, "s3-force-path-style", "use path-style bucket addressing")
	fs.StringVar(&v.prefix, 'p', "s3-prefix", "", "only list keys under this prefix")
	fs.StringVar(&v.startAfter, 0, "s3-start-after", "", "start listing after this key")
	fs.StringVar(&v.extensions, 'e', "image-extensions", strings.Join(exif_scanner.DefaultImageExtensions, ","), "comma-separated image extensions")
	fs.DurationVar(&v.urlExpiry, 0, "url-expiry", exif_scanner.DefaultURLExpiry, "signed URL lifetime")
	fs.IntVar(&v.retryAttempts, 0, "retry-attempts", exif_scanner.DefaultRetryAttempts, "attempts per object")
	fs.DurationVar(&v.retryDelay, 0, "retry-delay", exif_scanner.DefaultRetryDelay, "fixed delay between attempts")
	fs.IntVar(&v.concurrency, 'c', "concurrency", 1, "objects of one page processed at once")
	fs.DurationVar(&v.fetchTimeout, 0, "fetch-timeout", exif_scanner.DefaultFetchTimeout, "HTTP fetch timeout")
	fs.StringVar(&v.source, 's', "source", string(exif_scanner.SourcePresigned), "object source: presigned or sdk")
	fs.StringVar(&v.logLevel, 0, "log-level", "info", "log level")
	fs.StringVar(&v.logFormat, 0, "log-format", FormatConsole, "log encoding: console or json")
	return fs
}

// Load parses args and the environment. Every flag can be set through the
// environment variable named after it, e.g. --s3-bucket-name as S3_BUCKET_NAME.
func Load(name string, args []string) (*Config, error) {
	var v flagValues
	fs := newFlagSet(name, &v)

	if err := ff.Parse(fs, args, ff.WithEnvVars()); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			return nil, &HelpError{Text: ffhelp.Flags(fs, name+" [FLAGS]").String()}
		}
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	cfg := &Config{
		Bucket: bucket.Config{
			S3: &bucket.S3Config{
				BucketName:     strings.TrimSpace(v.bucketName),
				Region:         v.region,
				Endpoint:       v.endpoint,
				ForcePathStyle: v.forcePathStyle,
				Prefix:         v.prefix,
				StartAfter:     v.startAfter,
			},
			AccessKeyID:     v.accessKeyID,
			SecretAccessKey: v.secretAccessKey,
			SessionToken:    v.sessionToken,
		},
		Scan: exif_scanner.Options{
			Bucket:      strings.TrimSpace(v.bucketName),
			Prefix:      v.prefix,
			StartAfter:  v.startAfter,
			Extensions:  splitList(v.extensions),
			URLExpiry:   v.urlExpiry,
			Retry:       exif_scanner.RetryPolicy{Attempts: v.retryAttempts, Delay: v.retryDelay},
			Concurrency: v.concurrency,
			Source:      exif_scanner.Source(v.source),
		},
		FetchTimeout: v.fetchTimeout,
		Log: LogConfig{
			Level:  v.logLevel,
			Format: v.logFormat,
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
