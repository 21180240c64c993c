package bucket

import (
	"context"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// IBucketImplementation is the object-storage collaborator used by the scanner.
type IBucketImplementation interface {
	// ListPage fetches exactly one page of a ListObjectsV2 enumeration.
	ListPage(ctx context.Context, req PageRequest) (*Page, error)
	// PresignGet returns a GET URL for one object valid for expiry.
	PresignGet(ctx context.Context, bucketName, objectKey string, expiry time.Duration) (string, error)
	// Download reads a whole object through the SDK.
	Download(ctx context.Context, bucketName, objectKey string) ([]byte, error)
}

// S3API is the subset of *s3.Client the implementation calls.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// PresignAPI is the subset of *s3.PresignClient the implementation calls.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	_ S3API      = (*s3.Client)(nil)
	_ PresignAPI = (*s3.PresignClient)(nil)
)

// PageRequest selects one listing page. ContinuationToken, when set, wins over StartAfter.
type PageRequest struct {
	Bucket            string
	Prefix            string
	StartAfter        string
	ContinuationToken string
	MaxKeys           int32
}

type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}

type Page struct {
	Objects               []Object
	IsTruncated           bool
	NextContinuationToken string
}

// HasNext reports whether another page must be requested.
func (p *Page) HasNext() bool {
	return p.IsTruncated && p.NextContinuationToken != ""
}
