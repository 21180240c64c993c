package exif_scanner

import (
	"errors"
	"fmt"
)

var (
	// ErrListing marks a failure to enumerate a page. It is never retried.
	ErrListing = errors.New("listing failed")
	// ErrFetch marks a failure to retrieve or decode one object.
	ErrFetch = errors.New("fetch or parse failed")
)

// Error carries the operation and object context of a scan failure.
type Error struct {
	Kind   error
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	case e.Bucket != "":
		return fmt.Sprintf("%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error's kind so callers can test errors.Is(err, ErrListing).
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func newListingError(bucketName string, err error) *Error {
	return &Error{Kind: ErrListing, Op: "list", Bucket: bucketName, Err: err}
}

func newFetchError(op, bucketName, key string, err error) *Error {
	return &Error{Kind: ErrFetch, Op: op, Bucket: bucketName, Key: key, Err: err}
}
