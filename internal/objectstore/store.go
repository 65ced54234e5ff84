// Package objectstore uploads and downloads backup blobs.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var (
	ErrObjectTooLarge         = errors.New("object exceeds bucket size limit")
	ErrContentTypeNotAllowed  = errors.New("content type not allowed in bucket")
	ErrInvalidPayloadEncoding = errors.New("payload is not valid UTF-8 text")
)

// BucketOptions are applied when a bucket is created.
type BucketOptions struct {
	Public    bool
	SizeLimit int64
	MimeTypes []string
}

// UploadOptions control a single upload. Without Upsert an existing key is
// never overwritten and the upload fails with common.ErrObjectExists.
type UploadOptions struct {
	ContentType string
	Upsert      bool
}

type Store interface {
	ListBuckets(ctx context.Context) ([]string, error)
	CreateBucket(ctx context.Context, name string, opts BucketOptions) error
	Upload(ctx context.Context, bucket, key string, data []byte, opts UploadOptions) error
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// ReadAll drains a downloaded object into text. Whatever shape the
// transport hands back (one buffer or many chunks) ends up as one string;
// bytes that are not UTF-8 are reported rather than replaced.
func ReadAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read object: %w", err)
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidPayloadEncoding
	}
	return string(b), nil
}
