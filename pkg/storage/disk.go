// Package storage keeps uploaded files (product images) on named disks.
// The "local" disk writes under STORAGE_LOCAL_ROOT; the "s3" disk is
// registered when S3_BUCKET is set and works with AWS, MinIO or R2.
// STORAGE_DISK picks the default.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open for keys that do not exist.
var ErrNotFound = errors.New("storage: object not found")

// Disk stores objects under slash-separated keys.
type Disk interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
	URL(key string) string
}
