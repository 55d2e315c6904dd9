package storage

import "context"

// BlobStore is the minimal key-value text store the calendar persists into.
// Get reports found=false for a missing key instead of an error; callers
// treat missing or unreadable blobs as empty state, never as fatal.
type BlobStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
