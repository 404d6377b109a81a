// Package objectstore defines the provider-neutral contract for object
// storage backends.
//
// All providers (AWS S3, MinIO) implement the Client interface. The facade in
// internal/blob depends only on this package, never on a provider package
// directly.
//
// Usage:
//
//	cfg := objectstore.DefaultConfig(accessKey, secretKey)
//	client, err := s3.New(ctx, cfg)
//	if err != nil { ... }
//	defer client.Close()
//
//	page, err := client.ListPage(ctx, "invoices", objectstore.ListOptions{Prefix: "2024/"})
package objectstore

import (
	"context"
	"time"
)

// Client is the single interface all storage providers must implement.
// Implementations must be safe for concurrent use.
type Client interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// PutObject stores data under key inside bucket, replacing any existing
	// object. No existence or conditional check is made.
	PutObject(ctx context.Context, bucket, key string, data []byte, opts PutOptions) error

	// GetObject opens a streaming handle to the object at key inside bucket.
	// The caller MUST call Object.Close() after reading.
	GetObject(ctx context.Context, bucket, key string) (Object, error)

	// StatObject returns metadata for the object at key inside bucket
	// without downloading its content.
	StatObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)

	// ListPage returns a single page of the objects in bucket matching opts.
	ListPage(ctx context.Context, bucket string, opts ListOptions) (*Page, error)

	// PresignGetURL returns a time-limited URL that allows anyone to download
	// the object at key inside bucket without credentials.
	PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
