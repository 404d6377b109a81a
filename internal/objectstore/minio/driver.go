// Package minio provides a MinIO implementation of objectstore.Client.
//
// Usage:
//
//	cfg := objectstore.DefaultConfig("minioadmin", "minioadmin")
//	cfg.Provider = objectstore.ProviderMinIO
//	cfg.Endpoint = "localhost:9000"
//	client, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer client.Close()
package minio

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/koustreak/blobkit/internal/errs"
	"github.com/koustreak/blobkit/internal/objectstore"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// defaultPageSize matches the S3 ListObjectsV2 default.
const defaultPageSize = objectstore.MaxPageSize

// Driver is a MinIO implementation of objectstore.Client.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client   *miniogo.Client
	pageSize int
}

// New builds a MinIO client from cfg. No request is sent; use Ping to check
// reachability.
func New(_ context.Context, cfg *objectstore.Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		Secure: cfg.UseSSL,
		Region: cfg.RegionOrDefault(),
	}
	if cfg.ForcePathStyle {
		opts.BucketLookup = miniogo.BucketLookupPath
	}

	client, err := miniogo.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConfiguration, "failed to create minio client", err)
	}

	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}

	return &Driver{client: client, pageSize: pageSize}, nil
}

// --- objectstore.Client implementation ---

// Ping verifies the MinIO server is reachable by listing buckets.
func (d *Driver) Ping(ctx context.Context) error {
	if _, err := d.client.ListBuckets(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is a no-op: the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// PutObject uploads data in a single request.
func (d *Driver) PutObject(ctx context.Context, bucket, key string, data []byte, opts objectstore.PutOptions) error {
	_, err := d.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), miniogo.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	if err != nil {
		return mapError(err, "failed to put object")
	}
	return nil
}

// GetObject opens a streaming handle to the object at key inside bucket.
// minio-go defers the request until first use, so the object is stat'ed
// here to surface NoSuchKey before returning.
func (d *Driver) GetObject(ctx context.Context, bucket, key string) (objectstore.Object, error) {
	obj, err := d.client.GetObject(ctx, bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to get object")
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, mapError(err, "failed to get object")
	}

	return &object{
		ReadCloser: obj,
		info: &objectstore.ObjectInfo{
			Key:          key,
			Size:         stat.Size,
			ContentType:  stat.ContentType,
			ETag:         stat.ETag,
			LastModified: stat.LastModified,
		},
	}, nil
}

// StatObject returns metadata for the object at key inside bucket.
func (d *Driver) StatObject(ctx context.Context, bucket, key string) (*objectstore.ObjectInfo, error) {
	stat, err := d.client.StatObject(ctx, bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to stat object")
	}

	return &objectstore.ObjectInfo{
		Key:          stat.Key,
		Size:         stat.Size,
		ContentType:  stat.ContentType,
		ETag:         stat.ETag,
		LastModified: stat.LastModified,
	}, nil
}

// ListPage reads one page from the SDK's listing channel. The SDK paginates
// on its own, so the page is cut after limit objects; one extra object is
// read to decide whether the listing is truncated.
// The next token is the last key of the page, used as StartAfter.
func (d *Driver) ListPage(ctx context.Context, bucket string, opts objectstore.ListOptions) (*objectstore.Page, error) {
	limit := opts.PageLimit(d.pageSize)

	ctx, cancel := context.WithCancel(ctx)
	ch := d.client.ListObjects(ctx, bucket, miniogo.ListObjectsOptions{
		Prefix:     opts.Prefix,
		StartAfter: opts.Token,
		Recursive:  true,
		MaxKeys:    limit,
	})
	// The SDK goroutine exits only once its last send is received.
	defer func() {
		cancel()
		for range ch {
		}
	}()

	page := &objectstore.Page{Objects: make([]objectstore.ObjectInfo, 0, limit)}
	for obj := range ch {
		if obj.Err != nil {
			return nil, mapError(obj.Err, "failed to list objects")
		}
		if len(page.Objects) == limit {
			page.Truncated = true
			page.NextToken = page.Objects[limit-1].Key
			break
		}
		page.Objects = append(page.Objects, toObjectInfo(obj))
	}

	return page, nil
}

// PresignGetURL returns a time-limited public download URL for the object.
func (d *Driver) PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	u, err := d.client.PresignedGetObject(ctx, bucket, key, ttl, nil)
	if err != nil {
		return "", mapError(err, "failed to generate presigned URL")
	}
	return u.String(), nil
}

// --- internal types ---

func toObjectInfo(obj miniogo.ObjectInfo) objectstore.ObjectInfo {
	return objectstore.ObjectInfo{
		Key:          obj.Key,
		Size:         obj.Size,
		ContentType:  obj.ContentType,
		ETag:         obj.ETag,
		LastModified: obj.LastModified,
		IsDir:        objectstore.IsDirKey(obj.Key),
	}
}

// object wraps a MinIO GetObject response and exposes objectstore.Object.
type object struct {
	io.ReadCloser
	info *objectstore.ObjectInfo
}

func (o *object) Info() *objectstore.ObjectInfo {
	return o.info
}

var _ objectstore.Client = (*Driver)(nil)
