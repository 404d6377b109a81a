package blob

import (
	"context"
	"io"
	"time"

	"github.com/koustreak/blobkit/internal/errs"
	"github.com/koustreak/blobkit/internal/objectstore"
)

const (
	// DefaultPresignTTL applies when Presign is called with ttl <= 0.
	DefaultPresignTTL = 15 * time.Minute

	// MaxPresignTTL is the longest expiry SigV4 presigning allows.
	MaxPresignTTL = 7 * 24 * time.Hour
)

// Upload stores payload under key in bucket, replacing any existing object.
// An empty bucket means the default bucket. An empty contentType is
// resolved with ContentTypeFor.
func (f *Facade) Upload(ctx context.Context, payload []byte, bucket, key, contentType string) error {
	bucket, err := f.bucketOrDefault(bucket)
	log := f.opLog(ctx, "upload", bucket, key)
	if err != nil {
		return f.fail(log, "failed to upload object", err)
	}
	if key == "" {
		return f.fail(log, "failed to upload object", errs.New(errs.ErrKindInvalidInput, "key must not be empty"))
	}

	client, err := f.acquire(ctx)
	if err != nil {
		return f.fail(log, "storage client unavailable", err)
	}

	if contentType == "" {
		contentType = ContentTypeFor(key, payload, f.sniff)
	}

	if err := client.PutObject(ctx, bucket, key, payload, objectstore.PutOptions{ContentType: contentType}); err != nil {
		return f.fail(log, "failed to upload object", err)
	}

	log.InfoWith("uploaded object", map[string]interface{}{
		"uri":          URI(bucket, key),
		"content_type": contentType,
		"size":         len(payload),
	})
	return nil
}

// List returns the keys in the first listing page of bucket under prefix,
// in service order, without directory markers. Use Keys to walk every page.
func (f *Facade) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	page, err := f.listPage(ctx, "list", bucket, prefix, "", 0)
	if err != nil {
		return nil, err
	}
	return page.Keys(), nil
}

// ListPage returns one page of bucket under prefix. Pass "" as token for
// the first page and Page.NextToken afterwards. A limit of 0 uses the
// configured page size.
func (f *Facade) ListPage(ctx context.Context, bucket, prefix, token string, limit int) (*objectstore.Page, error) {
	return f.listPage(ctx, "list_page", bucket, prefix, token, limit)
}

func (f *Facade) listPage(ctx context.Context, op, bucket, prefix, token string, limit int) (*objectstore.Page, error) {
	bucket, err := f.bucketOrDefault(bucket)
	log := f.opLog(ctx, op, bucket, "").With().Str("prefix", prefix).Logger()
	if err != nil {
		return nil, f.fail(log, "failed to list objects", err)
	}
	if limit < 0 {
		return nil, f.fail(log, "failed to list objects", errs.New(errs.ErrKindInvalidInput, "limit must not be negative"))
	}

	client, err := f.acquire(ctx)
	if err != nil {
		return nil, f.fail(log, "storage client unavailable", err)
	}

	page, err := client.ListPage(ctx, bucket, objectstore.ListOptions{
		Prefix: prefix,
		Token:  token,
		Limit:  limit,
	})
	if err != nil {
		return nil, f.fail(log, "failed to list objects", err)
	}

	log.Debugf("listed %d objects (truncated=%t)", len(page.Objects), page.Truncated)
	return page, nil
}

// Keys returns a lazy iterator over every key in bucket under prefix,
// fetching pages on demand. Directory markers are skipped. Call Keys again
// to restart.
func (f *Facade) Keys(ctx context.Context, bucket, prefix string) *KeyIterator {
	return newKeyIterator(ctx, f, bucket, prefix)
}

// Download reads the whole object at key in bucket into memory.
// A missing key yields an error for which errs.IsNotFound is true.
func (f *Facade) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	bucket, err := f.bucketOrDefault(bucket)
	log := f.opLog(ctx, "download", bucket, key)
	if err != nil {
		return nil, f.fail(log, "failed to download object", err)
	}
	if key == "" {
		return nil, f.fail(log, "failed to download object", errs.New(errs.ErrKindInvalidInput, "key must not be empty"))
	}

	client, err := f.acquire(ctx)
	if err != nil {
		return nil, f.fail(log, "storage client unavailable", err)
	}

	obj, err := client.GetObject(ctx, bucket, key)
	if err != nil {
		if errs.IsNotFound(err) {
			log.WarnWith("object not found", err, map[string]interface{}{
				"kind": errs.ErrKindNotFound.String(),
				"uri":  URI(bucket, key),
			})
			return nil, err
		}
		return nil, f.fail(log, "failed to download object", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, f.fail(log, "failed to download object", errs.Wrap(errs.ErrKindService, "failed to read object body", err))
	}

	log.Debugf("downloaded %d bytes", len(data))
	return data, nil
}

// Stat returns the object's metadata without its body.
func (f *Facade) Stat(ctx context.Context, bucket, key string) (*objectstore.ObjectInfo, error) {
	bucket, err := f.bucketOrDefault(bucket)
	log := f.opLog(ctx, "stat", bucket, key)
	if err != nil {
		return nil, f.fail(log, "failed to stat object", err)
	}
	if key == "" {
		return nil, f.fail(log, "failed to stat object", errs.New(errs.ErrKindInvalidInput, "key must not be empty"))
	}

	client, err := f.acquire(ctx)
	if err != nil {
		return nil, f.fail(log, "storage client unavailable", err)
	}

	info, err := client.StatObject(ctx, bucket, key)
	if err != nil {
		if errs.IsNotFound(err) {
			log.WarnWith("object not found", err, map[string]interface{}{
				"kind": errs.ErrKindNotFound.String(),
			})
			return nil, err
		}
		return nil, f.fail(log, "failed to stat object", err)
	}
	return info, nil
}

// Presign returns a URL granting time-limited GET access to the object.
// A ttl <= 0 means DefaultPresignTTL.
func (f *Facade) Presign(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	bucket, err := f.bucketOrDefault(bucket)
	log := f.opLog(ctx, "presign", bucket, key)
	if err != nil {
		return "", f.fail(log, "failed to presign object", err)
	}
	if key == "" {
		return "", f.fail(log, "failed to presign object", errs.New(errs.ErrKindInvalidInput, "key must not be empty"))
	}
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}
	if ttl > MaxPresignTTL {
		return "", f.fail(log, "failed to presign object", errs.New(errs.ErrKindInvalidInput, "presign ttl exceeds 7 days"))
	}

	client, err := f.acquire(ctx)
	if err != nil {
		return "", f.fail(log, "storage client unavailable", err)
	}

	u, err := client.PresignGetURL(ctx, bucket, key, ttl)
	if err != nil {
		return "", f.fail(log, "failed to presign object", err)
	}
	return u, nil
}
