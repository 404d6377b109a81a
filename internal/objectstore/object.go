package objectstore

import (
	"io"
	"strings"
	"time"
)

// ObjectInfo describes a single object stored in a bucket.
type ObjectInfo struct {
	// Key is the full object path within the bucket (e.g. "statement/jan.csv").
	Key string `json:"key" yaml:"key"`

	// Size is the byte size of the object. -1 if unknown.
	Size int64 `json:"size" yaml:"size"`

	// ContentType is the MIME type (e.g. "application/pdf").
	// Listing responses usually leave it empty.
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`

	// ETag is the object's entity tag, as returned by the backend.
	ETag string `json:"etag,omitempty" yaml:"etag,omitempty"`

	// LastModified is when the object was last written.
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`

	// IsDir is true for directory markers (keys ending in "/").
	IsDir bool `json:"is_dir,omitempty" yaml:"is_dir,omitempty"`
}

// IsDirKey reports whether key is a directory marker.
func IsDirKey(key string) bool {
	return strings.HasSuffix(key, "/")
}

// Object is a streaming handle to an object's content.
// The caller MUST call Close() after reading to avoid resource leaks.
type Object interface {
	io.ReadCloser

	// Info returns the metadata for this object.
	Info() *ObjectInfo
}

// PutOptions controls how PutObject stores the payload.
type PutOptions struct {
	// ContentType is stored as object metadata. Providers pass it through
	// verbatim; resolution of an empty value happens above this layer.
	ContentType string
}

// ListOptions selects one page of a listing.
type ListOptions struct {
	// Prefix restricts results to keys starting with this string.
	// Use "" to list everything in the bucket.
	Prefix string

	// Token resumes a listing; pass Page.NextToken from the previous page.
	// "" starts from the beginning.
	Token string

	// Limit caps the number of objects in the page. 0 means the provider
	// default. Values above MaxPageSize are clamped.
	Limit int
}

// MaxPageSize is the most keys S3 returns in one ListObjectsV2 response.
const MaxPageSize = 1000

// PageLimit resolves the page size for o: Limit, or fallback when Limit is
// not positive, clamped to MaxPageSize. It returns 0 only when both are 0.
func (o ListOptions) PageLimit(fallback int) int {
	limit := o.Limit
	if limit <= 0 {
		limit = fallback
	}
	if limit <= 0 {
		return 0
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// Page is one page of a listing, in the order the service returned it.
type Page struct {
	Objects []ObjectInfo `json:"objects" yaml:"objects"`

	// NextToken resumes the listing after this page. Empty when not truncated.
	NextToken string `json:"next_token,omitempty" yaml:"next_token,omitempty"`

	// Truncated is true when more objects follow this page.
	Truncated bool `json:"truncated" yaml:"truncated"`
}

// Keys returns the page's object keys, skipping directory markers.
func (p *Page) Keys() []string {
	keys := make([]string, 0, len(p.Objects))
	for _, obj := range p.Objects {
		if obj.IsDir || IsDirKey(obj.Key) {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return keys
}
