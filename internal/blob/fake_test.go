package blob

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/koustreak/blobkit/internal/errs"
	"github.com/koustreak/blobkit/internal/objectstore"
)

// memClient implements objectstore.Client in memory for facade tests.
type memClient struct {
	mu       sync.Mutex
	buckets  map[string]map[string]memObject
	pageSize int
	failures map[string]error // op name → error returned once
	lists    int
	closed   int
}

type memObject struct {
	data        []byte
	contentType string
}

func newMemClient(buckets ...string) *memClient {
	m := &memClient{
		buckets:  map[string]map[string]memObject{},
		failures: map[string]error{},
	}
	for _, b := range buckets {
		m.buckets[b] = map[string]memObject{}
	}
	return m
}

// failOnce makes the next call to op return err.
func (m *memClient) failOnce(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = err
}

func (m *memClient) seed(bucket string, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.buckets[bucket][k] = memObject{data: []byte(k)}
	}
}

func (m *memClient) stored(bucket, key string) (memObject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.buckets[bucket][key]
	return obj, ok
}

func (m *memClient) injected(op string) error {
	if err, ok := m.failures[op]; ok {
		delete(m.failures, op)
		return err
	}
	return nil
}

func (m *memClient) bucket(name string) (map[string]memObject, error) {
	b, ok := m.buckets[name]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "no such bucket "+name)
	}
	return b, nil
}

func (m *memClient) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.injected("ping")
}

func (m *memClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func (m *memClient) PutObject(_ context.Context, bucket, key string, data []byte, opts objectstore.PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("put"); err != nil {
		return err
	}
	b, err := m.bucket(bucket)
	if err != nil {
		return err
	}
	b[key] = memObject{data: append([]byte(nil), data...), contentType: opts.ContentType}
	return nil
}

func (m *memClient) GetObject(_ context.Context, bucket, key string) (objectstore.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("get"); err != nil {
		return nil, err
	}
	b, err := m.bucket(bucket)
	if err != nil {
		return nil, err
	}
	obj, ok := b[key]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "no such key "+key)
	}
	return &memReader{
		ReadCloser: io.NopCloser(bytes.NewReader(obj.data)),
		info:       &objectstore.ObjectInfo{Key: key, Size: int64(len(obj.data)), ContentType: obj.contentType},
	}, nil
}

func (m *memClient) StatObject(_ context.Context, bucket, key string) (*objectstore.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.bucket(bucket)
	if err != nil {
		return nil, err
	}
	obj, ok := b[key]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "no such key "+key)
	}
	return &objectstore.ObjectInfo{Key: key, Size: int64(len(obj.data)), ContentType: obj.contentType}, nil
}

func (m *memClient) ListPage(_ context.Context, bucket string, opts objectstore.ListOptions) (*objectstore.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if err := m.injected("list"); err != nil {
		return nil, err
	}
	b, err := m.bucket(bucket)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit == 0 {
		limit = m.pageSize
	}
	if limit == 0 {
		limit = 1000
	}

	var keys []string
	for k := range b {
		if strings.HasPrefix(k, opts.Prefix) && k > opts.Token {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	page := &objectstore.Page{}
	if len(keys) > limit {
		keys = keys[:limit]
		page.Truncated = true
		page.NextToken = keys[len(keys)-1]
	}
	for _, k := range keys {
		page.Objects = append(page.Objects, objectstore.ObjectInfo{
			Key:   k,
			Size:  int64(len(b[k].data)),
			IsDir: objectstore.IsDirKey(k),
		})
	}
	return page, nil
}

func (m *memClient) PresignGetURL(_ context.Context, bucket, key string, ttl time.Duration) (string, error) {
	return "https://example.test/" + bucket + "/" + key + "?expires=" + ttl.String(), nil
}

type memReader struct {
	io.ReadCloser
	info *objectstore.ObjectInfo
}

func (r *memReader) Info() *objectstore.ObjectInfo { return r.info }

// countingConnector hands out client and counts constructions.
type countingConnector struct {
	mu     sync.Mutex
	client objectstore.Client
	calls  int
}

func (c *countingConnector) connect(context.Context, *objectstore.Config) (objectstore.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.client, nil
}

func (c *countingConnector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
