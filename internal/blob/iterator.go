package blob

import (
	"context"

	"github.com/koustreak/blobkit/internal/errs"
)

// KeyIterator walks every key under a prefix, one listing page at a time.
//
// Contract:
//   - Pages are fetched only when the buffered keys run out
//   - Order is whatever the service returns
//   - Next returns false after exhaustion, after an error, or after Close
//   - Close is idempotent; Err may be called at any time
//
// A KeyIterator is not safe for concurrent use.
type KeyIterator struct {
	ctx    context.Context
	f      *Facade
	bucket string
	prefix string

	keys    []string
	index   int
	token   string
	current string
	last    bool
	err     error
	closed  bool
	pages   int
}

func newKeyIterator(ctx context.Context, f *Facade, bucket, prefix string) *KeyIterator {
	return &KeyIterator{ctx: ctx, f: f, bucket: bucket, prefix: prefix}
}

// Next advances to the next key, fetching the next page when needed.
func (it *KeyIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}

	// A page made only of directory markers yields no keys, so keep going.
	for it.index >= len(it.keys) {
		if it.last {
			return false
		}
		if !it.fetch() {
			return false
		}
	}

	it.current = it.keys[it.index]
	it.index++
	return true
}

func (it *KeyIterator) fetch() bool {
	page, err := it.f.ListPage(it.ctx, it.bucket, it.prefix, it.token, 0)
	if err != nil {
		it.err = err
		return false
	}
	it.pages++

	if page.Truncated && (page.NextToken == "" || page.NextToken == it.token) {
		it.err = errs.New(errs.ErrKindService, "listing is truncated but did not advance")
		return false
	}

	it.keys = page.Keys()
	it.index = 0
	it.token = page.NextToken
	it.last = !page.Truncated
	return true
}

// Key returns the current key. Only valid after Next returns true.
func (it *KeyIterator) Key() string {
	return it.current
}

// Pages reports how many listing pages have been fetched so far.
func (it *KeyIterator) Pages() int {
	return it.pages
}

// Err returns the error that stopped iteration, if any.
func (it *KeyIterator) Err() error {
	return it.err
}

// Close stops the iteration and releases buffered keys.
func (it *KeyIterator) Close() error {
	it.closed = true
	it.keys = nil
	return nil
}

// Collect drains the iterator into a slice.
func (it *KeyIterator) Collect() ([]string, error) {
	defer it.Close()

	keys := []string{}
	for it.Next() {
		keys = append(keys, it.Key())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
