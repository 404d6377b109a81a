package blob

import (
	"context"
	"testing"

	"github.com/koustreak/blobkit/internal/errs"
	"github.com/koustreak/blobkit/internal/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIterator_AllPages(t *testing.T) {
	f, mem, _ := newTestFacade(t)
	mem.pageSize = 2
	mem.seed(bucket, "a", "b", "c", "d", "e")

	it := f.Keys(context.Background(), bucket, "")
	defer it.Close()

	var keys []string
	for it.Next() {
		keys = append(keys, it.Key())
	}

	require.NoError(t, it.Err())
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, keys)
	assert.Equal(t, 3, it.Pages())
}

func TestKeyIterator_Lazy(t *testing.T) {
	f, mem, _ := newTestFacade(t)
	mem.pageSize = 2
	mem.seed(bucket, "a", "b", "c", "d")

	it := f.Keys(context.Background(), bucket, "")
	defer it.Close()

	assert.Zero(t, mem.lists, "nothing fetched before Next")
	require.True(t, it.Next())
	require.True(t, it.Next())
	assert.Equal(t, 1, mem.lists)
	require.True(t, it.Next())
	assert.Equal(t, 2, mem.lists)
}

func TestKeyIterator_SkipsMarkerOnlyPages(t *testing.T) {
	f, mem, _ := newTestFacade(t)
	mem.pageSize = 2
	mem.seed(bucket, "foo/", "foo/a/", "foo/a/x.csv")

	keys, err := f.Keys(context.Background(), bucket, "foo/").Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{"foo/a/x.csv"}, keys)
}

func TestKeyIterator_Empty(t *testing.T) {
	f, _, _ := newTestFacade(t)

	keys, err := f.Keys(context.Background(), bucket, "nothing/").Collect()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestKeyIterator_Restartable(t *testing.T) {
	f, mem, _ := newTestFacade(t)
	mem.pageSize = 1
	mem.seed(bucket, "a", "b")
	ctx := context.Background()

	first, err := f.Keys(ctx, bucket, "").Collect()
	require.NoError(t, err)
	second, err := f.Keys(ctx, bucket, "").Collect()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestKeyIterator_ErrorStops(t *testing.T) {
	f, mem, _ := newTestFacade(t)
	mem.pageSize = 1
	mem.seed(bucket, "a", "b")

	it := f.Keys(context.Background(), bucket, "")
	require.True(t, it.Next())
	mem.failOnce("list", errs.New(errs.ErrKindService, "boom"))

	assert.False(t, it.Next())
	assert.True(t, errs.IsService(it.Err()))
	assert.False(t, it.Next(), "stays stopped after an error")

	_, err := f.Keys(context.Background(), "missing", "").Collect()
	assert.True(t, errs.IsNotFound(err))
}

func TestKeyIterator_CloseIdempotent(t *testing.T) {
	f, mem, _ := newTestFacade(t)
	mem.seed(bucket, "a", "b")

	it := f.Keys(context.Background(), bucket, "")
	require.True(t, it.Next())

	for i := 0; i < 3; i++ {
		assert.NoError(t, it.Close())
	}
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
}

// stuckClient reports truncation forever without advancing the token.
type stuckClient struct {
	*memClient
}

func (s stuckClient) ListPage(context.Context, string, objectstore.ListOptions) (*objectstore.Page, error) {
	return &objectstore.Page{
		Objects:   []objectstore.ObjectInfo{{Key: "loop"}},
		Truncated: true,
		NextToken: "same",
	}, nil
}

func TestKeyIterator_DetectsStuckListing(t *testing.T) {
	stuck := stuckClient{newMemClient(bucket)}
	f := New(objectstore.DefaultConfig("a", "s"), WithConnector(func(context.Context, *objectstore.Config) (objectstore.Client, error) {
		return stuck, nil
	}))

	keys, err := f.Keys(context.Background(), bucket, "").Collect()
	assert.Nil(t, keys)
	assert.True(t, errs.IsService(err))
}
