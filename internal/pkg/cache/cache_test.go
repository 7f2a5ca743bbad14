package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counts struct {
	Draft     int64 `json:"draft"`
	Published int64 `json:"published"`
}

func newTestHelper(t *testing.T) (*Helper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewHelper(client, StatsConfig), mr
}

func TestHelperSetGetDelete(t *testing.T) {
	ctx := context.Background()
	h, mr := newTestHelper(t)

	require.NoError(t, h.Set(ctx, "content-counts", counts{Draft: 2, Published: 3}))
	assert.True(t, mr.Exists("stats:content-counts"))
	assert.Equal(t, 5*time.Minute, mr.TTL("stats:content-counts"))

	var got counts
	require.NoError(t, h.Get(ctx, "content-counts", &got))
	assert.Equal(t, counts{Draft: 2, Published: 3}, got)

	require.NoError(t, h.Delete(ctx, "content-counts"))
	assert.ErrorIs(t, h.Get(ctx, "content-counts", &got), ErrCacheNotFound)
}

func TestHelperExpires(t *testing.T) {
	ctx := context.Background()
	h, mr := newTestHelper(t)

	require.NoError(t, h.Set(ctx, "k", counts{Draft: 1}))
	mr.FastForward(6 * time.Minute)

	var got counts
	assert.ErrorIs(t, h.Get(ctx, "k", &got), ErrCacheNotFound)
}

func TestHelperWithoutClient(t *testing.T) {
	ctx := context.Background()
	h := NewHelper(nil, StatsConfig)

	assert.False(t, h.Available())
	assert.NoError(t, h.Set(ctx, "k", 1))
	assert.NoError(t, h.Delete(ctx, "k"))

	var got int
	assert.ErrorIs(t, h.Get(ctx, "k", &got), ErrCacheNotAvailable)
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHelper(t)

	calls := 0
	load := func(context.Context) (interface{}, error) {
		calls++
		return counts{Draft: 4, Published: 1}, nil
	}

	var first counts
	require.NoError(t, h.GetOrLoad(ctx, "content-counts", &first, load))
	var second counts
	require.NoError(t, h.GetOrLoad(ctx, "content-counts", &second, load))

	assert.Equal(t, 1, calls)
	assert.Equal(t, counts{Draft: 4, Published: 1}, first)
	assert.Equal(t, first, second)
}

func TestGetOrLoadWithoutClientAlwaysLoads(t *testing.T) {
	ctx := context.Background()
	h := NewHelper(nil, StatsConfig)

	calls := 0
	load := func(context.Context) (interface{}, error) {
		calls++
		return counts{Published: 9}, nil
	}

	var got counts
	require.NoError(t, h.GetOrLoad(ctx, "k", &got, load))
	require.NoError(t, h.GetOrLoad(ctx, "k", &got, load))
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(9), got.Published)
}

func TestGetOrLoadPropagatesLoadError(t *testing.T) {
	h, _ := newTestHelper(t)
	boom := errors.New("db down")

	var got counts
	err := h.GetOrLoad(context.Background(), "k", &got, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPing(t *testing.T) {
	assert.ErrorIs(t, Ping(context.Background(), nil), ErrCacheNotAvailable)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	assert.NoError(t, Ping(context.Background(), client))
}
