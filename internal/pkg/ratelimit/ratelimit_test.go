package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFactory struct {
	name string
	new  func(t *testing.T) (Store, func(time.Duration))
}

func stores() []storeFactory {
	return []storeFactory{
		{
			name: "memory",
			new: func(t *testing.T) (Store, func(time.Duration)) {
				s := NewMemoryStore()
				now := time.Now()
				s.now = func() time.Time { return now }
				return s, func(d time.Duration) { now = now.Add(d) }
			},
		},
		{
			name: "redis",
			new: func(t *testing.T) (Store, func(time.Duration)) {
				mr := miniredis.RunT(t)
				client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				t.Cleanup(func() { _ = client.Close() })
				return NewRedisStore(client), mr.FastForward
			},
		},
	}
}

func TestLimiterBlocksAfterLimit(t *testing.T) {
	for _, f := range stores() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store, _ := f.new(t)
			l := NewLimiter(store, "login", 5, 15*time.Minute)

			for i := 1; i <= 5; i++ {
				res, err := l.Allow(ctx, "10.0.0.1")
				require.NoError(t, err)
				assert.True(t, res.Allowed, "attempt %d", i)
				assert.Equal(t, int64(5-i), res.Remaining)
			}

			res, err := l.Allow(ctx, "10.0.0.1")
			require.NoError(t, err)
			assert.False(t, res.Allowed)
			assert.Equal(t, int64(0), res.Remaining)
			assert.InDelta(t, (15 * time.Minute).Seconds(), res.RetryAfter.Seconds(), 1)

			other, err := l.Allow(ctx, "10.0.0.2")
			require.NoError(t, err)
			assert.True(t, other.Allowed)
		})
	}
}

func TestLimiterWindowExpires(t *testing.T) {
	for _, f := range stores() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store, advance := f.new(t)
			l := NewLimiter(store, "login", 1, time.Minute)

			res, err := l.Allow(ctx, "ip")
			require.NoError(t, err)
			assert.True(t, res.Allowed)

			res, err = l.Allow(ctx, "ip")
			require.NoError(t, err)
			assert.False(t, res.Allowed)

			advance(61 * time.Second)

			res, err = l.Allow(ctx, "ip")
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, int64(1), res.Count)
		})
	}
}

func TestLimiterUndoDoesNotCountHit(t *testing.T) {
	for _, f := range stores() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store, _ := f.new(t)
			l := NewLimiter(store, "login", 2, time.Minute)

			for i := 0; i < 10; i++ {
				res, err := l.Allow(ctx, "ip")
				require.NoError(t, err)
				require.True(t, res.Allowed)
				require.NoError(t, l.Undo(ctx, "ip"))
			}

			res, err := l.Allow(ctx, "ip")
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.Count)

			// Undo on an unknown key is harmless.
			assert.NoError(t, l.Undo(ctx, "unknown"))
		})
	}
}

func TestLimiterReset(t *testing.T) {
	for _, f := range stores() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store, _ := f.new(t)
			l := NewLimiter(store, "api", 1, time.Minute)

			_, err := l.Allow(ctx, "ip")
			require.NoError(t, err)
			require.NoError(t, l.Reset(ctx, "ip"))

			res, err := l.Allow(ctx, "ip")
			require.NoError(t, err)
			assert.True(t, res.Allowed)
		})
	}
}

func TestLimiterPrefixesAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	login := NewLimiter(store, "login", 1, time.Minute)
	api := NewLimiter(store, "api", 1, time.Minute)

	res, err := login.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = api.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
