// Package ratelimit counts requests per key in fixed windows.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Store keeps hit counters. Implementations must be safe for concurrent use.
type Store interface {
	// Increment adds a hit to key and returns the new count and the time left
	// in the current window. The window starts on the first hit.
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	// Decrement removes a hit from key, if it is still counted.
	Decrement(ctx context.Context, key string) error
	// Reset forgets key.
	Reset(ctx context.Context, key string) error
}

// Result is the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Count      int64
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter allows at most Limit hits per key within Window.
type Limiter struct {
	store  Store
	prefix string
	limit  int64
	window time.Duration
}

// NewLimiter creates a limiter whose keys are namespaced by prefix.
func NewLimiter(store Store, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

func (l *Limiter) key(id string) string {
	return fmt.Sprintf("ratelimit:%s:%s", l.prefix, id)
}

// Allow records a hit for id and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, id string) (Result, error) {
	count, ttl, err := l.store.Increment(ctx, l.key(id), l.window)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit store: %w", err)
	}

	res := Result{
		Allowed:    count <= l.limit,
		Count:      count,
		Limit:      l.limit,
		Remaining:  l.limit - count,
		RetryAfter: ttl,
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	return res, nil
}

// Undo takes back a hit recorded by Allow, so that it does not count
// against id.
func (l *Limiter) Undo(ctx context.Context, id string) error {
	return l.store.Decrement(ctx, l.key(id))
}

// Reset clears the counter of id.
func (l *Limiter) Reset(ctx context.Context, id string) error {
	return l.store.Reset(ctx, l.key(id))
}
