// Package ratelimit implements fixed-window request limiting over a
// pluggable counter store.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidConfig    = errors.New("invalid rate limit configuration")
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)

// Store keeps one counter per key that expires window after its first hit.
type Store interface {
	// Incr bumps the counter for key, starting a new window when none is
	// active, and returns the new count and the time left in the window.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)

	// Reset drops the counter for key.
	Reset(ctx context.Context, key string) error
}
