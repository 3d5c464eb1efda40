package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Result describes one limiter decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long a denied client should wait, rounded up to
// whole seconds for the Retry-After header. Allowed results return 0.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed {
		return 0
	}
	wait := r.ResetAt.Sub(now)
	if wait <= 0 {
		return time.Second
	}
	return time.Duration(math.Ceil(wait.Seconds())) * time.Second
}

// Limiter allows at most Limit hits per key inside each Window.
type Limiter struct {
	Store  Store
	Limit  int
	Window time.Duration
	now    func() time.Time
}

func NewLimiter(store Store, limit int, window time.Duration) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, limit)
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: window must be positive, got %s", ErrInvalidConfig, window)
	}
	return &Limiter{Store: store, Limit: limit, Window: window, now: time.Now}, nil
}

// Allow records a hit for key and reports whether it fits in the window.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	count, resetIn, err := l.Store.Incr(ctx, key, l.Window)
	if err != nil {
		return Result{}, err
	}
	remaining := l.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= int64(l.Limit),
		Limit:     l.Limit,
		Remaining: remaining,
		ResetAt:   l.now().Add(resetIn),
	}, nil
}
