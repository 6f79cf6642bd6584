package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter bounds request cadence per egress path. Two independent
// constraints apply to each path:
//
//   - a minimum inter-request delay, enforced by a token bucket
//   - a rolling 60-second window capping total requests; once the
//     window's first request is a minute old, count and start reset
//
// Callers are suspended, never rejected: Wait blocks until both
// constraints allow the request or ctx is done.
//
// Like Cache, this is an explicit injectable service object so each test
// gets fresh state.
type RateLimiter struct {
	mu       sync.Mutex
	paths    map[string]*pathState
	minDelay time.Duration
	perMin   int
	window   time.Duration
}

type pathState struct {
	limiter     *rate.Limiter
	windowStart time.Time
	count       int
}

// NewRateLimiter builds a limiter enforcing minDelay between requests and
// at most perMinute requests per rolling minute, independently per path.
func NewRateLimiter(minDelay time.Duration, perMinute int) *RateLimiter {
	return &RateLimiter{
		paths:    make(map[string]*pathState),
		minDelay: minDelay,
		perMin:   perMinute,
		window:   time.Minute,
	}
}

// Wait blocks until the named path may issue another request.
func (rl *RateLimiter) Wait(ctx context.Context, path string) error {
	if rl == nil {
		return nil
	}

	rl.mu.Lock()
	st, ok := rl.paths[path]
	if !ok {
		st = &pathState{limiter: rate.NewLimiter(rate.Every(rl.minDelay), 1)}
		rl.paths[path] = st
	}
	rl.mu.Unlock()

	// Rolling window first: compute how long until a slot frees up,
	// sleep outside the lock, re-check.
	for {
		rl.mu.Lock()
		now := time.Now()
		if st.windowStart.IsZero() || now.Sub(st.windowStart) >= rl.window {
			st.windowStart = now
			st.count = 0
		}
		if rl.perMin <= 0 || st.count < rl.perMin {
			st.count++
			rl.mu.Unlock()
			break
		}
		wait := rl.window - now.Sub(st.windowStart)
		rl.mu.Unlock()

		slog.Debug("rate limit: window full, waiting",
			slog.String("path", path), slog.Duration("wait", wait))
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// Minimum inter-request delay.
	return st.limiter.Wait(ctx)
}
