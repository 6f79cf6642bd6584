package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"
)

// RetryConfig controls retry behavior for a single network call.
type RetryConfig struct {
	MaxAttempts int
	BaseWait    time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	Jitter      float64 // symmetric fraction of the computed wait, e.g. 0.2
}

// DefaultRetryConfig is suitable for most upstream calls.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 4,
	BaseWait:    500 * time.Millisecond,
	MaxWait:     10 * time.Second,
	Multiplier:  2.0,
	Jitter:      0.2,
}

// backoff computes the wait before the given retry (0-based). Jitter
// spreads the exponential value by ±Jitter; MaxWait bounds the final
// wait, jitter included.
func (rc RetryConfig) backoff(attempt int) time.Duration {
	wait := time.Duration(float64(rc.BaseWait) * math.Pow(rc.Multiplier, float64(attempt)))
	if wait > rc.MaxWait {
		wait = rc.MaxWait
	}
	if rc.Jitter > 0 {
		spread := 1 + rc.Jitter*(2*rand.Float64()-1) //nolint:gosec // non-cryptographic use
		wait = time.Duration(float64(wait) * spread)
	}
	if wait > rc.MaxWait {
		wait = rc.MaxWait
	}
	return wait
}

// RetryDo retries fn up to MaxAttempts times with jittered exponential
// backoff. Only transient failures are retried; terminal content signals
// (captions disabled, video unavailable), malformed-request responses and
// other client errors propagate immediately. A RateLimitedError carrying
// a server-supplied Retry-After overrides the computed backoff.
func RetryDo[T any](ctx context.Context, rc RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < rc.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return zero, err
		}

		if attempt < rc.MaxAttempts-1 {
			wait := rc.backoff(attempt)
			var rle *RateLimitedError
			if errors.As(err, &rle) && rle.RetryAfter > 0 {
				wait = rle.RetryAfter
			}
			slog.Debug("retrying", slog.Int("attempt", attempt+1), slog.Duration("wait", wait), slog.Any("error", err))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}
	return zero, lastErr
}

// RetryHTTP executes an HTTP request function with retry logic. The
// function builds and sends the request; RetryHTTP classifies the
// response status.
func RetryHTTP(ctx context.Context, rc RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	return RetryDo(ctx, rc, func() (*http.Response, error) {
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			ra := parseRetryAfter(resp.Header.Get("Retry-After"))
			resp.Body.Close()
			return nil, &RateLimitedError{RetryAfter: ra}
		}
		if isRetryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return nil, &httpStatusError{StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
}

// StatusError classifies a response status for retry purposes: nil for
// 2xx, RateLimitedError for 429 (carrying any Retry-After hint),
// httpStatusError for retryable server errors, a plain error otherwise.
func StatusError(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitedError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case isRetryableStatus(resp.StatusCode):
		return &httpStatusError{StatusCode: resp.StatusCode}
	default:
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
}

// parseRetryAfter handles both header forms: delta-seconds and HTTP-date.
// Unparseable or past values fall back to the computed backoff.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// isRetryable returns true for transient errors worth retrying.
func isRetryable(err error) bool {
	// Terminal taxonomy errors never retry regardless of origin.
	if IsTerminal(err) || errors.Is(err, ErrTransportBlocked) || errors.Is(err, ErrMalformedResponse) {
		return false
	}

	var rle *RateLimitedError
	if errors.As(err, &rle) {
		return true
	}

	// Server-side status errors, already filtered by isRetryableStatus.
	var httpErr *httpStatusError
	if errors.As(err, &httpErr) {
		return true
	}

	// Connection errors (dial failures, connection resets, etc.)
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	// DNS errors
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	// Timeout errors (net.Error includes OpError, so check after OpError)
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// isRetryableStatus returns true for HTTP status codes worth retrying.
// 429 is handled separately so Retry-After can be honored.
func isRetryableStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	}
	return false
}
