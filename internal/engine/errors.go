package engine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Error taxonomy for transcript acquisition. Two kinds are terminal:
// switching egress cannot change whether captions exist or which
// languages are available, so the chain stops immediately on them.
var (
	// ErrNoCaptions: the resolver found zero tracks for the video.
	ErrNoCaptions = errors.New("no captions found for this video")
	// ErrLanguageUnavailable: tracks exist, but none is acceptable under
	// a strict language policy.
	ErrLanguageUnavailable = errors.New("no caption track in a requested language")
	// ErrTransportBlocked: the upstream answered with an anti-automation
	// interstitial (consent / verification page) on this egress.
	ErrTransportBlocked = errors.New("request blocked by upstream")
	// ErrMalformedResponse: the selected track parsed to zero usable
	// snippets.
	ErrMalformedResponse = errors.New("caption payload contained no usable snippets")
	// ErrNoRelayPayload: the caller's browser has not deposited a page
	// for this video yet.
	ErrNoRelayPayload = errors.New("no relayed payload for this video")
	// ErrContentNotRetrievable: the metadata API confirmed captions but
	// cannot serve their content without further authorization.
	ErrContentNotRetrievable = errors.New("captions exist but content is not retrievable via the metadata API")
)

// IsTerminal reports whether err makes trying further transports useless.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrNoCaptions) || errors.Is(err, ErrLanguageUnavailable)
}

// RateLimitedError is an explicit 429 from upstream. RetryAfter is zero
// when the server supplied no hint.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// httpStatusError wraps a retryable HTTP status code.
type httpStatusError struct {
	StatusCode int
}

func (e *httpStatusError) Error() string {
	return http.StatusText(e.StatusCode)
}

// StrategyFailure records why one transport gave up, for diagnostics.
type StrategyFailure struct {
	Strategy string
	Err      error
}

func (f StrategyFailure) String() string {
	return f.Strategy + ": " + f.Err.Error()
}

// AllFailedError means every configured strategy was exhausted. The
// per-strategy reasons are kept for logging only and never shown to end
// users; user-facing callers should surface Error()'s first sentence.
type AllFailedError struct {
	VideoID  string
	Failures []StrategyFailure
}

func (e *AllFailedError) Error() string {
	return fmt.Sprintf("could not fetch transcript for %s via any route (%d attempted)", e.VideoID, len(e.Failures))
}

// Detail returns the per-strategy reasons joined for log output.
func (e *AllFailedError) Detail() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, "; ")
}
