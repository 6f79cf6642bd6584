// Package transport implements the egress strategy chain: every route to
// the hosting platform carries a different IP reputation, and any one of
// them may be blocked, so a fetch walks an ordered list of independently
// capable strategies until one yields a transcript.
package transport

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/anatolykoptev/go-transcript/internal/engine"
)

// Strategy is one transport route wrapping the full resolve→select→parse
// pipeline behind its own egress.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, req engine.FetchRequest) (*engine.TranscriptResult, error)
}

// Chain tries strategies strictly in declared order. Any strategy failure
// advances to the next one; success short-circuits; the two terminal
// error kinds (no captions, language unavailable) abort the whole chain,
// since changing transport cannot change caption availability.
type Chain struct {
	strategies []Strategy
	sf         singleflight.Group
}

// NewChain builds a chain over the given strategies. Adding, removing or
// reordering transports is a configuration change, not a code change.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Fetch obtains a transcript for the request. Concurrent fetches for the
// identical request are coalesced in flight; only the first does network
// work.
func (c *Chain) Fetch(ctx context.Context, req engine.FetchRequest) (*engine.TranscriptResult, error) {
	engine.IncrFetchRequests()

	key := strings.Join(req.Langs(), ",") + "|" + req.VideoID + "|" + strconv.FormatBool(req.StrictLanguage)
	v, err, _ := c.sf.Do(key, func() (any, error) {
		return c.fetch(ctx, req)
	})
	if err != nil {
		engine.IncrFetchFailures()
		return nil, err
	}
	engine.IncrFetchSuccesses()
	return v.(*engine.TranscriptResult), nil
}

func (c *Chain) fetch(ctx context.Context, req engine.FetchRequest) (*engine.TranscriptResult, error) {
	var failures []engine.StrategyFailure

	for _, s := range c.strategies {
		engine.IncrStrategyAttempt(s.Name())

		res, err := s.Fetch(ctx, req)
		if err == nil {
			slog.Info("transcript fetched",
				slog.String("id", req.VideoID),
				slog.String("strategy", s.Name()),
				slog.String("lang", res.LanguageCode),
				slog.Int("snippets", len(res.Snippets)))
			return res, nil
		}
		if engine.IsTerminal(err) {
			slog.Info("transcript unavailable",
				slog.String("id", req.VideoID),
				slog.String("strategy", s.Name()),
				slog.Any("err", err))
			return nil, err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		failures = append(failures, engine.StrategyFailure{Strategy: s.Name(), Err: err})
		slog.Warn("strategy failed, advancing",
			slog.String("id", req.VideoID),
			slog.String("strategy", s.Name()),
			slog.Any("err", err))
	}

	allErr := &engine.AllFailedError{VideoID: req.VideoID, Failures: failures}
	slog.Error("all strategies exhausted",
		slog.String("id", req.VideoID),
		slog.String("detail", engine.Truncate(allErr.Detail(), 500)))
	return nil, allErr
}
