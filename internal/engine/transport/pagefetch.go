package transport

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go-transcript/internal/engine"
	"github.com/anatolykoptev/go-transcript/internal/engine/transcript"
)

// Shared pipeline every HTTP-backed strategy runs behind its own egress:
// fetch watch page → resolve tracks → select track → fetch timedtext →
// parse snippets. Page payloads cache by video ID, timedtext by track
// URL; both fetches are rate-limited per egress path and retried.

const (
	watchURLPrefix = "https://www.youtube.com/watch?v="
	maxPageBytes   = 6 * 1024 * 1024
	maxTrackBytes  = 512 * 1024
)

// fetchFunc performs one raw GET through a strategy's egress.
type fetchFunc func(ctx context.Context, url string) ([]byte, error)

// limitFor bounds response reads: watch pages are megabytes, caption
// payloads are not.
func limitFor(url string) int64 {
	if strings.HasPrefix(url, watchURLPrefix) {
		return maxPageBytes
	}
	return maxTrackBytes
}

// runPipeline drives the pipeline for one strategy attempt. path names
// the egress for rate-limiter bookkeeping.
func runPipeline(ctx context.Context, path string, fetch fetchFunc, req engine.FetchRequest) (*engine.TranscriptResult, error) {
	page, err := fetchPage(ctx, path, fetch, req.VideoID)
	if err != nil {
		return nil, err
	}

	tracks := transcript.ResolveTracks(page)
	if len(tracks) == 0 {
		return nil, engine.ErrNoCaptions
	}
	track, ok := transcript.SelectTrack(tracks, req.Langs(), req.StrictLanguage)
	if !ok {
		return nil, engine.ErrLanguageUnavailable
	}

	raw, err := fetchTimedText(ctx, path, fetch, track.BaseURL)
	if err != nil {
		return nil, err
	}
	snippets := transcript.ParseTimedText(raw)
	if len(snippets) == 0 {
		return nil, engine.ErrMalformedResponse
	}
	return transcript.BuildResult(req.VideoID, track, snippets), nil
}

// fetchPage returns the watch page payload, from cache when fresh.
// Blocked interstitials are never cached.
func fetchPage(ctx context.Context, path string, fetch fetchFunc, videoID string) ([]byte, error) {
	cfg := engine.Cfg
	key := engine.CacheKey("page", videoID)
	if data, ok := cfg.Cache.Get(ctx, key); ok {
		return data, nil
	}

	data, err := engine.RetryDo(ctx, cfg.Retry, func() ([]byte, error) {
		if err := cfg.Limiter.Wait(ctx, path); err != nil {
			return nil, err
		}
		return fetch(ctx, watchURLPrefix+videoID)
	})
	if err != nil {
		return nil, err
	}
	if transcript.IsBlocked(data) {
		return nil, engine.ErrTransportBlocked
	}

	cfg.Cache.Set(ctx, key, data)
	return data, nil
}

// fetchTimedText returns the raw caption payload for a track URL.
func fetchTimedText(ctx context.Context, path string, fetch fetchFunc, trackURL string) ([]byte, error) {
	cfg := engine.Cfg
	key := engine.CacheKey("timedtext", trackURL)
	if data, ok := cfg.Cache.Get(ctx, key); ok {
		return data, nil
	}

	data, err := engine.RetryDo(ctx, cfg.Retry, func() ([]byte, error) {
		if err := cfg.Limiter.Wait(ctx, path); err != nil {
			return nil, err
		}
		return fetch(ctx, trackURL)
	})
	if err != nil {
		return nil, err
	}

	cfg.Cache.Set(ctx, key, data)
	return data, nil
}

// doGet issues one GET through the given client with browser-like headers
// and returns the body. Status codes are classified into the retry
// taxonomy so the surrounding RetryDo can tell transient from terminal.
// Shared by the direct-egress strategies.
func doGet(ctx context.Context, client *http.Client, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", engine.RandomUserAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := engine.StatusError(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}
