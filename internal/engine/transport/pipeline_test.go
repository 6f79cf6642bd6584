package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go-transcript/internal/engine"
)

// fakeUpstream emulates the platform behind an edge worker: it serves a
// watch page advertising caption tracks and the timedtext payloads the
// tracks point to.
type fakeUpstream struct {
	srv      *httptest.Server
	requests atomic.Int64
	tracks   string // captionTracks JSON array, templated with {{base}}
}

func newFakeUpstream(t *testing.T, tracks string) *fakeUpstream {
	t.Helper()
	up := &fakeUpstream{}
	up.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up.requests.Add(1)
		target := r.URL.Query().Get("url")
		switch {
		case strings.Contains(target, "/watch?v="):
			page := `<html><script>var data = {"captionTracks":` +
				strings.ReplaceAll(up.tracks, "{{base}}", up.srv.URL) +
				`}</script></html>`
			fmt.Fprint(w, page)
		case strings.Contains(target, "/tt"):
			u, _ := url.Parse(target)
			lang := u.Query().Get("lang")
			fmt.Fprintf(w, `<transcript><text start="0.0" dur="1.5">hola %s</text><text start="1.5" dur="2.0">second &amp; line</text></transcript>`, lang)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(up.srv.Close)
	up.tracks = tracks
	return up
}

func (up *fakeUpstream) edge() *EdgeStrategy {
	return &EdgeStrategy{Endpoint: up.srv.URL + "/relay"}
}

func initPipelineEngine(t *testing.T, ttl time.Duration) {
	t.Helper()
	engine.Init(engine.Config{
		Cache:      engine.NewCache("", ttl, 100),
		Limiter:    engine.NewRateLimiter(0, 0),
		Retry:      engine.RetryConfig{MaxAttempts: 2, BaseWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2},
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	})
}

const (
	manualEnGeneratedEs = `[{"baseUrl":"{{base}}/tt?lang=en","name":{"simpleText":"English"},"languageCode":"en"},` +
		`{"baseUrl":"{{base}}/tt?lang=es","name":{"simpleText":"Spanish"},"languageCode":"es","kind":"asr"}]`
	generatedEsOnly = `[{"baseUrl":"{{base}}/tt?lang=es","name":{"simpleText":"Spanish"},"languageCode":"es","kind":"asr"}]`
)

func TestPipelinePrefersManualMatchingTrack(t *testing.T) {
	initPipelineEngine(t, time.Minute)
	up := newFakeUpstream(t, manualEnGeneratedEs)

	res, err := up.edge().Fetch(context.Background(), engine.FetchRequest{VideoID: "vidA", Languages: []string{"en"}})
	require.NoError(t, err)
	assert.Equal(t, "en", res.LanguageCode)
	assert.False(t, res.Generated)
	assert.Equal(t, "hola en second & line", res.FullText)
	assert.Len(t, res.Snippets, 2)
}

func TestPipelineAcceptsGeneratedFallback(t *testing.T) {
	initPipelineEngine(t, time.Minute)
	up := newFakeUpstream(t, generatedEsOnly)

	res, err := up.edge().Fetch(context.Background(), engine.FetchRequest{VideoID: "vidB", Languages: []string{"en", "es"}})
	require.NoError(t, err)
	assert.Equal(t, "es", res.LanguageCode)
	assert.True(t, res.Generated)
}

func TestPipelineNoCaptions(t *testing.T) {
	initPipelineEngine(t, time.Minute)
	up := newFakeUpstream(t, `[]`)

	_, err := up.edge().Fetch(context.Background(), engine.FetchRequest{VideoID: "vidC"})
	require.ErrorIs(t, err, engine.ErrNoCaptions)
	// Only the page fetch happened; no track content was requested.
	assert.Equal(t, int64(1), up.requests.Load())
}

func TestPipelineCachesWithinTTL(t *testing.T) {
	initPipelineEngine(t, time.Minute)
	up := newFakeUpstream(t, manualEnGeneratedEs)
	edge := up.edge()
	req := engine.FetchRequest{VideoID: "vidD", Languages: []string{"en"}}

	_, err := edge.Fetch(context.Background(), req)
	require.NoError(t, err)
	first := up.requests.Load()

	_, err = edge.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, up.requests.Load(), "second fetch within TTL must make no network call")
}

func TestPipelineRefetchesAfterTTL(t *testing.T) {
	initPipelineEngine(t, 30*time.Millisecond)
	up := newFakeUpstream(t, manualEnGeneratedEs)
	edge := up.edge()
	req := engine.FetchRequest{VideoID: "vidE", Languages: []string{"en"}}

	_, err := edge.Fetch(context.Background(), req)
	require.NoError(t, err)
	first := up.requests.Load()

	time.Sleep(50 * time.Millisecond)
	_, err = edge.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Greater(t, up.requests.Load(), first, "expired cache must trigger a new network call")
}

func TestPipelineDetectsBlockedPage(t *testing.T) {
	initPipelineEngine(t, time.Minute)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>redirecting to https://consent.youtube.com/m?continue=watch</html>`)
	}))
	t.Cleanup(srv.Close)

	edge := &EdgeStrategy{Endpoint: srv.URL + "/relay"}
	_, err := edge.Fetch(context.Background(), engine.FetchRequest{VideoID: "vidF"})
	require.ErrorIs(t, err, engine.ErrTransportBlocked)

	// A blocked interstitial must not poison the cache.
	if _, ok := engine.Cfg.Cache.Get(context.Background(), engine.CacheKey("page", "vidF")); ok {
		t.Fatal("blocked payload was cached")
	}
}

func TestPipelineMalformedTimedText(t *testing.T) {
	initPipelineEngine(t, time.Minute)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		if strings.Contains(target, "/watch?v=") {
			fmt.Fprint(w, `<html>{"captionTracks":`+strings.ReplaceAll(manualEnGeneratedEs, "{{base}}", srv.URL)+`}</html>`)
			return
		}
		// Track content with no usable cue lines.
		fmt.Fprint(w, `<transcript></transcript>`)
	}))
	t.Cleanup(srv.Close)

	edge := &EdgeStrategy{Endpoint: srv.URL + "/relay"}
	_, err := edge.Fetch(context.Background(), engine.FetchRequest{VideoID: "vidG", Languages: []string{"en"}})
	require.ErrorIs(t, err, engine.ErrMalformedResponse)
}

func TestEdgeStrategySendsSecret(t *testing.T) {
	initPipelineEngine(t, time.Minute)
	var gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Relay-Secret")
		fmt.Fprint(w, `<html></html>`)
	}))
	t.Cleanup(srv.Close)

	edge := &EdgeStrategy{Endpoint: srv.URL + "/relay", Secret: "s3cret"}
	edge.Fetch(context.Background(), engine.FetchRequest{VideoID: "vidH"})
	assert.Equal(t, "s3cret", gotSecret)
}
