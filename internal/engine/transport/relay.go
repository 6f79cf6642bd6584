package transport

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go-transcript/internal/engine"
)

// Caller-browser relay: the network call executes inside the requesting
// user's browser, whose IP the platform has no reason to block. The
// origin server only forwards payloads the browser already fetched, so
// this strategy never touches the platform itself.

// RelayStore holds browser-submitted payloads per video: the watch page,
// plus timedtext bodies keyed by the exact track URL the browser fetched.
// Deposits expire so a stale page never serves a later session.
type RelayStore struct {
	mu     sync.Mutex
	byVid  map[string]*relayDeposit
	maxAge time.Duration
}

type relayDeposit struct {
	page      []byte
	timedtext map[string][]byte
	at        time.Time
}

func NewRelayStore(maxAge time.Duration) *RelayStore {
	return &RelayStore{byVid: make(map[string]*relayDeposit), maxAge: maxAge}
}

// PutPage deposits a browser-fetched watch page for a video. Timedtext
// payloads already deposited for the video are kept, so page and
// captions may arrive in either order.
func (rs *RelayStore) PutPage(videoID string, payload []byte) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	d, ok := rs.byVid[videoID]
	if !ok {
		d = &relayDeposit{timedtext: make(map[string][]byte)}
		rs.byVid[videoID] = d
	}
	d.page = payload
	d.at = time.Now()
}

// PutTimedText deposits a browser-fetched caption payload.
func (rs *RelayStore) PutTimedText(videoID, trackURL string, payload []byte) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	d, ok := rs.byVid[videoID]
	if !ok {
		d = &relayDeposit{timedtext: make(map[string][]byte), at: time.Now()}
		rs.byVid[videoID] = d
	}
	d.timedtext[trackURL] = payload
}

// get looks up a deposited payload matching the requested URL.
func (rs *RelayStore) get(videoID, url string) ([]byte, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	d, ok := rs.byVid[videoID]
	if !ok {
		return nil, false
	}
	if time.Since(d.at) > rs.maxAge {
		delete(rs.byVid, videoID)
		return nil, false
	}
	if strings.HasPrefix(url, watchURLPrefix) {
		return d.page, d.page != nil
	}
	data, ok := d.timedtext[url]
	return data, ok
}

// RelayStrategy consumes deposited payloads through the standard
// pipeline. With nothing deposited for the video it fails forward; the
// tool surface tells callers how to deposit.
type RelayStrategy struct {
	Store *RelayStore
}

func (s *RelayStrategy) Name() string { return "relay" }

func (s *RelayStrategy) Fetch(ctx context.Context, req engine.FetchRequest) (*engine.TranscriptResult, error) {
	fetch := func(ctx context.Context, url string) ([]byte, error) {
		if data, ok := s.Store.get(req.VideoID, url); ok {
			return data, nil
		}
		return nil, engine.ErrNoRelayPayload
	}
	return runPipeline(ctx, s.Name(), fetch, req)
}
