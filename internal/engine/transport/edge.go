package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/anatolykoptev/go-transcript/internal/engine"
)

// EdgeStrategy relays requests through a dedicated edge-proxy worker: an
// edge compute network whose IP pool is independent of the origin
// server's, so platform blocks on datacenter ranges do not apply.
type EdgeStrategy struct {
	Endpoint string
	Secret   string
}

func (s *EdgeStrategy) Name() string { return "edge" }

func (s *EdgeStrategy) Fetch(ctx context.Context, req engine.FetchRequest) (*engine.TranscriptResult, error) {
	return runPipeline(ctx, s.Name(), s.get, req)
}

// get asks the worker to fetch the target URL on our behalf.
func (s *EdgeStrategy) get(ctx context.Context, target string) ([]byte, error) {
	relayURL := s.Endpoint + "?url=" + url.QueryEscape(target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, relayURL, nil)
	if err != nil {
		return nil, err
	}
	if s.Secret != "" {
		req.Header.Set("X-Relay-Secret", s.Secret)
	}
	req.Header.Set("User-Agent", engine.UserAgentBot)

	resp, err := engine.Cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := engine.StatusError(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, limitFor(target)))
}
