package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/anatolykoptev/go-transcript/internal/engine"
)

// RotatingStrategy egresses through a pool of third-party datacenter
// proxies obtained from an authenticated proxy-list API, selecting the
// next proxy round-robin on each attempt. Two forms, same egress
// property:
//
//   - a serverless relay function on a separate hosting provider, when
//     an endpoint is configured: the function performs the fetch and
//     rotates proxies itself
//   - otherwise direct egress via the browser-fingerprint client backed
//     by the rotating proxy pool
type RotatingStrategy struct {
	Endpoint string // serverless function URL, optional
	Client   *engine.BrowserClient
}

func (s *RotatingStrategy) Name() string { return "rotating" }

func (s *RotatingStrategy) Fetch(ctx context.Context, req engine.FetchRequest) (*engine.TranscriptResult, error) {
	return runPipeline(ctx, s.Name(), s.get, req)
}

func (s *RotatingStrategy) get(ctx context.Context, target string) ([]byte, error) {
	if s.Endpoint != "" {
		return s.relay(ctx, target)
	}
	if s.Client == nil {
		return nil, fmt.Errorf("rotating egress not configured")
	}

	data, _, status, err := s.Client.Do(http.MethodGet, target, engine.ChromeHeaders(), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		resp := &http.Response{StatusCode: status, Header: http.Header{}}
		return nil, engine.StatusError(resp)
	}
	return data, nil
}

// relay POSTs the target URL to the serverless function and receives the
// fetched body verbatim.
func (s *RotatingStrategy) relay(ctx context.Context, target string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"url": target})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
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
