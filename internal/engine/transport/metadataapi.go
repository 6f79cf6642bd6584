package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go-transcript/internal/engine"
	"github.com/anatolykoptev/go-transcript/internal/engine/transcript"
)

const captionsAPIURL = "https://www.googleapis.com/youtube/v3/captions"

// MetadataStrategy consults the authoritative metadata API. It can
// confirm whether captions exist and in which languages, but cannot
// retrieve caption content without further authorization, so it only
// ever produces terminal existence verdicts — never a transcript. Kept
// last in the chain as a diagnostic backstop.
type MetadataStrategy struct {
	APIKey string
}

func (s *MetadataStrategy) Name() string { return "metadata" }

func (s *MetadataStrategy) Fetch(ctx context.Context, req engine.FetchRequest) (*engine.TranscriptResult, error) {
	tracks, err := s.ListTracks(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, engine.ErrNoCaptions
	}
	if _, ok := transcript.SelectTrack(tracks, req.Langs(), req.StrictLanguage); !ok {
		return nil, engine.ErrLanguageUnavailable
	}
	return nil, engine.ErrContentNotRetrievable
}

// ListTracks returns the caption tracks the API reports for a video.
// BaseURL stays empty: the API does not expose fetchable content URLs.
func (s *MetadataStrategy) ListTracks(ctx context.Context, videoID string) ([]engine.CaptionTrack, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("videoId", videoID)
	q.Set("key", s.APIKey)

	resp, err := engine.RetryHTTP(ctx, engine.Cfg.Retry, func() (*http.Response, error) {
		if err := engine.Cfg.Limiter.Wait(ctx, s.Name()); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, captionsAPIURL+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("captions API HTTP %d: %s", resp.StatusCode, snippet)
	}

	var out struct {
		Items []struct {
			Snippet struct {
				Language  string `json:"language"`
				Name      string `json:"name"`
				TrackKind string `json:"trackKind"` // "ASR", "standard", "forced"
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode captions API: %w", err)
	}

	tracks := make([]engine.CaptionTrack, 0, len(out.Items))
	for _, it := range out.Items {
		tracks = append(tracks, engine.CaptionTrack{
			Name:         it.Snippet.Name,
			LanguageCode: it.Snippet.Language,
			Generated:    strings.EqualFold(it.Snippet.TrackKind, "asr"),
		})
	}
	return tracks, nil
}
