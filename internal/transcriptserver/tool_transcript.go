package transcriptserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go-transcript/internal/engine"
)

// TranscriptFetchInput is the transcript_fetch tool input.
type TranscriptFetchInput struct {
	Video     string `json:"video" jsonschema:"video ID or watch URL"`
	Languages string `json:"languages,omitempty" jsonschema:"comma-separated preferred language codes, default en"`
	Strict    bool   `json:"strict,omitempty" jsonschema:"fail instead of falling back to a track in an unrequested language"`
}

// TranscriptFetchOutput mirrors the result shape persisted downstream.
type TranscriptFetchOutput struct {
	Result *engine.TranscriptResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

func registerTranscriptFetch(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_fetch",
		Description: "Fetch the caption transcript for a video. Accepts a video ID or watch URL plus preferred language codes. Tries every configured egress route until one succeeds; returns ordered snippets with timings and the full text.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input TranscriptFetchInput) (*mcp.CallToolResult, TranscriptFetchOutput, error) {
		videoID, err := engine.ParseVideoID(input.Video)
		if err != nil {
			return nil, TranscriptFetchOutput{}, err
		}

		fr := engine.FetchRequest{
			VideoID:        videoID,
			Languages:      splitLangs(input.Languages),
			StrictLanguage: input.Strict,
		}

		res, err := deps.Chain.Fetch(ctx, fr)
		if err != nil {
			// Per-route diagnostics are for logs only; the caller gets a
			// single clear message.
			return nil, TranscriptFetchOutput{Error: userMessage(err)}, nil
		}

		if sink := engine.Cfg.Sink; sink != nil {
			if err := sink.SaveTranscript(ctx, res); err != nil {
				slog.Warn("transcript sink failed", slog.String("id", videoID), slog.Any("err", err))
			}
		}
		return nil, TranscriptFetchOutput{Result: res}, nil
	})
}

func splitLangs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			langs = append(langs, p)
		}
	}
	return langs
}

// userMessage maps taxonomy errors to the client-facing wording.
func userMessage(err error) string {
	var all *engine.AllFailedError
	switch {
	case errors.Is(err, engine.ErrNoCaptions):
		return "No transcript found for this video"
	case errors.Is(err, engine.ErrLanguageUnavailable):
		return "No transcript available in the requested languages"
	case errors.As(err, &all):
		return "Could not fetch the transcript right now. Please try again later."
	default:
		return err.Error()
	}
}
