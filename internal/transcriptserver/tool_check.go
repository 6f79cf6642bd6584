package transcriptserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go-transcript/internal/engine"
)

type TranscriptCheckInput struct {
	Video string `json:"video" jsonschema:"video ID or watch URL"`
}

// TranscriptCheckOutput reports caption existence and languages without
// fetching content.
type TranscriptCheckOutput struct {
	HasCaptions bool                  `json:"hasCaptions"`
	Tracks      []engine.CaptionTrack `json:"tracks,omitempty"`
}

func registerTranscriptCheck(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_check",
		Description: "Check via the authoritative metadata API whether a video has captions and in which languages. Existence only; caption content is not retrievable this way.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input TranscriptCheckInput) (*mcp.CallToolResult, TranscriptCheckOutput, error) {
		videoID, err := engine.ParseVideoID(input.Video)
		if err != nil {
			return nil, TranscriptCheckOutput{}, err
		}

		tracks, err := deps.Metadata.ListTracks(ctx, videoID)
		if err != nil {
			return nil, TranscriptCheckOutput{}, err
		}
		return nil, TranscriptCheckOutput{HasCaptions: len(tracks) > 0, Tracks: tracks}, nil
	})
}
