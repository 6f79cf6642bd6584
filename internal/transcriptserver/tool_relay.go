package transcriptserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go-transcript/internal/engine"
)

// TranscriptRelayInput deposits a payload the caller's browser already
// fetched. Kind "page" is the watch page; kind "timedtext" must name the
// exact track URL the browser fetched.
type TranscriptRelayInput struct {
	Video    string `json:"video" jsonschema:"video ID or watch URL"`
	Kind     string `json:"kind" jsonschema:"page or timedtext"`
	TrackURL string `json:"trackUrl,omitempty" jsonschema:"track content URL, required for kind timedtext"`
	Payload  string `json:"payload" jsonschema:"the raw fetched document"`
}

type TranscriptRelayOutput struct {
	Accepted bool `json:"accepted"`
}

func registerTranscriptRelay(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_relay",
		Description: "Deposit a browser-fetched page or caption payload for a video, so the relay route can serve it with the caller's own egress IP.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input TranscriptRelayInput) (*mcp.CallToolResult, TranscriptRelayOutput, error) {
		videoID, err := engine.ParseVideoID(input.Video)
		if err != nil {
			return nil, TranscriptRelayOutput{}, err
		}
		if input.Payload == "" {
			return nil, TranscriptRelayOutput{}, errors.New("payload is required")
		}

		switch input.Kind {
		case "page":
			deps.Relay.PutPage(videoID, []byte(input.Payload))
		case "timedtext":
			if input.TrackURL == "" {
				return nil, TranscriptRelayOutput{}, errors.New("trackUrl is required for timedtext payloads")
			}
			deps.Relay.PutTimedText(videoID, input.TrackURL, []byte(input.Payload))
		default:
			return nil, TranscriptRelayOutput{}, errors.New("kind must be page or timedtext")
		}
		return nil, TranscriptRelayOutput{Accepted: true}, nil
	})
}
