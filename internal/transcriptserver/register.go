package transcriptserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go-transcript/internal/engine/transport"
)

// Deps holds the services the tools operate on, wired once in main.
type Deps struct {
	Chain    *transport.Chain
	Relay    *transport.RelayStore
	Metadata *transport.MetadataStrategy // nil = transcript_check disabled
}

// RegisterTools registers the transcript tools on the given MCP server:
// transcript_fetch, transcript_relay, transcript_check.
func RegisterTools(server *mcp.Server, deps Deps) {
	registerTranscriptFetch(server, deps)
	registerTranscriptRelay(server, deps)
	if deps.Metadata != nil {
		registerTranscriptCheck(server, deps)
	}
}
