package transcript

import (
	"bytes"
	"encoding/json"

	"github.com/anatolykoptev/go-transcript/internal/engine"
)

// Track resolution from a raw watch page or player metadata payload.
//
// The embedded data is the fastest-drifting part of this system, so both
// extraction methods live behind ResolveTracks and nothing else in the
// pipeline knows about page structure.

// captionTracksMarker precedes the caption track array in both the watch
// page HTML and raw player JSON.
const captionTracksMarker = `"captionTracks":`

// playerResponseMarker marks the embedded player response assignment in
// watch page HTML. Kept as a hedge: when the array marker drifts, the
// assignment tends to survive.
const playerResponseMarker = "ytInitialPlayerResponse = "

// ResolveTracks extracts the available caption tracks from payload, in
// source order. An empty result is not an error: the caller decides what
// zero tracks means.
func ResolveTracks(payload []byte) []engine.CaptionTrack {
	if tracks := resolveFromMarker(payload); tracks != nil {
		return tracks
	}
	return resolveFromPlayerResponse(payload)
}

// resolveFromMarker locates the caption-track array and parses it. The
// array contains nested bracketed objects, so a balanced scan is required
// — a non-nesting pattern match would truncate at the first inner ']'.
func resolveFromMarker(payload []byte) []engine.CaptionTrack {
	idx := bytes.Index(payload, []byte(captionTracksMarker))
	if idx < 0 {
		return nil
	}
	raw := extractBalanced(payload[idx+len(captionTracksMarker):], '[', ']')
	if raw == nil {
		return nil
	}
	var wire []wireTrack
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil
	}
	tracks := make([]engine.CaptionTrack, 0, len(wire))
	for _, w := range wire {
		tracks = append(tracks, w.toTrack())
	}
	return tracks
}

// resolveFromPlayerResponse parses the whole embedded player response and
// descends into its caption-track field. Also accepts a bare player JSON
// document, as returned by the internal player endpoint.
func resolveFromPlayerResponse(payload []byte) []engine.CaptionTrack {
	raw := payload
	if idx := bytes.Index(payload, []byte(playerResponseMarker)); idx >= 0 {
		raw = extractBalanced(payload[idx+len(playerResponseMarker):], '{', '}')
		if raw == nil {
			return nil
		}
	}
	var pr playerResponse
	if err := json.Unmarshal(raw, &pr); err != nil || pr.Captions == nil {
		return nil
	}
	wire := pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	tracks := make([]engine.CaptionTrack, 0, len(wire))
	for _, w := range wire {
		tracks = append(tracks, w.toTrack())
	}
	return tracks
}

// extractBalanced extracts a complete JSON value starting at b[0] == open
// by tracking bracket depth. String-aware: brackets inside quoted strings
// (and escaped quotes inside them) do not affect depth.
func extractBalanced(b []byte, open, clos byte) []byte {
	if len(b) == 0 || b[0] != open {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
			// A literal backslash escape ("\\") must not hide a closing quote.
			if c == '\\' && prev == '\\' {
				c = 0
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case open:
				depth++
			case clos:
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}
