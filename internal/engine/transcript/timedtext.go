package transcript

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go-transcript/internal/engine"
)

// ParseTimedText turns a raw timedtext payload into ordered snippets.
// Elements missing either numeric attribute are skipped, never fatal.
// Entity references are decoded twice (the wire double-encodes, so an
// apostrophe arrives as &amp;#39;), formatting tags are stripped, and
// embedded line breaks collapse to single spaces; elements whose text
// ends up empty are dropped.
func ParseTimedText(raw []byte) []engine.TranscriptSnippet {
	var tt timedText
	if err := xml.Unmarshal(raw, &tt); err != nil {
		return nil
	}

	snippets := make([]engine.TranscriptSnippet, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		start, err := strconv.ParseFloat(line.Start, 64)
		if err != nil {
			continue
		}
		dur, err := strconv.ParseFloat(line.Dur, 64)
		if err != nil {
			continue
		}
		// innerxml is the raw node: the first decode stands in for the
		// XML decoder's own pass and exposes once-encoded references and
		// escaped formatting tags, the tags are stripped, and the second
		// decode resolves what the wire had double-encoded.
		text := engine.DecodeEntities(line.Text)
		text = engine.CleanHTML(text)
		text = engine.CollapseSpace(engine.DecodeEntities(text))
		if text == "" {
			continue
		}
		snippets = append(snippets, engine.TranscriptSnippet{
			Text:     text,
			Start:    start,
			Duration: dur,
		})
	}
	return snippets
}

// BuildResult assembles the immutable result handed to callers and the
// storage collaborator. Snippet order follows source order.
func BuildResult(videoID string, track engine.CaptionTrack, snippets []engine.TranscriptSnippet) *engine.TranscriptResult {
	texts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		texts = append(texts, s.Text)
	}
	language := track.Name
	if language == "" {
		language = track.LanguageCode
	}
	return &engine.TranscriptResult{
		VideoID:      videoID,
		Language:     language,
		LanguageCode: track.LanguageCode,
		Generated:    track.Generated,
		Snippets:     snippets,
		FullText:     strings.Join(texts, " "),
	}
}
