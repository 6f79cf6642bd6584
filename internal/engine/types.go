package engine

import "context"

// CaptionTrack describes one subtitle stream advertised by the watch page
// or player metadata. Tracks are ephemeral: produced per resolver call,
// never stored.
type CaptionTrack struct {
	BaseURL      string `json:"baseUrl"`
	Name         string `json:"name"`
	LanguageCode string `json:"languageCode"`
	Generated    bool   `json:"isGenerated"` // source kind == "asr"
	Translatable bool   `json:"isTranslatable"`
}

// TranscriptSnippet is one timed caption phrase. Start and Duration are
// decimal seconds as carried on the wire.
type TranscriptSnippet struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// TranscriptResult is the immutable outcome of a successful fetch.
// FullText is the snippet texts joined by single spaces.
type TranscriptResult struct {
	VideoID      string              `json:"videoId"`
	Language     string              `json:"language"`
	LanguageCode string              `json:"languageCode"`
	Generated    bool                `json:"isGenerated"`
	Snippets     []TranscriptSnippet `json:"snippets"`
	FullText     string              `json:"fullText"`
}

// FetchRequest carries one inbound transcript request.
type FetchRequest struct {
	VideoID   string
	Languages []string // preference order; empty means ["en"]
	// StrictLanguage disables the selector's last-resort step (any track,
	// any language). When set and no preferred-language track exists the
	// fetch fails with ErrLanguageUnavailable instead of returning an
	// arbitrary track.
	StrictLanguage bool
}

// Langs returns the preference list with the default applied.
func (r FetchRequest) Langs() []string {
	if len(r.Languages) == 0 {
		return []string{"en"}
	}
	return r.Languages
}

// Sink receives successful results for persistence. Storage lives outside
// this engine; a nil Sink means "return to caller only".
type Sink interface {
	SaveTranscript(ctx context.Context, res *TranscriptResult) error
}
