package transcript

import "github.com/anatolykoptev/go-transcript/internal/engine"

// Wire shapes for the embedded player metadata. The name field appears in
// two historical forms (simpleText and runs), both handled.

type wireTrack struct {
	BaseURL        string    `json:"baseUrl"`
	Name           *wireText `json:"name"`
	LanguageCode   string    `json:"languageCode"`
	Kind           string    `json:"kind"` // "asr" = auto-generated
	IsTranslatable bool      `json:"isTranslatable"`
}

type wireText struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t *wireText) text() string {
	if t == nil {
		return ""
	}
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var s string
	for _, r := range t.Runs {
		s += r.Text
	}
	return s
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []wireTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

func (t wireTrack) toTrack() engine.CaptionTrack {
	return engine.CaptionTrack{
		BaseURL:      t.BaseURL,
		Name:         t.Name.text(),
		LanguageCode: t.LanguageCode,
		Generated:    t.Kind == "asr",
		Translatable: t.IsTranslatable,
	}
}

// Timedtext XML shape: <transcript><text start="1.2" dur="3.4">…</text>…
// The numeric attributes are decoded as strings so elements missing or
// mangling them can be skipped without aborting the whole scan.

type timedText struct {
	Lines []timedLine `xml:"text"`
}

type timedLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",innerxml"`
}
