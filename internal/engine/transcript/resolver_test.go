package transcript

import "testing"

// A track array with nested bracketed objects: a naive non-nested match
// on the first ']' would truncate inside the name runs.
const nestedTracksPayload = `<html><script>var ytcfg = {};"captionTracks":[` +
	`{"baseUrl":"https://example.com/tt?lang=en","name":{"runs":[{"text":"English"}]},"languageCode":"en","isTranslatable":true},` +
	`{"baseUrl":"https://example.com/tt?lang=es","name":{"simpleText":"Spanish (auto-generated)"},"languageCode":"es","kind":"asr","isTranslatable":true}` +
	`],"audioTracks":[]</script></html>`

func TestResolveTracksNestedBrackets(t *testing.T) {
	tracks := ResolveTracks([]byte(nestedTracksPayload))
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}

	if tracks[0].LanguageCode != "en" || tracks[0].Generated {
		t.Errorf("track 0 = %+v, want manual en", tracks[0])
	}
	if tracks[0].Name != "English" {
		t.Errorf("track 0 name = %q", tracks[0].Name)
	}
	if !tracks[0].Translatable {
		t.Error("track 0 should be translatable")
	}

	if tracks[1].LanguageCode != "es" || !tracks[1].Generated {
		t.Errorf("track 1 = %+v, want generated es", tracks[1])
	}
	if tracks[1].Name != "Spanish (auto-generated)" {
		t.Errorf("track 1 name = %q", tracks[1].Name)
	}
}

func TestResolveTracksSourceOrder(t *testing.T) {
	payload := `"captionTracks":[` +
		`{"baseUrl":"u1","languageCode":"de"},` +
		`{"baseUrl":"u2","languageCode":"fr"},` +
		`{"baseUrl":"u3","languageCode":"ja"}]`
	tracks := ResolveTracks([]byte(payload))
	want := []string{"de", "fr", "ja"}
	if len(tracks) != len(want) {
		t.Fatalf("got %d tracks, want %d", len(tracks), len(want))
	}
	for i, code := range want {
		if tracks[i].LanguageCode != code {
			t.Errorf("track %d = %s, want %s (source order must be preserved)", i, tracks[i].LanguageCode, code)
		}
	}
}

func TestResolveTracksPlayerResponseFallback(t *testing.T) {
	// Whitespace after the colon defeats the primary marker match (the
	// kind of drift the fallback hedges against); the balanced-object
	// fallback must still descend to the nested track field.
	page := `<script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":` +
		`{"captionTracks": [{"baseUrl":"u","name":{"simpleText":"English"},"languageCode":"en"}]}},` +
		`"playabilityStatus":{"status":"OK"}};var meta = 1;</script>`
	tracks := ResolveTracks([]byte(page))
	if len(tracks) != 1 || tracks[0].LanguageCode != "en" {
		t.Fatalf("fallback resolution failed: %+v", tracks)
	}
}

func TestResolveTracksBarePlayerJSON(t *testing.T) {
	raw := `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
		`{"baseUrl":"u","languageCode":"ko","kind":"asr"}]}}}`
	tracks := ResolveTracks([]byte(raw))
	if len(tracks) != 1 || !tracks[0].Generated {
		t.Fatalf("bare player JSON resolution failed: %+v", tracks)
	}
}

func TestResolveTracksEmpty(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"no markers", "<html><body>nothing here</body></html>"},
		{"unparseable array", `"captionTracks":[{"broken":`},
		{"player response without captions", `ytInitialPlayerResponse = {"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}};`},
		{"empty payload", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tracks := ResolveTracks([]byte(tt.payload)); len(tracks) != 0 {
				t.Errorf("got %d tracks, want 0", len(tracks))
			}
		})
	}
}

func TestExtractBalancedStringAware(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"flat", `[1,2,3] trailing`, `[1,2,3]`},
		{"nested", `[[1],[2,[3]]]x`, `[[1],[2,[3]]]`},
		{"bracket in string", `["a]b",2]y`, `["a]b",2]`},
		{"escaped quote in string", `["a\"]","b"]z`, `["a\"]","b"]`},
		{"unterminated", `[1,2`, ""},
		{"wrong opener", `{1}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractBalanced([]byte(tt.in), '[', ']')
			if string(got) != tt.want {
				t.Errorf("extractBalanced(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
