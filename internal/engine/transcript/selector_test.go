package transcript

import (
	"testing"

	"github.com/anatolykoptev/go-transcript/internal/engine"
)

func track(code string, generated bool) engine.CaptionTrack {
	return engine.CaptionTrack{BaseURL: "u-" + code, LanguageCode: code, Generated: generated}
}

func TestSelectTrackPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		tracks []engine.CaptionTrack
		langs  []string
		strict bool
		want   string // language code of expected pick
		wantOK bool
	}{
		{
			name:   "manual preferred beats generated preferred",
			tracks: []engine.CaptionTrack{track("en", true), track("en", false)},
			langs:  []string{"en"},
			want:   "en", wantOK: true,
		},
		{
			name:   "earlier preferred language wins",
			tracks: []engine.CaptionTrack{track("es", false), track("en", false)},
			langs:  []string{"en", "es"},
			want:   "en", wantOK: true,
		},
		{
			name:   "prefix match accepts regional variant",
			tracks: []engine.CaptionTrack{track("en-US", false)},
			langs:  []string{"en"},
			want:   "en-US", wantOK: true,
		},
		{
			name:   "generated preferred beats manual other",
			tracks: []engine.CaptionTrack{track("fr", false), track("en", true)},
			langs:  []string{"en"},
			want:   "en", wantOK: true,
		},
		{
			name:   "manual other beats generated other",
			tracks: []engine.CaptionTrack{track("es", true), track("fr", false)},
			langs:  []string{"en"},
			want:   "fr", wantOK: true,
		},
		{
			name:   "last resort first track",
			tracks: []engine.CaptionTrack{track("ja", true), track("ko", true)},
			langs:  []string{"en"},
			want:   "ja", wantOK: true,
		},
		{
			name:   "strict rejects last resort",
			tracks: []engine.CaptionTrack{track("ja", true), track("ko", true)},
			langs:  []string{"en"},
			strict: true,
			wantOK: false,
		},
		{
			name:   "no tracks",
			tracks: nil,
			langs:  []string{"en"},
			wantOK: false,
		},
		{
			name:   "reversed prefix does not match",
			tracks: []engine.CaptionTrack{track("en", false)},
			langs:  []string{"en-US"},
			strict: true,
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectTrack(tt.tracks, tt.langs, tt.strict)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.LanguageCode != tt.want {
				t.Errorf("picked %s, want %s", got.LanguageCode, tt.want)
			}
		})
	}
}

func TestSelectTrackDeterministic(t *testing.T) {
	tracks := []engine.CaptionTrack{
		track("es", true), track("en-GB", false), track("en-US", false), track("fr", false),
	}
	langs := []string{"en", "fr"}

	first, ok := SelectTrack(tracks, langs, false)
	if !ok {
		t.Fatal("expected a pick")
	}
	for i := 0; i < 20; i++ {
		got, ok := SelectTrack(tracks, langs, false)
		if !ok || got != first {
			t.Fatalf("iteration %d: pick changed from %+v to %+v", i, first, got)
		}
	}
}

func TestSelectTrackNeverPrefersGeneratedOverMatchingManual(t *testing.T) {
	tracks := []engine.CaptionTrack{
		track("en", true), // generated English listed first
		track("en", false),
		track("es", true),
	}
	got, ok := SelectTrack(tracks, []string{"en", "es"}, false)
	if !ok {
		t.Fatal("expected a pick")
	}
	if got.Generated {
		t.Errorf("picked generated %s while a manual track matching an earlier preference exists", got.LanguageCode)
	}
}
