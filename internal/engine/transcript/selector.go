package transcript

import (
	"strings"

	"github.com/anatolykoptev/go-transcript/internal/engine"
)

// SelectTrack picks one caption track for the given language preference
// order. Precedence, first match wins:
//
//  1. manual track prefix-matching a preferred code, in preference order
//  2. generated track prefix-matching a preferred code, same order
//  3. any manual track
//  4. the first track, unless strict language selection is requested
//
// Prefix matching means "en" accepts "en-US". Deterministic for fixed
// inputs. Returns false when no track is acceptable.
func SelectTrack(tracks []engine.CaptionTrack, langs []string, strict bool) (engine.CaptionTrack, bool) {
	if len(tracks) == 0 {
		return engine.CaptionTrack{}, false
	}

	// 1. Manual track in a preferred language.
	for _, lang := range langs {
		for _, t := range tracks {
			if !t.Generated && langMatches(t.LanguageCode, lang) {
				return t, true
			}
		}
	}
	// 2. Generated track in a preferred language.
	for _, lang := range langs {
		for _, t := range tracks {
			if t.Generated && langMatches(t.LanguageCode, lang) {
				return t, true
			}
		}
	}
	// 3. Any manual track, regardless of language.
	for _, t := range tracks {
		if !t.Generated {
			return t, true
		}
	}
	// 4. Favor availability over language fidelity.
	if strict {
		return engine.CaptionTrack{}, false
	}
	return tracks[0], true
}

// langMatches reports whether code satisfies the preferred code pref.
// "en" matches "en" and "en-US"; "en-US" does not match a bare "en" track.
func langMatches(code, pref string) bool {
	if strings.EqualFold(code, pref) {
		return true
	}
	return len(code) > len(pref) && strings.EqualFold(code[:len(pref)], pref) && code[len(pref)] == '-'
}
