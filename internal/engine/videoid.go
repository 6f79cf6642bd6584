package engine

import (
	"fmt"
	"strings"
)

// ParseVideoID canonicalizes a video reference: a bare 11-character ID
// passes through, and the common watch/short-link/embed URL forms are
// reduced to the ID they carry.
func ParseVideoID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("video ID required")
	}
	if len(ref) == 11 && !strings.ContainsAny(ref, "/?&.") {
		return ref, nil
	}

	if strings.Contains(ref, "youtube.com") || strings.Contains(ref, "youtu.be") {
		for _, sep := range []string{"youtu.be/", "watch?v=", "/embed/", "/v/", "/shorts/"} {
			if _, after, ok := strings.Cut(ref, sep); ok {
				id := after
				if i := strings.IndexAny(id, "?&/"); i >= 0 {
					id = id[:i]
				}
				if id != "" {
					return id, nil
				}
			}
		}
		return "", fmt.Errorf("unrecognized video URL: %s", ref)
	}

	return ref, nil
}
