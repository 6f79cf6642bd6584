package transcript

import "bytes"

// Anti-automation signals. A response matching one of these is a block of
// the current egress, not a statement about caption availability, so the
// chain should advance to the next transport.
var blockMarkers = [][]byte{
	[]byte("consent.youtube.com"),
	[]byte("https://www.google.com/sorry/"),
	[]byte("recaptcha"),
	[]byte("Our systems have detected unusual traffic"),
}

// IsBlocked reports whether the payload is a consent/verification
// interstitial rather than a watch page.
func IsBlocked(payload []byte) bool {
	for _, m := range blockMarkers {
		if bytes.Contains(payload, m) {
			return true
		}
	}
	return false
}
