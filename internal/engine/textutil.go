package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// UserAgentBot identifies requests that go through our own relays, where
// a browser disguise buys nothing.
const UserAgentBot = "GoTranscript/1.0"

// DecodeEntities decodes the character references YouTube emits in
// timedtext payloads: the five named XML/HTML entities plus decimal
// numeric code-point references (&#39; and friends).
func DecodeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		ref := s[i+1 : i+end]
		if r, ok := decodeRef(ref); ok {
			b.WriteString(r)
		} else {
			b.WriteString(s[i : i+end+1])
		}
		i += end + 1
	}
	return b.String()
}

func decodeRef(ref string) (string, bool) {
	switch ref {
	case "amp":
		return "&", true
	case "lt":
		return "<", true
	case "gt":
		return ">", true
	case "quot":
		return `"`, true
	case "apos":
		return "'", true
	}
	if strings.HasPrefix(ref, "#") && !strings.HasPrefix(ref, "#x") && !strings.HasPrefix(ref, "#X") {
		if cp, err := strconv.Atoi(ref[1:]); err == nil && cp > 0 {
			return string(rune(cp)), true
		}
	}
	return "", false
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// CollapseSpace flattens embedded line breaks to single spaces and trims.
func CollapseSpace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

// Truncate caps s at limit runes for log output. Safe for UTF-8.
func Truncate(s string, limit int) string {
	return strutil.TruncateWith(s, limit, "…")
}
