package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	// FallbackFilename replaces titles that sanitize to nothing
	FallbackFilename = "audio"

	// MaxFilenameLength keeps room for the extension under common 255-byte limits
	MaxFilenameLength = 200
)

var (
	disallowedChars = regexp.MustCompile(`[^A-Za-z0-9\-_ .]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// SanitizeFilename reduces an untrusted title to [A-Za-z0-9-_ .].
// Non-ASCII input (including invalid UTF-8) is stripped first, then any
// other disallowed character; whitespace runs collapse to one space and
// the result is trimmed. Empty results become FallbackFilename.
// SanitizeFilename(SanitizeFilename(s)) == SanitizeFilename(s).
func SanitizeFilename(title string) string {
	ascii, _, err := transform.String(runes.Remove(runes.Predicate(isNonASCII)), title)
	if err != nil {
		ascii = stripNonASCII(title)
	}

	clean := disallowedChars.ReplaceAllString(ascii, "")
	clean = whitespaceRuns.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(clean)

	if len(clean) > MaxFilenameLength {
		clean = strings.TrimSpace(clean[:MaxFilenameLength])
	}

	if clean == "" {
		return FallbackFilename
	}
	return clean
}

func isNonASCII(r rune) bool {
	return r > unicode.MaxASCII
}

// stripNonASCII is the byte-level equivalent used if the transformer fails
func stripNonASCII(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] <= unicode.MaxASCII {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
