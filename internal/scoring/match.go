package scoring

import (
	"regexp"
	"strings"
	"unicode"
)

// MatchBlank checks a submitted value against a blank's expected value. The
// expected value is treated as a regular expression anchored over the whole
// trimmed submission; if it does not compile it degrades to a normalized
// literal comparison.
func MatchBlank(expected, value string) bool {
	trimmed := strings.TrimSpace(value)

	re, err := regexp.Compile("^(?:" + expected + ")$")
	if err != nil {
		return normalize(expected) == normalize(value)
	}
	return re.MatchString(trimmed)
}

// normalize casefolds, drops punctuation and collapses runs of whitespace.
func normalize(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsPunct(r):
			// skip
		default:
			if space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = false
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
