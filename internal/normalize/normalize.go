package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var nonWordPattern = regexp.MustCompile(`[^A-Z0-9]`)

// NormalizeToken uppercases text, collapses whitespace runs (any Unicode
// space, vertical tab included) to a single space and trims both ends.
// Full-width and other compatibility forms are folded first, so
// "ＣＳＥ２２１" reads as "CSE221".
func NormalizeToken(text string) string {
	if text == "" {
		return ""
	}
	upper := strings.ToUpper(norm.NFKC.String(text))
	return strings.Join(strings.Fields(upper), " ")
}

// StripNonWord uppercases text and removes every character that is not an
// ASCII letter or digit.
func StripNonWord(text string) string {
	if text == "" {
		return ""
	}
	upper := strings.ToUpper(norm.NFKC.String(text))
	return nonWordPattern.ReplaceAllString(upper, "")
}
