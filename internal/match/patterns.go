package match

import (
	"regexp"

	"github.com/pfrederiksen/course-adder/internal/normalize"
)

// sectionRules holds the compiled patterns for one canonical section.
type sectionRules struct {
	keyword   *regexp.Regexp
	separator *regexp.Regexp
	bare      *regexp.Regexp
}

// sectionExpr matches the canonical section with any number of leading
// zeros, so "9", "09" and "009" all satisfy section "09". Only the keyword
// rule uses it; a lone "1" is too common in row text to stand for "01".
func sectionExpr(section string) string {
	i := 0
	for i < len(section) && section[i] == '0' {
		i++
	}
	core := section[i:]
	if core == "" || core[0] < '0' || core[0] > '9' {
		// all zeros, or zeros followed directly by the letter
		core = "0" + core
	}
	return `0*` + regexp.QuoteMeta(core)
}

// paddedExpr matches the canonical section with at most one extra leading zero.
func paddedExpr(section string) string {
	return `0?` + regexp.QuoteMeta(section)
}

// keywordRule: "SEC-09", "Section: 9", "sec 09b".
func keywordRule(section string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\bSEC(?:TION)?\s*[:\-]*\s*` + sectionExpr(section) + `\b`)
}

// separatorRule: ": 09", "-09", " 09".
func separatorRule(section string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)[:\-\s]\s*` + paddedExpr(section) + `\b`)
}

// bareRule: "09" anywhere as its own token.
func bareRule(section string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + paddedExpr(section) + `\b`)
}

func compileRules(section string) sectionRules {
	section = normalize.StripNonWord(section)
	return sectionRules{
		keyword:   keywordRule(section),
		separator: separatorRule(section),
		bare:      bareRule(section),
	}
}

// any reports whether text satisfies at least one rule, tried in precedence order.
func (r sectionRules) any(text string) bool {
	return r.keyword.MatchString(text) ||
		r.separator.MatchString(text) ||
		r.bare.MatchString(text)
}
