package target

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pfrederiksen/course-adder/internal/normalize"
)

var (
	// Course: two or more letters, optional space, two or three digits.
	coursePattern = regexp.MustCompile(`(?i)[A-Z]{2,}\s*\d{2,3}`)

	// Section: optional SEC/SECTION keyword, then 1-3 digits and an optional letter.
	sectionPattern = regexp.MustCompile(`(?i)(?:SEC(?:TION)?[\s:-]*)?([0-9]{1,3}[A-Z]?)`)

	// sectionParts splits a section token into its digit run and letter.
	sectionParts = regexp.MustCompile(`^(\d{1,3})([A-Z]?)$`)
)

// Target is the canonical form of one requested course line.
type Target struct {
	Course  string `json:"course"`
	Section string `json:"section,omitempty"` // empty means any section
}

// HasSection reports whether a specific section was requested.
func (t Target) HasSection() bool {
	return t.Section != ""
}

// String renders the target for logs and reports.
func (t Target) String() string {
	if !t.HasSection() {
		return t.Course
	}
	return fmt.Sprintf("%s sec %s", t.Course, t.Section)
}

// Parse converts one free-text line into a Target. It returns false only when
// no course code can be found in the line.
//
// The section is looked for after the course code first and then anywhere in
// the line. In the second pass the course code itself is blanked out so its
// digits are never read back as a section; other stray numbers (a year, a
// room number) can still be picked up.
func Parse(line string) (Target, bool) {
	raw := normalize.NormalizeToken(line)

	loc := coursePattern.FindStringIndex(raw)
	if loc == nil {
		return Target{}, false
	}

	t := Target{Course: normalize.StripNonWord(raw[loc[0]:loc[1]])}

	token := findSection(raw[loc[1]:])
	if token == "" {
		masked := raw[:loc[0]] + strings.Repeat(" ", loc[1]-loc[0]) + raw[loc[1]:]
		token = findSection(masked)
	}
	t.Section = canonicalSection(token)

	return t, true
}

// findSection returns the first section-shaped token in s, or "".
func findSection(s string) string {
	m := sectionPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// canonicalSection pads the digit run of a section token to two digits and
// keeps three-digit runs as they are. Tokens that do not decompose into
// digits plus an optional letter yield "".
func canonicalSection(token string) string {
	m := sectionParts.FindStringSubmatch(strings.ToUpper(token))
	if m == nil {
		return ""
	}

	digits := m[1]
	if len(digits) < 2 {
		digits = strings.Repeat("0", 2-len(digits)) + digits
	}
	return digits + m[2]
}
