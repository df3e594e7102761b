package target

import (
	"fmt"
	"regexp"
	"strings"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// SplitLines splits pasted text into request lines, trimming each line and
// dropping blank ones.
func SplitLines(text string) []string {
	lines := make([]string, 0)
	for _, line := range lineBreak.Split(text, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// CountLabel returns "1 line" or "N lines".
func CountLabel(n int) string {
	if n == 1 {
		return "1 line"
	}
	return fmt.Sprintf("%d lines", n)
}
