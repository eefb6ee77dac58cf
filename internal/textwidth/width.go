// Package textwidth measures strings in terminal columns.
package textwidth

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StringWidth returns the widest line of s in monospace columns. East Asian
// wide and fullwidth runes take two columns; combining marks and format
// characters such as the zero-width non-joiner used in Persian take none.
func StringWidth(s string) int {
	if s == "" {
		return 0
	}
	maxWidth := 0
	for _, line := range strings.Split(s, "\n") {
		if w := lineWidth(line); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// PadRight appends spaces until the rendered width reaches target.
func PadRight(s string, target int) string {
	diff := target - StringWidth(s)
	if diff <= 0 {
		return s
	}
	return s + strings.Repeat(" ", diff)
}

// PadLeft prepends spaces until the rendered width reaches target.
func PadLeft(s string, target int) string {
	diff := target - StringWidth(s)
	if diff <= 0 {
		return s
	}
	return strings.Repeat(" ", diff) + s
}

// StripANSI removes SGR colour sequences.
func StripANSI(s string) string {
	return ansiRegexp.ReplaceAllString(s, "")
}

func lineWidth(s string) int {
	n := 0
	for _, r := range StripANSI(s) {
		n += runeWidth(r)
	}
	return n
}

func runeWidth(r rune) int {
	switch {
	case r == '\r' || r == '\n':
		return 0
	case unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf):
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}
