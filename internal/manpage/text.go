// SPDX-License-Identifier: Unlicense OR MIT

package manpage

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var lineBreaks = strings.NewReplacer("\r", "", "\n", " ", "\t", " ")

// Clean flattens rendered documentation text to a single line: line breaks
// are removed, runs of spaces collapsed, and the first letter upper-cased.
func Clean(s string) string {
	s = lineBreaks.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	s = norm.NFC.String(s)
	r, size := utf8.DecodeRuneInString(s)
	if size > 0 && unicode.IsLower(r) {
		s = string(unicode.ToUpper(r)) + s[size:]
	}
	return s
}

// Wrap breaks text into lines of at most width runes at spaces. A word
// longer than width occupies a line of its own.
func Wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	n := 0
	for _, w := range strings.Fields(text) {
		wn := utf8.RuneCountInString(w)
		if n > 0 && n+1+wn > width {
			lines = append(lines, line.String())
			line.Reset()
			n = 0
		}
		if n > 0 {
			line.WriteByte(' ')
			n++
		}
		line.WriteString(w)
		n += wn
	}
	if n > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
