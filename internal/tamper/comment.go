package tamper

import (
	"strings"
	"unicode"
)

// randomComments appends an inline comment after every letter.
//
// Example:
//
//	"OR 1" → "O/**/R/**/ 1"
func randomComments(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 5)
	for _, r := range s {
		b.WriteRune(r)
		if unicode.IsLetter(r) {
			b.WriteString(blankComment)
		}
	}
	return b.String()
}
