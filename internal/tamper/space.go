package tamper

import (
	"math/rand"
	"strings"
)

// Replacement strings for the whitespace tampers. Several sqlmap tampers
// share a replacement and differ only in the DBMS they were written for.
const (
	blankComment     = "/**/"
	blankDash        = "--"
	blankHash        = "#"
	blankMoreComment = "/**//**/"
	blankMoreHash    = "##"
	blankNone        = ""
	blankPlus        = "+"
)

// space2RandomBlank independently keeps or deletes each space.
func space2RandomBlank(s string, rng *rand.Rand) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r != ' ' {
			b.WriteRune(r)
			continue
		}
		if rng.Intn(2) == 1 {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func space2(name, blank string) Tamper {
	return replacer(name, CategoryWhitespace, " ", blank)
}
