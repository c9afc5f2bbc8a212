package tamper

import (
	"math/rand"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// The pinned spellings are matched case-insensitively so they win no
	// matter which case each letter was randomly given.
	waitforPattern = regexp.MustCompile(`(?i)WAITFOR`)
	delayPattern   = regexp.MustCompile(`(?i)DELAY`)
)

const (
	pinnedWaitfor = "WAiTfOr   "
	pinnedDelay   = "DeLaY "
)

// randomCase flips a fair coin per character to choose upper or lower case.
func randomCase(s string, rng *rand.Rand) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if rng.Intn(2) == 0 {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// mixedCaseSpaces randomizes case, then pins WAITFOR and DELAY to fixed
// spellings padded with trailing spaces.
//
// Example:
//
//	"WAITFOR DELAY" → "WAiTfOr    DeLaY "
func mixedCaseSpaces(s string, rng *rand.Rand) string {
	out := randomCase(s, rng)
	out = waitforPattern.ReplaceAllLiteralString(out, pinnedWaitfor)
	return delayPattern.ReplaceAllLiteralString(out, pinnedDelay)
}

// A cases.Caser keeps internal state, so each call builds its own.

func lowercase(s string) string {
	return cases.Lower(language.Und).String(s)
}

func uppercase(s string) string {
	return cases.Upper(language.Und).String(s)
}
