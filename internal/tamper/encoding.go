package tamper

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf16"
)

const (
	maxChar  = 0xFF   // T-SQL CHAR() is single-byte
	maxNChar = 0xFFFF // T-SQL NCHAR() covers the BMP
)

// urlEncode percent-encodes s with form rules; spaces become '+'.
//
// Example:
//
//	"'; WAITFOR" → "%27%3B+WAITFOR"
func urlEncode(s string) string {
	return url.QueryEscape(s)
}

// charDoubleEncode writes every UTF-8 byte as a lowercase %xx escape, twice.
//
// Example:
//
//	"';" → "%27%27%3b%3b"
func charDoubleEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 6)
	for i := 0; i < len(s); i++ {
		fmt.Fprintf(&b, "%%%02x%%%02x", s[i], s[i])
	}
	return b.String()
}

// charEncode renders s as CHAR(n)+CHAR(n)+... so that a SQL engine rebuilds
// the original string. Code points above 255 are widened to NCHAR(n); code
// points beyond the BMP are rejected.
//
// Example:
//
//	"';" → "CHAR(39)+CHAR(59)"
func charEncode(s string) (string, error) {
	return concatEncode("charencode", s, func(r rune) string {
		if r <= maxChar {
			return "CHAR"
		}
		return "NCHAR"
	})
}

// charUnicodeEncode renders s as NCHAR(n)+NCHAR(n)+...
func charUnicodeEncode(s string) (string, error) {
	return concatEncode("charunicodeencode", s, func(rune) string { return "NCHAR" })
}

func concatEncode(name, s string, fn func(rune) string) (string, error) {
	terms := make([]string, 0, len(s))
	for off, r := range s {
		if r > maxNChar {
			return "", &CodepointError{Tamper: name, Rune: r, Offset: off, Max: maxNChar}
		}
		terms = append(terms, fn(r)+"("+strconv.Itoa(int(r))+")")
	}
	return strings.Join(terms, "+"), nil
}

// charUnicodeEscape emits every character as a lowercase \uXXXX escape.
// Characters outside the BMP are written as a UTF-16 surrogate pair.
//
// Example:
//
//	"';" → "\u0027\u003b"
func charUnicodeEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 6)
	for _, r := range s {
		if r > maxNChar {
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&b, "\\u%04x\\u%04x", hi, lo)
			continue
		}
		fmt.Fprintf(&b, "\\u%04x", r)
	}
	return b.String()
}

func base64Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// apostropheNullEncode splits every string literal around a CHAR(0) so the
// quote is no longer adjacent to the surrounding text. CHAR(0) is always in
// range, so this tamper never rejects input.
func apostropheNullEncode(s string) string {
	return strings.ReplaceAll(s, "'", "'+CHAR(0)+'")
}

func appendNullByte(s string) string {
	return s + "\x00"
}
