package payload

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Decoder reverses one encoding tamper.
type Decoder interface {
	Name() string
	Decode(s string) (string, error)
}

// DecoderFunc adapts a plain function to Decoder.
type DecoderFunc struct {
	name string
	fn   func(string) (string, error)
}

// Name returns the tamper name this decoder reverses.
func (d DecoderFunc) Name() string { return d.name }

// Decode applies the decoder.
func (d DecoderFunc) Decode(s string) (string, error) { return d.fn(s) }

// decoders maps tamper names to the function that undoes them.
var decoders = map[string]func(string) (string, error){
	"original":             func(s string) (string, error) { return s, nil },
	"url_encoded":          FormDecode,
	"char_double_encode":   DoublePercentDecode,
	"charencode":           CharExprDecode,
	"charunicodeencode":    CharExprDecode,
	"charunicodeescape":    UnicodeUnescape,
	"base64_encode":        Base64Decode,
	"apostrophenullencode": NullConcatDecode,
	"append_nullbyte":      TrimNullByte,
}

// LookupDecoder returns the decoder for the named tamper. The second return
// value is false for tampers that are not reversible.
func LookupDecoder(name string) (Decoder, bool) {
	fn, ok := decoders[name]
	if !ok {
		return nil, false
	}
	return DecoderFunc{name: name, fn: fn}, true
}

// FormDecode reverses application/x-www-form-urlencoded escaping.
func FormDecode(s string) (string, error) {
	out, err := url.QueryUnescape(s)
	if err != nil {
		return "", fmt.Errorf("payload: form decode: %w", err)
	}
	return out, nil
}

// Base64Decode reverses standard base64.
func Base64Decode(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("payload: base64 decode: %w", err)
	}
	return string(b), nil
}

// DoublePercentDecode reverses the "%xx%xx" per-byte doubling: every byte
// appears as two identical percent escapes in a row.
func DoublePercentDecode(s string) (string, error) {
	const token = 3 // "%xx"
	if len(s)%(2*token) != 0 {
		return "", fmt.Errorf("payload: double percent decode: length %d is not a multiple of %d", len(s), 2*token)
	}
	out := make([]byte, 0, len(s)/(2*token))
	for i := 0; i < len(s); i += 2 * token {
		first, second := s[i:i+token], s[i+token:i+2*token]
		if first != second {
			return "", fmt.Errorf("payload: double percent decode: %q and %q differ at offset %d", first, second, i)
		}
		if first[0] != '%' {
			return "", fmt.Errorf("payload: double percent decode: missing %% at offset %d", i)
		}
		n, err := strconv.ParseUint(first[1:], 16, 8)
		if err != nil {
			return "", fmt.Errorf("payload: double percent decode: offset %d: %w", i, err)
		}
		out = append(out, byte(n))
	}
	return string(out), nil
}

// CharExprDecode evaluates a T-SQL concatenation of CHAR(n) and NCHAR(n)
// terms joined with '+', as a SQL engine would.
func CharExprDecode(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	var b strings.Builder
	for i, term := range strings.Split(s, "+") {
		var digits string
		switch {
		case strings.HasPrefix(term, "NCHAR(") && strings.HasSuffix(term, ")"):
			digits = term[len("NCHAR(") : len(term)-1]
		case strings.HasPrefix(term, "CHAR(") && strings.HasSuffix(term, ")"):
			digits = term[len("CHAR(") : len(term)-1]
			n, err := strconv.ParseUint(digits, 10, 8)
			if err != nil {
				return "", fmt.Errorf("payload: char decode: term %d %q: %w", i, term, err)
			}
			b.WriteRune(rune(n))
			continue
		default:
			return "", fmt.Errorf("payload: char decode: term %d %q is not CHAR(n) or NCHAR(n)", i, term)
		}
		n, err := strconv.ParseUint(digits, 10, 16)
		if err != nil {
			return "", fmt.Errorf("payload: char decode: term %d %q: %w", i, term, err)
		}
		b.WriteRune(rune(n))
	}
	return b.String(), nil
}

// UnicodeUnescape reverses a run of \uXXXX escapes, joining UTF-16
// surrogate pairs.
func UnicodeUnescape(s string) (string, error) {
	const token = 6 // `\uXXXX`
	if len(s)%token != 0 {
		return "", fmt.Errorf("payload: unicode unescape: length %d is not a multiple of %d", len(s), token)
	}
	units := make([]uint16, 0, len(s)/token)
	for i := 0; i < len(s); i += token {
		if s[i] != '\\' || s[i+1] != 'u' {
			return "", fmt.Errorf("payload: unicode unescape: missing \\u at offset %d", i)
		}
		n, err := strconv.ParseUint(s[i+2:i+token], 16, 16)
		if err != nil {
			return "", fmt.Errorf("payload: unicode unescape: offset %d: %w", i, err)
		}
		units = append(units, uint16(n))
	}
	return string(utf16.Decode(units)), nil
}

// NullConcatDecode collapses the '+CHAR(0)+' idiom back to a single quote.
func NullConcatDecode(s string) (string, error) {
	return strings.ReplaceAll(s, "'+CHAR(0)+'", "'"), nil
}

// TrimNullByte removes exactly one trailing NUL byte.
func TrimNullByte(s string) (string, error) {
	if !strings.HasSuffix(s, "\x00") {
		return "", fmt.Errorf("payload: trim null byte: no trailing NUL")
	}
	return s[:len(s)-1], nil
}
