// Package tamper provides the catalog of payload transformations used to
// exercise WAF and input-filter evasion coverage.
//
// Every Tamper maps one input string to one output string. Deterministic
// tampers are pure functions of their input; randomized tampers additionally
// draw from the *rand.Rand passed to Apply, so a fixed-seed source makes
// their output reproducible.
//
// Tampers are grouped by category:
//   - encoding:          url_encoded, charencode, base64_encode, ...
//   - case:              mixed_case_spaces, lowercase, uppercase, random_case
//   - whitespace:        space2comment, space2dash, space2randomblank, ...
//   - comment-injection: comment_before_parentheses, random_comments, plus2concat, ...
//   - keyword-rewrite:   sleep2getlock, unionalltounion, d_union
//
// Usage:
//
//	rng := rand.New(rand.NewSource(42))
//	for _, t := range tamper.Default() {
//		out, err := t.Apply(payload.Base, rng)
//		...
//	}
package tamper

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Category groups tampers by obfuscation technique.
type Category string

const (
	CategoryIdentity         Category = "identity"
	CategoryEncoding         Category = "encoding"
	CategoryCase             Category = "case"
	CategoryWhitespace       Category = "whitespace"
	CategoryCommentInjection Category = "comment-injection"
	CategoryKeywordRewrite   Category = "keyword-rewrite"
)

// Categories returns every category in catalog order.
func Categories() []Category {
	return []Category{
		CategoryIdentity,
		CategoryEncoding,
		CategoryCase,
		CategoryWhitespace,
		CategoryCommentInjection,
		CategoryKeywordRewrite,
	}
}

var (
	// ErrUnsupportedCodepoint is returned when a character falls outside the
	// range a tamper's target encoding can represent.
	ErrUnsupportedCodepoint = errors.New("unsupported code point")

	// ErrNilRand is returned when a randomized tamper is applied without a
	// randomness source.
	ErrNilRand = errors.New("randomized tamper requires a non-nil *rand.Rand")
)

// CodepointError describes a character a tamper could not encode.
type CodepointError struct {
	Tamper string
	Rune   rune
	Offset int  // byte offset in the input
	Max    rune // largest code point the tamper accepts
}

func (e *CodepointError) Error() string {
	return fmt.Sprintf("tamper %s: code point U+%04X at offset %d exceeds U+%04X",
		e.Tamper, e.Rune, e.Offset, e.Max)
}

// Unwrap lets errors.Is match ErrUnsupportedCodepoint.
func (e *CodepointError) Unwrap() error { return ErrUnsupportedCodepoint }

// Tamper transforms a raw SQL injection payload string.
type Tamper interface {
	// Name returns the tamper's short identifier (e.g. "space2comment").
	Name() string
	// Category returns the technique group the tamper belongs to.
	Category() Category
	// Randomized reports whether Apply draws from rng.
	Randomized() bool
	// Apply transforms s. Deterministic tampers ignore rng.
	Apply(s string, rng *rand.Rand) (string, error)
}

// deterministicTamper wraps a pure transformation.
type deterministicTamper struct {
	name     string
	category Category
	fn       func(string) (string, error)
}

func (t *deterministicTamper) Name() string       { return t.name }
func (t *deterministicTamper) Category() Category { return t.category }
func (t *deterministicTamper) Randomized() bool   { return false }

func (t *deterministicTamper) Apply(s string, _ *rand.Rand) (string, error) {
	return t.fn(s)
}

// randomizedTamper wraps a transformation that draws from an injected source.
type randomizedTamper struct {
	name     string
	category Category
	fn       func(string, *rand.Rand) string
}

func (t *randomizedTamper) Name() string       { return t.name }
func (t *randomizedTamper) Category() Category { return t.category }
func (t *randomizedTamper) Randomized() bool   { return true }

func (t *randomizedTamper) Apply(s string, rng *rand.Rand) (string, error) {
	if rng == nil {
		return "", fmt.Errorf("tamper %s: %w", t.name, ErrNilRand)
	}
	return t.fn(s, rng), nil
}

// pure lifts an infallible transformation into a deterministic tamper.
func pure(name string, category Category, fn func(string) string) Tamper {
	return &deterministicTamper{
		name:     name,
		category: category,
		fn:       func(s string) (string, error) { return fn(s), nil },
	}
}

// fallible builds a deterministic tamper that may reject its input.
func fallible(name string, category Category, fn func(string) (string, error)) Tamper {
	return &deterministicTamper{name: name, category: category, fn: fn}
}

// random builds a randomized tamper.
func random(name string, category Category, fn func(string, *rand.Rand) string) Tamper {
	return &randomizedTamper{name: name, category: category, fn: fn}
}

// replacer builds a whole-string substring replacement tamper. Replacement is
// textual, not SQL-aware: every occurrence of old is rewritten.
func replacer(name string, category Category, old, new string) Tamper {
	return pure(name, category, func(s string) string {
		return strings.ReplaceAll(s, old, new)
	})
}

// registry maps lower-cased tamper names to catalog entries; positions maps
// the same keys to 1-based catalog positions.
var (
	registry  map[string]Tamper
	positions map[string]int
)

func init() {
	registry = make(map[string]Tamper, len(catalog))
	positions = make(map[string]int, len(catalog))
	for i, t := range catalog {
		key := strings.ToLower(t.Name())
		registry[key] = t
		positions[key] = i + 1
	}
}

// Position returns the 1-based position of t in the built-in catalog, or 0
// when t is not a built-in entry.
func Position(t Tamper) int {
	if t == nil {
		return 0
	}
	key := strings.ToLower(t.Name())
	if registry[key] != t {
		return 0
	}
	return positions[key]
}

// Lookup returns the Tamper for the given name, or nil if not found.
func Lookup(name string) Tamper {
	t, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil
	}
	return t
}

// Available returns all registered tamper names in alphabetical order.
func Available() []string {
	names := make([]string, 0, len(registry))
	for _, t := range registry {
		names = append(names, t.Name())
	}
	sort.Strings(names)
	return names
}

// ByCategory returns the catalog entries of one category, in catalog order.
func ByCategory(cat Category) Catalog {
	var out Catalog
	for _, t := range catalog {
		if t.Category() == cat {
			out = append(out, t)
		}
	}
	return out
}
