// Package variant applies the tamper catalog to a payload and assembles the
// ordered set of labeled variants.
package variant

import (
	"fmt"

	"github.com/spaolacci/murmur3"

	"github.com/0x6d61/tampergen/internal/tamper"
)

// BaselineLabel labels the base64 rendering of the untransformed payload.
const BaselineLabel = "base64_plain"

// Variant is the output of applying one tamper to the payload.
type Variant struct {
	Index       int             `json:"index" yaml:"index"` // 1-based catalog position; 0 for the baseline
	Label       string          `json:"label" yaml:"label"`
	Name        string          `json:"name" yaml:"name"`
	Category    tamper.Category `json:"category" yaml:"category"`
	Randomized  bool            `json:"randomized" yaml:"randomized"`
	Text        string          `json:"text" yaml:"text"`
	Fingerprint uint32          `json:"fingerprint" yaml:"fingerprint"`
}

// Failure records a catalog entry that was skipped.
type Failure struct {
	Index int
	Name  string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("payload_%d (%s): %v", f.Index, f.Name, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result is one generated batch.
type Result struct {
	Payload  string
	Seed     int64 // seed the caller built rng from; informational only
	Variants []Variant
	Baseline Variant
	Failures []Failure
}

// All returns the catalog variants followed by the baseline.
func (r *Result) All() []Variant {
	out := make([]Variant, 0, len(r.Variants)+1)
	out = append(out, r.Variants...)
	return append(out, r.Baseline)
}

// Distinct counts variants with distinct text, baseline included.
func (r *Result) Distinct() int {
	seen := make(map[string]struct{}, len(r.Variants)+1)
	for _, v := range r.All() {
		seen[v.Text] = struct{}{}
	}
	return len(seen)
}

// Label returns the output label for the 1-based catalog index i.
func Label(i int) string {
	return fmt.Sprintf("payload_%d", i)
}

// Fingerprint hashes a variant's text with murmur3.
func Fingerprint(text string) uint32 {
	return murmur3.Sum32([]byte(text))
}

func newVariant(index int, t tamper.Tamper, text string) Variant {
	return Variant{
		Index:       index,
		Label:       Label(index),
		Name:        t.Name(),
		Category:    t.Category(),
		Randomized:  t.Randomized(),
		Text:        text,
		Fingerprint: Fingerprint(text),
	}
}
