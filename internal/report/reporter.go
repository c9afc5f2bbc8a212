// Package report renders generated variant batches.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/0x6d61/tampergen/internal/variant"
)

// Reporter generates output in a specific format.
type Reporter interface {
	// Format returns the format name (e.g., "text", "json").
	Format() string

	// Generate writes the formatted batch to w.
	Generate(ctx context.Context, result *variant.Result, w io.Writer) error
}

// New creates a reporter by format name ("text", "json" or "yaml").
// The format name is case-insensitive.
func New(format string) (Reporter, error) {
	switch strings.ToLower(format) {
	case "text":
		return &TextReporter{}, nil
	case "json":
		return &JSONReporter{}, nil
	case "yaml", "yml":
		return &YAMLReporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %q", format)
	}
}

// document is the structured form shared by the JSON and YAML reporters.
type document struct {
	SchemaVersion string            `json:"schema_version" yaml:"schema_version"`
	Tool          string            `json:"tool" yaml:"tool"`
	Payload       string            `json:"payload" yaml:"payload"`
	Seed          int64             `json:"seed" yaml:"seed"`
	Variants      []variant.Variant `json:"variants" yaml:"variants"`
	Baseline      variant.Variant   `json:"baseline" yaml:"baseline"`
	Skipped       []skipped         `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Summary       summary           `json:"summary" yaml:"summary"`
}

type skipped struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name" yaml:"name"`
	Error string `json:"error" yaml:"error"`
}

type summary struct {
	Variants int `json:"variants" yaml:"variants"` // baseline included
	Distinct int `json:"distinct" yaml:"distinct"`
	Skipped  int `json:"skipped" yaml:"skipped"`
}

func newDocument(result *variant.Result) document {
	doc := document{
		SchemaVersion: "1.0",
		Tool:          "tampergen",
		Payload:       result.Payload,
		Seed:          result.Seed,
		Variants:      result.Variants,
		Baseline:      result.Baseline,
		Summary: summary{
			Variants: len(result.Variants) + 1,
			Distinct: result.Distinct(),
			Skipped:  len(result.Failures),
		},
	}
	if doc.Variants == nil {
		doc.Variants = []variant.Variant{}
	}
	for _, f := range result.Failures {
		doc.Skipped = append(doc.Skipped, skipped{Index: f.Index, Name: f.Name, Error: f.Err.Error()})
	}
	return doc
}
