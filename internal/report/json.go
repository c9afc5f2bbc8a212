package report

import (
	"context"
	"encoding/json"
	"io"

	"github.com/0x6d61/tampergen/internal/variant"
)

// JSONReporter outputs structured JSON.
type JSONReporter struct {
	// Compact outputs single-line JSON when true (no indentation).
	Compact bool
}

// Format returns "json".
func (r *JSONReporter) Format() string {
	return "json"
}

// Generate writes the batch as JSON to w.
func (r *JSONReporter) Generate(ctx context.Context, result *variant.Result, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	// Variants are attack strings; keep '<', '>' and '&' literal.
	enc.SetEscapeHTML(false)
	if !r.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(newDocument(result))
}
