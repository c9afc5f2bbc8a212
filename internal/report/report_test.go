package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/0x6d61/tampergen/internal/tamper"
	"github.com/0x6d61/tampergen/internal/variant"
)

const canonical = "'; WAITFOR DELAY '00:00:05'--"

func sampleResult() *variant.Result {
	return &variant.Result{
		Payload: canonical,
		Seed:    42,
		Variants: []variant.Variant{
			{Index: 1, Label: "payload_1", Name: "original", Category: tamper.CategoryIdentity, Text: canonical},
			{Index: 2, Label: "payload_2", Name: "url_encoded", Category: tamper.CategoryEncoding, Text: "%27%3B+WAITFOR+DELAY+%2700%3A00%3A05%27--"},
			{Index: 28, Label: "payload_28", Name: "space2plus", Category: tamper.CategoryWhitespace, Text: "';+WAITFOR+DELAY+'00:00:05'--"},
		},
		Baseline: variant.Variant{Label: variant.BaselineLabel, Name: "base64_encode", Category: tamper.CategoryEncoding, Text: "JzsgV0FJVEZPUiBERUxBWSAnMDA6MDA6MDUnLS0="},
		Failures: []variant.Failure{
			{Index: 9, Name: "charencode", Err: errors.New("code point out of range")},
		},
	}
}

func TestNew(t *testing.T) {
	cases := []struct {
		format string
		want   string
	}{
		{"text", "text"},
		{"JSON", "json"},
		{"yaml", "yaml"},
		{"yml", "yaml"},
	}
	for _, c := range cases {
		r, err := New(c.format)
		require.NoError(t, err, "New(%q)", c.format)
		assert.Equal(t, c.want, r.Format())
	}
	_, err := New("xml")
	assert.Error(t, err)
}

// --------------------------------------------------------------------------
// text
// --------------------------------------------------------------------------

func TestTextReporter_Blocks(t *testing.T) {
	var buf bytes.Buffer
	r := &TextReporter{NoColor: true}
	require.NoError(t, r.Generate(context.Background(), sampleResult(), &buf))
	out := buf.String()

	for _, want := range []string{
		"[payload_1]\n" + canonical + "\n\n",
		"[payload_2]\n%27%3B+WAITFOR+DELAY+%2700%3A00%3A05%27--\n\n",
		"[base64_plain]\nJzsgV0FJVEZPUiBERUxBWSAnMDA6MDA6MDUnLS0=\n",
	} {
		assert.Contains(t, out, want)
	}
	assert.True(t, strings.HasPrefix(out, "[payload_1]"), "non-verbose output should start with the first block")
	assert.Less(t, strings.Index(out, "[payload_28]"), strings.Index(out, "[base64_plain]"))
	assert.Contains(t, out, "Skipped:")
	assert.Contains(t, out, "payload_9 (charencode)")
	assert.NotContains(t, out, "\x1b[")
}

func TestTextReporter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	r := &TextReporter{Verbose: 2, NoColor: true}
	require.NoError(t, r.Generate(context.Background(), sampleResult(), &buf))
	out := buf.String()

	for _, want := range []string{
		"Payload: " + canonical,
		"Seed:    42",
		"[payload_2] url_encoded (encoding)",
		"Summary: 4 variants (4 distinct), 1 skipped",
	} {
		assert.Contains(t, out, want)
	}
}

func TestTextReporter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	err := (&TextReporter{}).Generate(ctx, sampleResult(), &buf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

// --------------------------------------------------------------------------
// json / yaml
// --------------------------------------------------------------------------

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONReporter{}).Generate(context.Background(), sampleResult(), &buf))

	var doc document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc), buf.String())
	assert.Equal(t, "tampergen", doc.Tool)
	assert.Equal(t, "1.0", doc.SchemaVersion)
	require.Len(t, doc.Variants, 3)
	assert.Equal(t, canonical, doc.Variants[0].Text)
	assert.Equal(t, variant.BaselineLabel, doc.Baseline.Label)
	assert.Equal(t, summary{Variants: 4, Distinct: 4, Skipped: 1}, doc.Summary)
	require.Len(t, doc.Skipped, 1)
	assert.Equal(t, "charencode", doc.Skipped[0].Name)
	assert.Contains(t, buf.String(), "'; WAITFOR", "payload should not be HTML-escaped")
}

func TestJSONReporter_Compact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONReporter{Compact: true}).Generate(context.Background(), sampleResult(), &buf))
	assert.NotContains(t, strings.TrimSpace(buf.String()), "\n")
}

func TestJSONReporter_EmptyVariants(t *testing.T) {
	var buf bytes.Buffer
	res := &variant.Result{Payload: canonical}
	require.NoError(t, (&JSONReporter{}).Generate(context.Background(), res, &buf))
	assert.Contains(t, buf.String(), `"variants": []`)
}

func TestYAMLReporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLReporter{}).Generate(context.Background(), sampleResult(), &buf))

	var doc document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc), buf.String())
	assert.Equal(t, canonical, doc.Payload)
	require.Len(t, doc.Variants, 3)
	assert.Equal(t, "space2plus", doc.Variants[2].Name)
	assert.Equal(t, 4, doc.Summary.Distinct)
}
