package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/0x6d61/tampergen/internal/variant"
)

const (
	doubleLine = "\u2550" // ═
	singleLine = "\u2500" // ─
	lineWidth  = 50
)

// TextReporter prints one labeled block per variant:
//
//	[payload_1]
//	'; WAITFOR DELAY '00:00:05'--
//
// Labels are styled when w is a color terminal.
type TextReporter struct {
	// Verbose controls detail level: 0=blocks only, 1=+header and summary,
	// 2=+tamper name and category per block.
	Verbose int
	// NoColor disables styling even on a terminal.
	NoColor bool
}

// Format returns "text".
func (r *TextReporter) Format() string {
	return "text"
}

// Generate writes the labeled blocks to w.
func (r *TextReporter) Generate(ctx context.Context, result *variant.Result, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	renderer := lipgloss.NewRenderer(w)
	if r.NoColor {
		renderer.SetColorProfile(termenv.Ascii)
	}
	labelStyle := renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	metaStyle := renderer.NewStyle().Faint(true)
	warnStyle := renderer.NewStyle().Foreground(lipgloss.Color("3"))

	b := &strings.Builder{}
	doubleBar := strings.Repeat(doubleLine, lineWidth)
	singleBar := strings.Repeat(singleLine, lineWidth)

	if r.Verbose >= 1 {
		fmt.Fprintln(b, doubleBar)
		fmt.Fprintln(b, "tampergen - payload variants")
		fmt.Fprintln(b, doubleBar)
		fmt.Fprintf(b, "Payload: %s\n", result.Payload)
		fmt.Fprintf(b, "Seed:    %d\n", result.Seed)
		fmt.Fprintln(b, singleBar)
	}

	for _, v := range result.Variants {
		r.writeBlock(b, labelStyle, metaStyle, v)
		fmt.Fprintln(b)
	}
	r.writeBlock(b, labelStyle, metaStyle, result.Baseline)

	if len(result.Failures) > 0 {
		fmt.Fprintln(b, singleBar)
		fmt.Fprintln(b, warnStyle.Render("Skipped:"))
		for _, f := range result.Failures {
			fmt.Fprintf(b, "  - %s\n", f.Error())
		}
	}

	if r.Verbose >= 1 {
		fmt.Fprintln(b, doubleBar)
		fmt.Fprintf(b, "Summary: %d variants (%d distinct), %d skipped\n",
			len(result.Variants)+1, result.Distinct(), len(result.Failures))
		fmt.Fprintln(b, doubleBar)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *TextReporter) writeBlock(b *strings.Builder, label, meta lipgloss.Style, v variant.Variant) {
	header := label.Render("[" + v.Label + "]")
	if r.Verbose >= 2 {
		header += " " + meta.Render(fmt.Sprintf("%s (%s)", v.Name, v.Category))
	}
	fmt.Fprintln(b, header)
	fmt.Fprintln(b, v.Text)
}
