package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/0x6d61/tampergen/internal/payload"
	"github.com/0x6d61/tampergen/internal/variant"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every reversible variant decodes back to the payload",
	Long: `Verify generates a batch and decodes each variant produced by a reversible
tamper (url_encoded, charencode, base64_encode, ...). It fails if any decoded
variant differs from the untransformed payload.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	addGenerationFlags(verifyCmd)
}

// verification is the outcome of decoding one variant.
type verification struct {
	Variant variant.Variant
	Decoded string
	Err     error
}

func (v verification) ok(want string) bool {
	return v.Err == nil && v.Decoded == want
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Verbose, cmd.ErrOrStderr())

	result, err := generateBatch(cfg, nil, logger)
	if err != nil {
		return err
	}

	checks := verifyResult(result)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("LABEL", "NAME", "STATUS")
	failed := 0
	for _, c := range checks {
		status := "ok"
		if !c.ok(result.Payload) {
			failed++
			status = "MISMATCH"
			if c.Err != nil {
				status = "ERROR: " + c.Err.Error()
			}
			logger.Warn("variant does not decode to payload",
				"label", c.Variant.Label,
				"transform", c.Variant.Name,
				"decoded", strconv.Quote(c.Decoded),
			)
		}
		t.Row(c.Variant.Label, c.Variant.Name, status)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())

	if failed > 0 {
		return fmt.Errorf("%d of %d reversible variant(s) failed to decode", failed, len(checks))
	}
	return nil
}

// verifyResult decodes every variant that has a registered decoder,
// baseline included.
func verifyResult(result *variant.Result) []verification {
	var checks []verification
	for _, v := range result.All() {
		dec, ok := payload.LookupDecoder(v.Name)
		if !ok {
			continue
		}
		decoded, err := dec.Decode(v.Text)
		checks = append(checks, verification{Variant: v, Decoded: decoded, Err: err})
	}
	return checks
}
