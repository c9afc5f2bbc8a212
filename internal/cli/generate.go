package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/0x6d61/tampergen/internal/config"
	"github.com/0x6d61/tampergen/internal/history"
	"github.com/0x6d61/tampergen/internal/metrics"
	"github.com/0x6d61/tampergen/internal/payload"
	"github.com/0x6d61/tampergen/internal/report"
	"github.com/0x6d61/tampergen/internal/tamper"
	"github.com/0x6d61/tampergen/internal/variant"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate every tampered variant of the payload",
	Long: `Generate applies each catalog tamper exactly once to the untransformed payload
and prints the variants in catalog order, followed by the base64 baseline.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerationFlags(generateCmd)
	generateCmd.Flags().String("metrics-textfile", "", "Write Prometheus metrics to this textfile")
}

// addGenerationFlags declares the flags shared by generate and verify.
func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("parallel", false, "Apply tampers concurrently")
	cmd.Flags().Int("workers", 0, "Number of workers when --parallel is set (default 4)")
	cmd.Flags().StringSlice("only", nil, "Restrict the catalog to these tampers (comma-separated)")
}

// runGenerate wires config → catalog → generator → history/metrics → report.
func runGenerate(cmd *cobra.Command, args []string) error {
	// ------------------------------------------------------------------ //
	// 1. Configuration
	// ------------------------------------------------------------------ //
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Verbose, cmd.ErrOrStderr())

	ctx := cmd.Context()

	// ------------------------------------------------------------------ //
	// 2. Generate
	// ------------------------------------------------------------------ //
	var collector *metrics.Collector
	if cfg.Metrics.Textfile != "" {
		collector = metrics.New()
	}

	start := time.Now()
	result, err := generateBatch(cfg, collector, logger)
	if err != nil {
		return err
	}
	logger.Info("batch generated",
		"variants", len(result.Variants)+1,
		"skipped", len(result.Failures),
		"seed", result.Seed,
	)

	// ------------------------------------------------------------------ //
	// 3. Metrics
	// ------------------------------------------------------------------ //
	if collector != nil {
		collector.ObserveRun(time.Since(start), len(result.Variants)+1, time.Now())
		if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return err
		}
	}

	// ------------------------------------------------------------------ //
	// 4. History (optional)
	// ------------------------------------------------------------------ //
	if cfg.History.Path != "" {
		id, err := saveBatch(ctx, cfg, result)
		if err != nil {
			return err
		}
		logger.Info("batch saved", "id", id, "history", cfg.History.Path)
	}

	// ------------------------------------------------------------------ //
	// 5. Report
	// ------------------------------------------------------------------ //
	return writeReport(ctx, cmd, cfg, result)
}

// generateBatch runs the catalog selected by cfg over the canonical payload.
func generateBatch(cfg config.Config, collector *metrics.Collector, logger *slog.Logger) (*variant.Result, error) {
	base := payload.Canonical()
	if err := payload.Validate(base.String()); err != nil {
		return nil, err
	}
	catalog, err := tamper.Default().Select(cfg.Only...)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Debug("seeding randomized tampers",
		"seed", seed,
		"dbms", base.DBMS,
		"technique", base.Technique,
	)

	workers := 1
	if cfg.Parallel {
		workers = cfg.Workers
	}
	opts := []variant.Option{
		variant.WithWorkers(workers),
		variant.WithLogger(logger),
	}
	if collector != nil {
		opts = append(opts, variant.WithObserver(collector))
	}

	result, err := variant.New(catalog, opts...).Generate(base.String(), rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Seed = seed
	return result, nil
}

// saveBatch persists result and returns the assigned batch ID.
func saveBatch(ctx context.Context, cfg config.Config, result *variant.Result) (string, error) {
	store, err := openHistory(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to open history %q: %w", cfg.History.Path, err)
	}
	defer store.Close()

	batch := history.FromResult(result)
	if err := store.Save(ctx, batch); err != nil {
		return "", err
	}
	return batch.ID, nil
}

func writeReport(ctx context.Context, cmd *cobra.Command, cfg config.Config, result *variant.Result) error {
	reporter, err := report.New(cfg.Format)
	if err != nil {
		return fmt.Errorf("unknown report format %q: %w", cfg.Format, err)
	}
	if tr, ok := reporter.(*report.TextReporter); ok {
		tr.Verbose = cfg.Verbose
		tr.NoColor = cfg.Output != ""
	}

	out, closeOut, err := openOutput(cmd, cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", cfg.Output, err)
	}
	defer closeOut()

	if err := reporter.Generate(ctx, result, out); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	return nil
}
