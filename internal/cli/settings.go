package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/0x6d61/tampergen/internal/config"
	"github.com/0x6d61/tampergen/internal/history"
)

// loadConfig resolves settings with precedence
// defaults < config file < environment < explicitly set flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetInt("verbose")
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("history") {
		cfg.History.Path, _ = flags.GetString("history")
	}

	// Flags declared only on generate/verify.
	if f := flags.Lookup("parallel"); f != nil && f.Changed {
		cfg.Parallel, _ = flags.GetBool("parallel")
	}
	if f := flags.Lookup("workers"); f != nil && f.Changed {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if f := flags.Lookup("only"); f != nil && f.Changed {
		cfg.Only, _ = flags.GetStringSlice("only")
	}
	if f := flags.Lookup("metrics-textfile"); f != nil && f.Changed {
		cfg.Metrics.Textfile, _ = flags.GetString("metrics-textfile")
	}

	config.ApplyDefaults(&cfg)
	return cfg, cfg.Validate()
}

// newLogger maps the verbosity level onto an slog level.
func newLogger(verbose int, w io.Writer) *slog.Logger {
	logLevel := slog.LevelError
	switch {
	case verbose >= 3:
		logLevel = slog.LevelDebug
	case verbose >= 2:
		logLevel = slog.LevelInfo
	case verbose >= 1:
		logLevel = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// openOutput returns the configured output file, or the command's stdout
// when no path is set. The returned close func is non-nil when err is nil.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// openHistory opens the history store named in cfg.
func openHistory(cfg config.Config) (*history.SQLiteStore, error) {
	if cfg.History.Path == "" {
		return nil, errHistoryPathRequired
	}
	return history.NewSQLiteStore(cfg.History.Path)
}
