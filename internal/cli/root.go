package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Version information (set by build flags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tampergen",
	Short: "Obfuscated variant generator for a time-delay SQL injection payload",
	Long: `tampergen - Obfuscated variant generator for a time-delay SQL injection payload

Applies a catalog of sqlmap-style tampers (encodings, case randomization,
whitespace substitution, comment injection, keyword rewriting) to the
MSSQL payload '; WAITFOR DELAY '00:00:05'-- and prints every variant.

WARNING: Use the generated payloads only against systems you have explicit
permission to test.`,
	SilenceUsage: true,
}

// Execute runs the root command. Cobra reports the returned error on stderr.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(versionCmd)

	// Configuration
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML config file (missing file is ignored)")
	rootCmd.PersistentFlags().Int64("seed", 0, "Seed for randomized tampers (0 = seed from clock)")

	// Output flags
	rootCmd.PersistentFlags().IntP("verbose", "v", 0, "Verbosity level (0-3)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "Output format (text, json, yaml)")

	// Persistence
	rootCmd.PersistentFlags().String("history", "", "History database path (SQLite); empty disables history")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tampergen %s (commit: %s, built: %s)\n", version, commit, date)
	},
}
