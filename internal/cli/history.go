package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var errHistoryPathRequired = errors.New("history database path is required (use --history or TAMPERGEN_HISTORY__PATH)")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect batches saved by generate --history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved batches, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		summaries, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved batches.")
			return nil
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "CREATED", "SEED", "VARIANTS")
		for _, s := range summaries {
			t.Row(s.ID, s.CreatedAt.Format(time.RFC3339), strconv.FormatInt(s.Seed, 10), strconv.Itoa(s.Variants))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved batch in the selected report format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		batch, err := store.LoadByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("batch %q not found", args[0])
		}
		return writeReport(cmd.Context(), cmd, cfg, batch.Result())
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted batch %s\n", args[0])
		return nil
	},
}

var historyFindCmd = &cobra.Command{
	Use:   "find <variant>",
	Short: "Find saved batches containing an exact variant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		found, err := store.Find(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(found) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching variant.")
			return nil
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("BATCH", "LABEL", "NAME", "CREATED")
		for _, o := range found {
			t.Row(o.BatchID, o.Label, o.Name, o.CreatedAt.Format(time.RFC3339))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete batches older than a given age",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")
		if olderThan <= 0 {
			return fmt.Errorf("--older-than must be positive, got %s", olderThan)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Cleanup(cmd.Context(), olderThan)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d batch(es)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyFindCmd, historyPruneCmd)
	historyPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "Age threshold")
}
