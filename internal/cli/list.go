package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/0x6d61/tampergen/internal/tamper"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tamper catalog in application order",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		catalog := tamper.Default()
		if category != "" {
			catalog = tamper.ByCategory(tamper.Category(category))
			if len(catalog) == 0 {
				return fmt.Errorf("unknown category %q", category)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), catalogTable(catalog))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("category", "", "Only list one category (identity, encoding, case, whitespace, comment-injection, keyword-rewrite)")
}

func catalogTable(catalog tamper.Catalog) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "NAME", "CATEGORY", "MODE")
	for _, entry := range catalog {
		pos := tamper.Position(entry)
		mode := "deterministic"
		if entry.Randomized() {
			mode = "randomized"
		}
		t.Row(strconv.Itoa(pos), entry.Name(), string(entry.Category()), mode)
	}
	return t.Render()
}
