package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/qolstats-cli/internal/analysis"
)

var categoryCmd = &cobra.Command{
	Use:       "category <economy|health|safety>",
	Short:     "Weighted category averages for every state",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"economy", "health", "safety"},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := analysis.CategoryByName(args[0])
		if err != nil {
			return err
		}
		svc, err := openService()
		if err != nil {
			return err
		}
		rows, err := svc.ComputeCategoryAverages(c.Metrics)
		if err != nil {
			return err
		}
		tbl := analysis.CategoryTable{Name: c.Name, Metrics: c.Metrics, Rows: rows}
		return render(cmd.OutOrStdout(), analysis.CategoryMarkdown(c.Name, c.Metrics, rows), tbl)
	},
}

func init() {
	rootCmd.AddCommand(categoryCmd)
}
