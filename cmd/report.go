package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/qolstats-cli/internal/analysis"
	"github.com/KaramelBytes/qolstats-cli/internal/utils"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run every query and print a full report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		rep, err := analysis.BuildReport(svc, nil)
		if err != nil {
			return err
		}
		b, err := encode(rep.Markdown(), rep)
		if err != nil {
			return err
		}
		if reportOutput == "" {
			_, err = cmd.OutOrStdout().Write(b)
			return err
		}
		if err := utils.SafeWriteFile(reportOutput, b); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", reportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the report to a file instead of stdout")
}
