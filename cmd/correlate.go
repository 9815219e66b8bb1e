package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/qolstats-cli/internal/analysis"
)

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Pearson correlation of weighted unemployment and happiness",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		c, err := svc.UnemploymentHappinessCorrelation()
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), "[CORRELATION]\n"+analysis.CorrelationLine(c), c)
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)
}
