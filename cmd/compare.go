package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/qolstats-cli/internal/analysis"
)

var compareCmd = &cobra.Command{
	Use:   "compare <State Name>...",
	Short: "Compare quality-of-life sub-scores across states",
	Long: `Compare the quality-of-life sub-scores of the named states. Each score is shown
raw and min-max normalized over every state in the table. Quote names that
contain spaces, e.g. qolstats compare "New York" Texas.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		cmp, err := svc.CompareQualityOfLife(args)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), analysis.ComparisonMarkdown(cmp), cmp)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
