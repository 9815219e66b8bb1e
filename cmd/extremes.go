package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/qolstats-cli/internal/analysis"
)

type extremesResult struct {
	Highest *analysis.StateRate `json:"highest" yaml:"highest"`
	Lowest  *analysis.StateRate `json:"lowest" yaml:"lowest"`
}

var extremesCmd = &cobra.Command{
	Use:   "extremes",
	Short: "States with the highest and lowest weighted unemployment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		var res extremesResult
		hi, ok, err := svc.StateWithHighestUnemployment()
		if err != nil {
			return err
		}
		if ok {
			res.Highest = &hi
		}
		lo, ok, err := svc.StateWithLowestUnemployment()
		if err != nil {
			return err
		}
		if ok {
			res.Lowest = &lo
		}
		return render(cmd.OutOrStdout(), analysis.ExtremesMarkdown(res.Highest, res.Lowest), res)
	},
}

func init() {
	rootCmd.AddCommand(extremesCmd)
}
