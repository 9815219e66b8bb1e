package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/qolstats-cli/internal/analysis"
	"github.com/KaramelBytes/qolstats-cli/internal/states"
)

var happinessCmd = &cobra.Command{
	Use:   "happiness [STATE...]",
	Short: "Happiness scores from the state table",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			scores, err := svc.AllHappinessScores()
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), analysis.ScoresMarkdown("HAPPINESS", scores), scores)
		}

		var scores []analysis.StateScore
		for _, a := range args {
			st, err := states.Resolve(a)
			if err != nil {
				return err
			}
			v, err := svc.HappinessScore(st.Code)
			if err != nil {
				return err
			}
			f, ok := v.Get()
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: no happiness score for %s\n", st.Name)
				continue
			}
			scores = append(scores, analysis.StateScore{State: st.Name, Score: f})
		}
		return render(cmd.OutOrStdout(), analysis.ScoresMarkdown("HAPPINESS", scores), scores)
	},
}

func init() {
	rootCmd.AddCommand(happinessCmd)
}
