package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/qolstats-cli/internal/analysis"
	"github.com/KaramelBytes/qolstats-cli/internal/states"
)

var unempAll bool

// unemploymentResult keeps states without data in the output.
type unemploymentResult struct {
	Code  string         `json:"code" yaml:"code"`
	State string         `json:"state" yaml:"state"`
	Rate  analysis.Value `json:"rate" yaml:"rate"`
}

var unemploymentCmd = &cobra.Command{
	Use:   "unemployment [STATE...]",
	Short: "Population-weighted unemployment rate per state",
	Long: `Print the population-weighted unemployment rate of each given state (two-letter
code or full name). With no states, or with --all, print every state with data,
highest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if unempAll && len(args) > 0 {
			return fmt.Errorf("--all does not take state arguments")
		}
		svc, err := openService()
		if err != nil {
			return err
		}
		if unempAll || len(args) == 0 {
			rates, err := svc.RankedUnemployment()
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), analysis.RatesMarkdown(rates), rates)
		}

		out := make([]unemploymentResult, 0, len(args))
		for _, a := range args {
			st, err := states.Resolve(a)
			if err != nil {
				return err
			}
			v, err := svc.WeightedUnemployment(st.Code)
			if err != nil {
				return err
			}
			out = append(out, unemploymentResult{Code: st.Code, State: st.Name, Rate: v})
		}
		return render(cmd.OutOrStdout(), unemploymentMarkdown(out), out)
	},
}

func unemploymentMarkdown(rs []unemploymentResult) string {
	var b strings.Builder
	b.WriteString("[UNEMPLOYMENT]\n| State | Code | Rate |\n|---|---|---|\n")
	for _, r := range rs {
		rate := "n/a"
		if f, ok := r.Rate.Get(); ok {
			rate = analysis.FormatRate(f)
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", r.State, r.Code, rate))
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(unemploymentCmd)
	unemploymentCmd.Flags().BoolVar(&unempAll, "all", false, "list every state with data, highest rate first")
}
