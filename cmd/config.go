package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/qolstats-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set qolstats configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "state_data_path: %s\n", cfg.StateDataPath)
		fmt.Fprintf(out, "county_data_path: %s\n", cfg.CountyDataPath)
		fmt.Fprintf(out, "state_column: %s\n", cfg.StateColumn)
		fmt.Fprintf(out, "population_column: %s\n", cfg.PopulationColumn)
		fmt.Fprintf(out, "unemployment_column: %s\n", cfg.UnemploymentColumn)
		fmt.Fprintf(out, "state_name_column: %s\n", cfg.StateNameColumn)
		fmt.Fprintf(out, "happiness_column: %s\n", cfg.HappinessColumn)
		fmt.Fprintf(out, "output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		if cfg.MetricsFile != "" {
			fmt.Fprintf(out, "metrics_file: %s\n", cfg.MetricsFile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Reload so flag overrides of this invocation are not persisted.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		switch key {
		case "state_data_path":
			c.StateDataPath = val
		case "county_data_path":
			c.CountyDataPath = val
		case "state_column":
			c.StateColumn = val
		case "population_column":
			c.PopulationColumn = val
		case "unemployment_column":
			c.UnemploymentColumn = val
		case "state_name_column":
			c.StateNameColumn = val
		case "happiness_column":
			c.HappinessColumn = val
		case "output_format":
			v := strings.ToLower(val)
			if !cfgpkg.ValidOutputFormat(v) {
				return fmt.Errorf("invalid output_format: %s (use markdown, json or yaml)", val)
			}
			c.OutputFormat = v
		case "log_level":
			switch v := strings.ToLower(val); v {
			case "debug", "info", "warn", "error":
				c.LogLevel = v
			default:
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
		case "log_format":
			switch v := strings.ToLower(val); v {
			case "text", "json":
				c.LogFormat = v
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		case "metrics_file":
			c.MetricsFile = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
