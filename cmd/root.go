package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/qolstats-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/qolstats-cli/internal/config"
	"github.com/KaramelBytes/qolstats-cli/internal/observability"
	"github.com/KaramelBytes/qolstats-cli/internal/utils"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Data/output flags (override config if set)
	flagStateData   string
	flagCountyData  string
	flagFormat      string
	flagMetricsFile string

	// Loaded configuration
	cfg     *cfgpkg.Global
	logger  *slog.Logger
	metrics *observability.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "qolstats",
	Short: "qolstats: population-weighted quality-of-life statistics for U.S. states",
	Long: `qolstats loads a state-level quality-of-life table and a county-level table,
cleans the county data, and answers per-state questions: population-weighted
unemployment, category averages, happiness scores and cross-state comparisons.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil || cfg.MetricsFile == "" || metrics == nil {
			return nil
		}
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		return nil
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.qolstats/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagStateData, "state-data", "", "state-level CSV (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagCountyData, "county-data", "", "county-level CSV (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "output format: markdown, json or yaml (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus counters to this file after the command (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("state-data") && flagStateData != "" {
		cfg.StateDataPath = flagStateData
	}
	if f.Changed("county-data") && flagCountyData != "" {
		cfg.CountyDataPath = flagCountyData
	}
	if f.Changed("format") && flagFormat != "" {
		cfg.OutputFormat = flagFormat
	}
	if f.Changed("metrics-file") {
		cfg.MetricsFile = flagMetricsFile
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	logger = observability.NewLogger(cfg.LogLevel, cfg.LogFormat, rootCmd.ErrOrStderr())
	metrics = observability.NewMetrics()
}

// openService loads both tables using the effective configuration.
func openService() (*analysis.Service, error) {
	if cfg == nil {
		cfg = cfgpkg.Defaults()
	}
	opt := analysis.LoadOptions{
		StateColumn:        cfg.StateColumn,
		PopulationColumn:   cfg.PopulationColumn,
		UnemploymentColumn: cfg.UnemploymentColumn,
		StateNameColumn:    cfg.StateNameColumn,
		HappinessColumn:    cfg.HappinessColumn,
		Logger:             logger,
		Metrics:            metrics,
	}
	ds, err := analysis.Load(cfg.StateDataPath, cfg.CountyDataPath, opt)
	if err != nil {
		return nil, err
	}
	return analysis.NewService(analysis.NewEngine(ds)), nil
}

// encode renders v in the configured format; markdown uses md as-is.
func encode(md string, v any) ([]byte, error) {
	format := "markdown"
	if cfg != nil {
		format = cfg.OutputFormat
	}
	switch format {
	case "markdown":
		return []byte(md), nil
	case "json":
		b, err := utils.PrettyJSON(v)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("invalid output format %q (use markdown, json or yaml)", format)
	}
}

// render writes v to w in the configured format.
func render(w io.Writer, md string, v any) error {
	b, err := encode(md, v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
