package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/qolstats-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	// Input files
	StateDataPath  string `mapstructure:"state_data_path" yaml:"state_data_path"`
	CountyDataPath string `mapstructure:"county_data_path" yaml:"county_data_path"`

	// Column names
	StateColumn        string `mapstructure:"state_column" yaml:"state_column"`
	PopulationColumn   string `mapstructure:"population_column" yaml:"population_column"`
	UnemploymentColumn string `mapstructure:"unemployment_column" yaml:"unemployment_column"`
	StateNameColumn    string `mapstructure:"state_name_column" yaml:"state_name_column"`
	HappinessColumn    string `mapstructure:"happiness_column" yaml:"happiness_column"`

	// Output and logging
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format"`
	MetricsFile  string `mapstructure:"metrics_file" yaml:"metrics_file"`
}

// OutputFormats lists the accepted output_format values.
var OutputFormats = []string{"markdown", "json", "yaml"}

// ValidOutputFormat reports whether f is one of OutputFormats.
func ValidOutputFormat(f string) bool {
	for _, o := range OutputFormats {
		if f == o {
			return true
		}
	}
	return false
}

func defaultPath(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".qolstats", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.qolstats/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := defaultPath(cfgFile)
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// defaults match the published survey files.
var defaults = map[string]any{
	"state_data_path":     filepath.Join("data", "qualityoflifescores.csv"),
	"county_data_path":    filepath.Join("data", "QOL_County_Level.csv"),
	"state_column":        "LSTATE",
	"population_column":   "2022 Population",
	"unemployment_column": "Unemployment",
	"state_name_column":   "state",
	"happiness_column":    "HappiestStatesTotalHappinessScore",
	"output_format":       "markdown",
	"log_level":           "warn",
	"log_format":          "text",
	"metrics_file":        "",
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

// Defaults returns the built-in configuration, ignoring files and env.
func Defaults() *Global {
	var c Global
	_ = newViper().Unmarshal(&c)
	return &c
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := newViper()
	v.SetEnvPrefix("QOLSTATS")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".qolstats"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if !ValidOutputFormat(c.OutputFormat) {
		return nil, fmt.Errorf("invalid output_format %q (use markdown, json or yaml)", c.OutputFormat)
	}
	return &c, nil
}
