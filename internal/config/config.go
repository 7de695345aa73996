package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// DEG thresholds
	PValueThreshold    float64 `mapstructure:"p_value_threshold" yaml:"p_value_threshold"`
	AdjustedPThreshold float64 `mapstructure:"adjusted_p_threshold" yaml:"adjusted_p_threshold"`
	Log2FCThreshold    float64 `mapstructure:"log2fc_threshold" yaml:"log2fc_threshold"`
	TopN               int     `mapstructure:"top_n" yaml:"top_n"`

	// Battery parameters
	Classes         int     `mapstructure:"classes" yaml:"classes"`
	Neighbors       int     `mapstructure:"neighbors" yaml:"neighbors"`
	Clusters        int     `mapstructure:"clusters" yaml:"clusters"`
	LassoAlpha      float64 `mapstructure:"lasso_alpha" yaml:"lasso_alpha"`
	RidgeAlpha      float64 `mapstructure:"ridge_alpha" yaml:"ridge_alpha"`
	Seed            int64   `mapstructure:"seed" yaml:"seed"`
	ParallelBattery bool    `mapstructure:"parallel_battery" yaml:"parallel_battery"`

	// Chart geometry
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`
	HeatmapTopN int `mapstructure:"heatmap_top_n" yaml:"heatmap_top_n"`

	// Personal genomics configuration files
	DistributionTable string `mapstructure:"distribution_table" yaml:"distribution_table"`
	TraitRules        string `mapstructure:"trait_rules" yaml:"trait_rules"`

	// Output
	ReportsDir string `mapstructure:"reports_dir" yaml:"reports_dir"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.genelens/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".genelens")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("GENELENS")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("p_value_threshold", 0.05)
	v.SetDefault("adjusted_p_threshold", 0.05)
	v.SetDefault("log2fc_threshold", 1.0)
	v.SetDefault("top_n", 10)
	v.SetDefault("classes", 2)
	v.SetDefault("neighbors", 3)
	v.SetDefault("clusters", 3)
	v.SetDefault("lasso_alpha", 0.1)
	v.SetDefault("ridge_alpha", 1.0)
	v.SetDefault("seed", 42)
	v.SetDefault("parallel_battery", true)
	v.SetDefault("chart_width", 900)
	v.SetDefault("chart_height", 560)
	v.SetDefault("heatmap_top_n", 25)
	v.SetDefault("distribution_table", "")
	v.SetDefault("trait_rules", "")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".genelens")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve reports_dir default: ~/.genelens/reports
	if c.ReportsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.ReportsDir = filepath.Join(home, ".genelens", "reports")
	}
	return &c, nil
}
