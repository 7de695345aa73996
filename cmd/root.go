package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/genelens/genelens-cli/internal/config"
)

var (
	// Global flags (wired to config/viper in loadConfig)
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	// Shared structured logger, set up alongside the config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "genelens",
	Short: "GeneLens CLI: turn DEG tables and SNP lists into analysis reports",
	Long:  `GeneLens runs differential-expression statistics, an ML analysis battery, chart rendering, and trait interpretation over genomic input files, producing report directories with charts, narrative text, and a JSON manifest.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.genelens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = nil
	}
	cfg = c

	zc := zap.NewProductionConfig()
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err = zc.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to build logger: %v\n", err)
		logger = zap.NewNop()
	}
}

// effectiveConfig returns the loaded config or defaults when loading failed.
func effectiveConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	c, err := cfgpkg.Load("")
	if err != nil {
		return &cfgpkg.Global{}
	}
	return c
}
