package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/genelens/genelens-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set GeneLens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		fmt.Printf("p_value_threshold: %.3f\n", c.PValueThreshold)
		fmt.Printf("adjusted_p_threshold: %.3f\n", c.AdjustedPThreshold)
		fmt.Printf("log2fc_threshold: %.3f\n", c.Log2FCThreshold)
		fmt.Printf("top_n: %d\n", c.TopN)
		fmt.Printf("classes: %d\n", c.Classes)
		fmt.Printf("neighbors: %d\n", c.Neighbors)
		fmt.Printf("clusters: %d\n", c.Clusters)
		fmt.Printf("lasso_alpha: %.3f\n", c.LassoAlpha)
		fmt.Printf("ridge_alpha: %.3f\n", c.RidgeAlpha)
		fmt.Printf("seed: %d\n", c.Seed)
		fmt.Printf("parallel_battery: %t\n", c.ParallelBattery)
		fmt.Printf("chart_width: %d\n", c.ChartWidth)
		fmt.Printf("chart_height: %d\n", c.ChartHeight)
		fmt.Printf("heatmap_top_n: %d\n", c.HeatmapTopN)
		if c.DistributionTable != "" {
			fmt.Printf("distribution_table: %s\n", c.DistributionTable)
		}
		if c.TraitRules != "" {
			fmt.Printf("trait_rules: %s\n", c.TraitRules)
		}
		fmt.Printf("reports_dir: %s\n", c.ReportsDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "p_value_threshold", "adjusted_p_threshold", "log2fc_threshold",
			"lasso_alpha", "ridge_alpha":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for %s: %v", key, val)
			}
			switch key {
			case "p_value_threshold":
				cfg.PValueThreshold = f
			case "adjusted_p_threshold":
				cfg.AdjustedPThreshold = f
			case "log2fc_threshold":
				cfg.Log2FCThreshold = f
			case "lasso_alpha":
				cfg.LassoAlpha = f
			case "ridge_alpha":
				cfg.RidgeAlpha = f
			}
		case "top_n", "classes", "neighbors", "clusters",
			"chart_width", "chart_height", "heatmap_top_n":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "top_n":
				cfg.TopN = i
			case "classes":
				cfg.Classes = i
			case "neighbors":
				cfg.Neighbors = i
			case "clusters":
				cfg.Clusters = i
			case "chart_width":
				cfg.ChartWidth = i
			case "chart_height":
				cfg.ChartHeight = i
			case "heatmap_top_n":
				cfg.HeatmapTopN = i
			}
		case "seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for seed: %w", err)
			}
			cfg.Seed = i
		case "parallel_battery":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for parallel_battery: %w", err)
			}
			cfg.ParallelBattery = b
		case "distribution_table":
			cfg.DistributionTable = val
		case "trait_rules":
			cfg.TraitRules = val
		case "reports_dir":
			cfg.ReportsDir = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
