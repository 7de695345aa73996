package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genelens/genelens-cli/internal/battery"
	"github.com/genelens/genelens-cli/internal/deg"
	"github.com/genelens/genelens-cli/internal/genetics"
	"github.com/genelens/genelens-cli/internal/percentile"
	"github.com/genelens/genelens-cli/internal/pipeline"
	"github.com/genelens/genelens-cli/internal/render"
)

var (
	resEnrichment string
	resOutputDir  string
	resSequential bool

	perOutputDir string
	perLifestyle []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run an analysis flow over input files",
}

var researchCmd = &cobra.Command{
	Use:   "research <deg-file>",
	Short: "Analyze a DEG table: statistics, analysis battery, charts, narrative",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		degPath := args[0]
		degData, err := os.ReadFile(degPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", degPath, err)
		}

		var enrichData []byte
		var enrichName string
		if resEnrichment != "" {
			enrichData, err = os.ReadFile(resEnrichment)
			if err != nil {
				return fmt.Errorf("read %s: %w", resEnrichment, err)
			}
			enrichName = filepath.Base(resEnrichment)
		}

		opt := researchOptions()
		if resSequential {
			opt.Battery.Parallel = false
		}

		report, err := pipeline.Research(cmd.Context(), degData, filepath.Base(degPath), enrichData, enrichName, opt)
		if err != nil {
			return err
		}

		dir := resOutputDir
		if dir == "" {
			dir = filepath.Join(effectiveConfig().ReportsDir, report.ID)
		}
		if err := pipeline.WriteResearchArtifacts(report, dir); err != nil {
			return err
		}

		fmt.Printf("✓ Report %s written to %s\n", report.ID, dir)
		fmt.Printf("  Genes: %d total, %d significant (%d up, %d down)\n",
			report.Summary.Total, report.Summary.Significant, report.Summary.Up, report.Summary.Down)
		fmt.Printf("  Charts: %d, analyses: %d\n", len(report.Charts), len(report.Results))
		for _, w := range report.Warnings {
			fmt.Printf("  ⚠ %s\n", w)
		}
		return nil
	},
}

var personalCmd = &cobra.Command{
	Use:   "personal <snp-file>",
	Short: "Interpret a SNP list into insight cards, peer comparisons, and a bio card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snps, err := readSnpFile(args[0])
		if err != nil {
			return err
		}
		if len(snps) == 0 {
			return fmt.Errorf("no variants found in %s", args[0])
		}
		lifestyle, err := parseLifestyle(perLifestyle)
		if err != nil {
			return err
		}

		c := effectiveConfig()
		rules, err := genetics.LoadRules(c.TraitRules)
		if err != nil {
			return fmt.Errorf("load trait rules: %w", err)
		}
		dist, err := percentile.LoadTable(c.DistributionTable)
		if err != nil {
			return fmt.Errorf("load distribution table: %w", err)
		}

		report := pipeline.Personal(snps, lifestyle, rules, dist, logger)

		dir := perOutputDir
		if dir == "" {
			dir = filepath.Join(c.ReportsDir, report.ID)
		}
		if err := pipeline.WritePersonalArtifacts(report, dir); err != nil {
			return err
		}

		fmt.Printf("✓ Report %s written to %s\n", report.ID, dir)
		fmt.Printf("  %s\n", report.BioCard.Title)
		for _, card := range report.Cards {
			if card.Percentile != nil {
				fmt.Printf("  - %s (%s): score %.2f, percentile %.0f%%\n",
					card.RsID, card.Domain, card.Score, *card.Percentile*100)
			} else {
				fmt.Printf("  - %s (%s): score %.2f\n", card.RsID, card.Domain, card.Score)
			}
		}
		return nil
	},
}

func init() {
	researchCmd.Flags().StringVar(&resEnrichment, "enrichment", "", "optional enrichment table (CSV/TSV/XLSX)")
	researchCmd.Flags().StringVarP(&resOutputDir, "output", "o", "", "report directory (default <reports_dir>/<report-id>)")
	researchCmd.Flags().BoolVar(&resSequential, "sequential", false, "run battery analyses one at a time")

	personalCmd.Flags().StringVarP(&perOutputDir, "output", "o", "", "report directory (default <reports_dir>/<report-id>)")
	personalCmd.Flags().StringArrayVar(&perLifestyle, "lifestyle", nil, "lifestyle fact as key=value (repeatable)")

	analyzeCmd.AddCommand(researchCmd)
	analyzeCmd.AddCommand(personalCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// researchOptions maps the effective config onto pipeline options.
func researchOptions() pipeline.ResearchOptions {
	c := effectiveConfig()
	opt := pipeline.ResearchOptions{
		Thresholds: deg.Thresholds{
			PValue:    c.PValueThreshold,
			AdjustedP: c.AdjustedPThreshold,
			Log2FC:    c.Log2FCThreshold,
			TopN:      c.TopN,
		},
		Battery: battery.Params{
			Classes:    c.Classes,
			Neighbors:  c.Neighbors,
			Clusters:   c.Clusters,
			LassoAlpha: c.LassoAlpha,
			RidgeAlpha: c.RidgeAlpha,
			Seed:       c.Seed,
			Parallel:   c.ParallelBattery,
		},
		Render:      render.Options{Width: c.ChartWidth, Height: c.ChartHeight},
		HeatmapTopN: c.HeatmapTopN,
		Logger:      logger,
	}
	return opt
}

// readSnpFile accepts either a JSON array of {rsid, genotype} objects or a
// CSV with rsid and genotype columns.
func readSnpFile(path string) ([]genetics.SnpRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return parseSnpJSON(data)
	}
	return parseSnpCSV(data)
}

func parseSnpJSON(data []byte) ([]genetics.SnpRecord, error) {
	var raw []struct {
		RsID     string `json:"rsid"`
		Genotype string `json:"genotype"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse SNP json: %w", err)
	}
	snps := make([]genetics.SnpRecord, 0, len(raw))
	for _, r := range raw {
		if r.RsID == "" {
			continue
		}
		snps = append(snps, genetics.SnpRecord{RsID: r.RsID, Genotype: r.Genotype})
	}
	return snps, nil
}

func parseSnpCSV(data []byte) ([]genetics.SnpRecord, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse SNP csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("SNP csv needs a header row and at least one variant")
	}
	rsCol, gtCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "rsid", "rs_id", "snp", "variant":
			rsCol = i
		case "genotype", "alleles":
			gtCol = i
		}
	}
	if rsCol < 0 || gtCol < 0 {
		return nil, fmt.Errorf("SNP csv needs rsid and genotype columns, got %v", rows[0])
	}
	var snps []genetics.SnpRecord
	for _, row := range rows[1:] {
		if rsCol >= len(row) || gtCol >= len(row) {
			continue
		}
		rsid := strings.TrimSpace(row[rsCol])
		if rsid == "" {
			continue
		}
		snps = append(snps, genetics.SnpRecord{RsID: rsid, Genotype: strings.TrimSpace(row[gtCol])})
	}
	return snps, nil
}

func parseLifestyle(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --lifestyle value %q (want key=value)", p)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}
