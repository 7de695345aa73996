// Package pipeline wires the analysis stages into the two report flows. Only
// schema errors on the primary input abort a run; every other failure degrades
// into warnings, failed analysis entries, or placeholder charts.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/genelens/genelens-cli/internal/battery"
	"github.com/genelens/genelens-cli/internal/deg"
	"github.com/genelens/genelens-cli/internal/narrative"
	"github.com/genelens/genelens-cli/internal/render"
	"github.com/genelens/genelens-cli/internal/tabular"
)

// ResearchOptions parameterizes one research run.
type ResearchOptions struct {
	Thresholds  deg.Thresholds
	Battery     battery.Params
	Render      render.Options
	HeatmapTopN int
	Logger      *zap.Logger
}

// DefaultResearchOptions mirrors the configuration defaults.
func DefaultResearchOptions() ResearchOptions {
	return ResearchOptions{
		Thresholds:  deg.DefaultThresholds(),
		Battery:     battery.DefaultParams(),
		Render:      render.DefaultOptions(),
		HeatmapTopN: 25,
	}
}

// ResearchReport is the complete output of the research flow.
type ResearchReport struct {
	ID          string              `json:"id"`
	GeneratedAt time.Time           `json:"generated_at"`
	InputFile   string              `json:"input_file"`
	Summary     deg.Summary         `json:"summary"`
	Results     []battery.Result    `json:"results"`
	Charts      []render.Chart      `json:"charts"`
	Narrative   []narrative.Section `json:"narrative"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// Research runs the full research flow over an in-memory DEG buffer plus an
// optional enrichment buffer. A schema error on the DEG file is the only
// fatal outcome.
func Research(ctx context.Context, degData []byte, degName string, enrichData []byte, enrichName string, opt ResearchOptions) (*ResearchReport, error) {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tbl, err := tabular.Load(degData, degName)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", degName, err)
	}

	report := &ResearchReport{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		InputFile:   degName,
	}
	warn := func(msg string, fields ...zap.Field) {
		log.Warn(msg, fields...)
		report.Warnings = append(report.Warnings, msg)
	}

	// Enrichment is advisory: a bad file degrades, never aborts.
	var enrichment *tabular.EnrichmentTable
	if len(enrichData) > 0 {
		enrichment, err = tabular.LoadEnrichment(enrichData, enrichName)
		if err != nil {
			warn(fmt.Sprintf("enrichment file skipped: %v", err), zap.String("file", enrichName))
			enrichment = nil
		}
	}

	report.Summary = deg.Analyze(tbl, opt.Thresholds)
	log.Info("deg analysis complete",
		zap.Int("total", report.Summary.Total),
		zap.Int("significant", report.Summary.Significant),
		zap.Int("up", report.Summary.Up),
		zap.Int("down", report.Summary.Down))

	if len(tbl.SampleColumns) == 0 {
		warn("no expression columns found; analysis battery skipped")
	} else {
		results, err := battery.Run(ctx, tbl.ExpressionMatrix(), tbl.GeneIDs(), opt.Battery)
		if err != nil {
			warn(fmt.Sprintf("analysis battery aborted: %v", err))
		} else {
			report.Results = results
			for _, r := range results {
				if r.Failed {
					warn(fmt.Sprintf("analysis %s failed: %s", r.Algorithm, r.Reason),
						zap.String("algorithm", r.Algorithm))
				}
			}
		}
	}

	report.Charts = buildCharts(tbl, report.Results, enrichment, opt)
	for _, c := range report.Charts {
		if c.Placeholder {
			warn(fmt.Sprintf("chart %s degraded to placeholder: %s", c.Name, c.Reason),
				zap.String("chart", c.Name))
		}
	}

	report.Narrative = narrative.Compose(report.Summary, enrichment)
	return report, nil
}

// buildCharts assembles the ordered chart list: DEG-level figures first, then
// one or two figures per battery analysis in battery order.
func buildCharts(tbl *tabular.Table, results []battery.Result, enrichment *tabular.EnrichmentTable, opt ResearchOptions) []render.Chart {
	ro := opt.Render
	charts := []render.Chart{
		render.Volcano(tbl, opt.Thresholds, ro),
	}

	topN := opt.HeatmapTopN
	if topN <= 0 {
		topN = 25
	}
	if len(tbl.SampleColumns) > 0 {
		charts = append(charts, render.ExpressionHeatmap(tbl, deg.TopByAbsFC(tbl, topN), ro))
	}
	if enrichment != nil {
		charts = append(charts, render.EnrichmentBar(enrichment, opt.Thresholds.TopN, ro))
	}

	for _, r := range results {
		if r.Failed {
			continue
		}
		switch r.Algorithm {
		case "knn":
			charts = append(charts,
				render.ClassificationScatter(r.Algorithm, r.Classification, ro),
				render.ConfusionHeatmap(r.Algorithm, r.Classification, ro))
		case "logistic":
			charts = append(charts,
				render.ClassificationScatter(r.Algorithm, r.Classification, ro),
				render.ConfusionHeatmap(r.Algorithm, r.Classification, ro))
			if len(r.Classification.Importance) > 0 {
				charts = append(charts, render.FeatureImportanceBar(r.Algorithm, r.Classification.Importance, ro))
			}
		case "hierarchical":
			charts = append(charts,
				render.ClusterScatter(r.Algorithm, r.Clustering, ro),
				render.ClusterSizeBar(r.Algorithm, r.Clustering, ro),
				render.Dendrogram(r.Clustering, ro))
		case "kmeans":
			charts = append(charts,
				render.ClusterScatter(r.Algorithm, r.Clustering, ro),
				render.ClusterSizeBar(r.Algorithm, r.Clustering, ro))
		case "lasso":
			charts = append(charts, render.LassoCoefficients(r.FeatureSelection, ro))
		case "ridge":
			charts = append(charts, render.RidgeTopFeatures(r.FeatureSelection, ro))
		case "pca":
			charts = append(charts,
				render.PCAScatter(r.DimensionReduction, ro),
				render.Scree(r.DimensionReduction, ro))
		}
	}
	return charts
}
