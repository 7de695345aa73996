package render

import (
	"fmt"
	"math"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/genelens/genelens-cli/internal/battery"
	"github.com/genelens/genelens-cli/internal/tabular"
)

// EnrichmentBar charts -log10 p for the top enriched terms.
func EnrichmentBar(et *tabular.EnrichmentTable, topN int, opt Options) Chart {
	opt = opt.withDefaults()
	return guard("enrichment_bar", "enrichment", "top enriched terms by -log10 p-value", opt, func() ([]byte, error) {
		if et == nil || len(et.Rows) == 0 {
			return nil, fmt.Errorf("no enrichment terms")
		}
		if topN <= 0 {
			topN = 10
		}
		rows := et.Top(topN)
		bars := make([]chart.Value, 0, len(rows))
		for _, r := range rows {
			bars = append(bars, chart.Value{
				Value: negLog10(r.PValue),
				Label: truncateLabel(r.Term, 18),
				Style: chart.Style{FillColor: colorAccent, StrokeColor: colorAccent},
			})
		}
		c := chart.BarChart{
			Title:    "Pathway Enrichment",
			Width:    opt.Width,
			Height:   opt.Height,
			BarWidth: barWidth(opt.Width, len(bars)),
			YAxis:    chart.YAxis{Name: "-log10 p-value"},
			Bars:     bars,
		}
		return renderBarPNG(c)
	})
}

// ClusterSizeBar charts how many samples landed in each cluster.
func ClusterSizeBar(algorithm string, res *battery.ClusteringResult, opt Options) Chart {
	opt = opt.withDefaults()
	name := algorithm + "_sizes"
	return guard(name, "battery", algorithm+" cluster sizes", opt, func() ([]byte, error) {
		if res == nil || len(res.Labels) == 0 {
			return nil, fmt.Errorf("no cluster labels")
		}
		counts := map[int]int{}
		maxG := 0
		for _, lbl := range res.Labels {
			counts[lbl]++
			if lbl > maxG {
				maxG = lbl
			}
		}
		var bars []chart.Value
		for g := 0; g <= maxG; g++ {
			if counts[g] == 0 {
				continue
			}
			col := clusterColor(g)
			bars = append(bars, chart.Value{
				Value: float64(counts[g]),
				Label: fmt.Sprintf("cluster %d", g),
				Style: chart.Style{FillColor: col, StrokeColor: col},
			})
		}
		c := chart.BarChart{
			Title:    fmt.Sprintf("%s cluster sizes", algorithm),
			Width:    opt.Width,
			Height:   opt.Height,
			BarWidth: barWidth(opt.Width, len(bars)),
			YAxis:    chart.YAxis{Name: "samples"},
			Bars:     bars,
		}
		return renderBarPNG(c)
	})
}

// LassoCoefficients draws the sorted absolute-coefficient profile, which
// makes the sparsity of the selection visible.
func LassoCoefficients(res *battery.FeatureSelectionResult, opt Options) Chart {
	opt = opt.withDefaults()
	return guard("lasso_coefficients", "battery", "sorted absolute lasso coefficients", opt, func() ([]byte, error) {
		if res == nil || len(res.Coefficients) < 2 {
			return nil, fmt.Errorf("no coefficients to plot")
		}
		mags := make([]float64, len(res.Coefficients))
		for i, c := range res.Coefficients {
			mags[i] = math.Abs(c)
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(mags)))
		xs := make([]float64, len(mags))
		for i := range xs {
			xs[i] = float64(i + 1)
		}
		c := chart.Chart{
			Title:  fmt.Sprintf("Lasso coefficients (alpha %.2g, %d retained)", res.Alpha, res.Retained),
			Width:  opt.Width,
			Height: opt.Height,
			XAxis:  chart.XAxis{Name: "feature rank"},
			YAxis:  chart.YAxis{Name: "|coefficient|", Range: paddedRange(0, mags[0])},
			Series: []chart.Series{
				chart.ContinuousSeries{Name: "|coef|", XValues: xs, YValues: mags, Style: lineStyle(colorDown)},
			},
		}
		return renderPNG(c)
	})
}

// RidgeTopFeatures charts the strongest ridge coefficients by magnitude.
func RidgeTopFeatures(res *battery.FeatureSelectionResult, opt Options) Chart {
	opt = opt.withDefaults()
	return guard("ridge_top_features", "battery", "top ridge features by absolute coefficient", opt, func() ([]byte, error) {
		if res == nil || len(res.TopFeatures) == 0 {
			return nil, fmt.Errorf("no ranked features")
		}
		top := res.TopFeatures
		if len(top) > 10 {
			top = top[:10]
		}
		bars := make([]chart.Value, 0, len(top))
		for _, fw := range top {
			bars = append(bars, chart.Value{
				Value: math.Abs(fw.Weight),
				Label: truncateLabel(fw.Name, 14),
				Style: chart.Style{FillColor: colorUp, StrokeColor: colorUp},
			})
		}
		c := chart.BarChart{
			Title:    fmt.Sprintf("Ridge coefficients (alpha %.2g)", res.Alpha),
			Width:    opt.Width,
			Height:   opt.Height,
			BarWidth: barWidth(opt.Width, len(bars)),
			YAxis:    chart.YAxis{Name: "|coefficient|"},
			Bars:     bars,
		}
		return renderBarPNG(c)
	})
}

// FeatureImportanceBar charts classifier feature importances.
func FeatureImportanceBar(algorithm string, weights []battery.FeatureWeight, opt Options) Chart {
	opt = opt.withDefaults()
	name := algorithm + "_importance"
	return guard(name, "battery", algorithm+" feature importance", opt, func() ([]byte, error) {
		if len(weights) == 0 {
			return nil, fmt.Errorf("no importances")
		}
		top := weights
		if len(top) > 10 {
			top = top[:10]
		}
		bars := make([]chart.Value, 0, len(top))
		for _, fw := range top {
			bars = append(bars, chart.Value{
				Value: math.Abs(fw.Weight),
				Label: truncateLabel(fw.Name, 14),
				Style: chart.Style{FillColor: colorAccent, StrokeColor: colorAccent},
			})
		}
		c := chart.BarChart{
			Title:    fmt.Sprintf("%s feature importance", algorithm),
			Width:    opt.Width,
			Height:   opt.Height,
			BarWidth: barWidth(opt.Width, len(bars)),
			YAxis:    chart.YAxis{Name: "|weight|"},
			Bars:     bars,
		}
		return renderBarPNG(c)
	})
}

// Scree charts explained variance per principal component.
func Scree(dr *battery.DimensionReductionResult, opt Options) Chart {
	opt = opt.withDefaults()
	return guard("pca_scree", "battery", "explained variance per principal component", opt, func() ([]byte, error) {
		if dr == nil || len(dr.ExplainedVariance) < 2 {
			return nil, fmt.Errorf("need at least 2 components, have %d", len(dr.ExplainedVariance))
		}
		xs := make([]float64, len(dr.ExplainedVariance))
		ys := make([]float64, len(dr.ExplainedVariance))
		for i, v := range dr.ExplainedVariance {
			xs[i] = float64(i + 1)
			ys[i] = v * 100
		}
		st := lineStyle(colorAccent)
		st.DotWidth = 4
		st.DotColor = colorAccent
		c := chart.Chart{
			Title:  "Scree Plot",
			Width:  opt.Width,
			Height: opt.Height,
			XAxis:  chart.XAxis{Name: "component"},
			YAxis:  chart.YAxis{Name: "explained variance (%)", Range: paddedRange(0, ys[0])},
			Series: []chart.Series{
				chart.ContinuousSeries{Name: "explained", XValues: xs, YValues: ys, Style: st},
			},
		}
		return renderPNG(c)
	})
}

// Dendrogram charts merge heights in agglomeration order, the profile a
// dendrogram's horizontal cuts trace from the leaves up to the root.
func Dendrogram(res *battery.ClusteringResult, opt Options) Chart {
	opt = opt.withDefaults()
	return guard("hierarchical_dendrogram", "battery", "merge height per agglomeration step", opt, func() ([]byte, error) {
		if res == nil {
			return nil, fmt.Errorf("no clustering result")
		}
		if len(res.MergeHeights) < 2 {
			return nil, fmt.Errorf("need at least 2 merges, have %d", len(res.MergeHeights))
		}
		xs := make([]float64, len(res.MergeHeights))
		ys := make([]float64, len(res.MergeHeights))
		maxY := 0.0
		for i, h := range res.MergeHeights {
			xs[i] = float64(i + 1)
			ys[i] = h
			maxY = math.Max(maxY, h)
		}
		st := lineStyle(colorAccent)
		st.DotWidth = 4
		st.DotColor = colorAccent
		c := chart.Chart{
			Title:  "Hierarchical Merge Heights",
			Width:  opt.Width,
			Height: opt.Height,
			XAxis:  chart.XAxis{Name: "merge step"},
			YAxis:  chart.YAxis{Name: "linkage distance", Range: paddedRange(0, maxY)},
			Series: []chart.Series{
				chart.ContinuousSeries{Name: "merges", XValues: xs, YValues: ys, Style: st},
			},
		}
		return renderPNG(c)
	})
}

func truncateLabel(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

func barWidth(chartWidth, bars int) int {
	if bars == 0 {
		return 20
	}
	w := chartWidth / (2 * bars)
	if w < 12 {
		w = 12
	}
	if w > 80 {
		w = 80
	}
	return w
}
