package render

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/genelens/genelens-cli/internal/battery"
	"github.com/genelens/genelens-cli/internal/deg"
	"github.com/genelens/genelens-cli/internal/tabular"
)

// negLog10 caps extreme p-values so a reported 0 does not blow the axis out.
func negLog10(p float64) float64 {
	if p <= 0 {
		p = 1e-300
	}
	v := -math.Log10(p)
	if v > 300 {
		v = 300
	}
	return v
}

// Volcano renders log2 fold change against -log10 significance, colored by
// DEG direction, with dashed gate lines.
func Volcano(tbl *tabular.Table, th deg.Thresholds, opt Options) Chart {
	opt = opt.withDefaults()
	return guard("volcano", "deg", "log2 fold change vs -log10 p-value", opt, func() ([]byte, error) {
		if tbl.Len() < 2 {
			return nil, fmt.Errorf("need at least 2 genes, have %d", tbl.Len())
		}
		cut := th.PValue
		if tbl.HasAdjustedP {
			cut = th.AdjustedP
		}

		var upX, upY, downX, downY, nsX, nsY []float64
		minX, maxX := math.Inf(1), math.Inf(-1)
		maxY := 0.0
		for _, rec := range tbl.Records {
			// Same gate as the DEG summary: with an adjusted column the
			// adjusted value decides, and a NaN cell is never significant.
			p := rec.PValue
			if tbl.HasAdjustedP {
				p = rec.AdjustedP
			}
			plotP := p
			if math.IsNaN(plotP) {
				plotP = rec.PValue
			}
			x, y := rec.Log2FC, negLog10(plotP)
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			maxY = math.Max(maxY, y)
			switch {
			case p < cut && rec.Log2FC > th.Log2FC:
				upX, upY = append(upX, x), append(upY, y)
			case p < cut && rec.Log2FC < -th.Log2FC:
				downX, downY = append(downX, x), append(downY, y)
			default:
				nsX, nsY = append(nsX, x), append(nsY, y)
			}
		}

		var series []chart.Series
		if len(upX) > 0 {
			series = append(series, chart.ContinuousSeries{Name: "Up", XValues: upX, YValues: upY, Style: pointStyle(colorUp)})
		}
		if len(downX) > 0 {
			series = append(series, chart.ContinuousSeries{Name: "Down", XValues: downX, YValues: downY, Style: pointStyle(colorDown)})
		}
		if len(nsX) > 0 {
			series = append(series, chart.ContinuousSeries{Name: "NS", XValues: nsX, YValues: nsY, Style: pointStyle(colorNeutral)})
		}

		xr := paddedRange(math.Min(minX, -th.Log2FC), math.Max(maxX, th.Log2FC))
		yr := paddedRange(0, math.Max(maxY, negLog10(cut)))
		gate := dashedLine(colorNeutral)
		series = append(series,
			chart.ContinuousSeries{XValues: []float64{-th.Log2FC, -th.Log2FC}, YValues: []float64{yr.Min, yr.Max}, Style: gate},
			chart.ContinuousSeries{XValues: []float64{th.Log2FC, th.Log2FC}, YValues: []float64{yr.Min, yr.Max}, Style: gate},
			chart.ContinuousSeries{XValues: []float64{xr.Min, xr.Max}, YValues: []float64{negLog10(cut), negLog10(cut)}, Style: gate},
		)

		c := chart.Chart{
			Title:  "Volcano Plot",
			Width:  opt.Width,
			Height: opt.Height,
			XAxis:  chart.XAxis{Name: "log2 fold change", Range: xr},
			YAxis:  chart.YAxis{Name: "-log10 p-value", Range: yr},
			Series: series,
		}
		return renderPNG(c)
	})
}

// PCAScatter renders samples in the first two principal axes with explained
// variance in the axis labels.
func PCAScatter(dr *battery.DimensionReductionResult, opt Options) Chart {
	opt = opt.withDefaults()
	return guard("pca_scatter", "battery", "samples projected onto the first two principal components", opt, func() ([]byte, error) {
		if dr == nil || len(dr.Projection) < 2 {
			return nil, fmt.Errorf("no projection to plot")
		}
		xs, ys := splitPoints(dr.Projection)
		xName, yName := "PC1", "PC2"
		if len(dr.ExplainedVariance) > 0 {
			xName = fmt.Sprintf("PC1 (%.1f%%)", dr.ExplainedVariance[0]*100)
		}
		if len(dr.ExplainedVariance) > 1 {
			yName = fmt.Sprintf("PC2 (%.1f%%)", dr.ExplainedVariance[1]*100)
		}
		c := chart.Chart{
			Title:  "PCA",
			Width:  opt.Width,
			Height: opt.Height,
			XAxis:  chart.XAxis{Name: xName, Range: paddedRange(minMax(xs))},
			YAxis:  chart.YAxis{Name: yName, Range: paddedRange(minMax(ys))},
			Series: []chart.Series{
				chart.ContinuousSeries{Name: "Samples", XValues: xs, YValues: ys, Style: pointStyle(colorAccent)},
			},
		}
		return renderPNG(c)
	})
}

// ClassificationScatter colors the 2-D sample projection by predicted class.
func ClassificationScatter(algorithm string, res *battery.ClassificationResult, opt Options) Chart {
	opt = opt.withDefaults()
	name := algorithm + "_scatter"
	return guard(name, "battery", algorithm+" predictions over the 2-D sample projection", opt, func() ([]byte, error) {
		if res == nil || len(res.Projection) < 2 || len(res.Predictions) != len(res.Projection) {
			return nil, fmt.Errorf("no projection to plot")
		}
		series := seriesByGroup(res.Projection, res.Predictions, "class")
		xs, ys := splitPoints(res.Projection)
		c := chart.Chart{
			Title:  fmt.Sprintf("%s (accuracy %.2f)", algorithm, res.Accuracy),
			Width:  opt.Width,
			Height: opt.Height,
			XAxis:  chart.XAxis{Name: "PC1", Range: paddedRange(minMax(xs))},
			YAxis:  chart.YAxis{Name: "PC2", Range: paddedRange(minMax(ys))},
			Series: series,
		}
		return renderPNG(c)
	})
}

// ClusterScatter colors the 2-D projection by cluster, with centroid markers
// when the algorithm produced them.
func ClusterScatter(algorithm string, res *battery.ClusteringResult, opt Options) Chart {
	opt = opt.withDefaults()
	name := algorithm + "_scatter"
	return guard(name, "battery", algorithm+" cluster assignments over the 2-D sample projection", opt, func() ([]byte, error) {
		if res == nil || len(res.Projection) < 2 || len(res.Labels) != len(res.Projection) {
			return nil, fmt.Errorf("no projection to plot")
		}
		series := seriesByGroup(res.Projection, res.Labels, "cluster")
		xs, ys := splitPoints(res.Projection)
		if len(res.CentroidProj) > 0 {
			cx, cy := splitPoints(res.CentroidProj)
			xs = append(xs, cx...)
			ys = append(ys, cy...)
			st := pointStyle(chart.ColorBlack)
			st.DotWidth = 8
			series = append(series, chart.ContinuousSeries{Name: "Centroids", XValues: cx, YValues: cy, Style: st})
		}
		c := chart.Chart{
			Title:  fmt.Sprintf("%s (silhouette %.2f)", algorithm, res.Silhouette),
			Width:  opt.Width,
			Height: opt.Height,
			XAxis:  chart.XAxis{Name: "PC1", Range: paddedRange(minMax(xs))},
			YAxis:  chart.YAxis{Name: "PC2", Range: paddedRange(minMax(ys))},
			Series: series,
		}
		return renderPNG(c)
	})
}

func splitPoints(pts []battery.Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

func minMax(vals []float64) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		min, max = math.Min(min, v), math.Max(max, v)
	}
	if math.IsInf(min, 1) {
		return 0, 0
	}
	return min, max
}

// seriesByGroup builds one dot series per distinct group label, in ascending
// label order so colors stay stable.
func seriesByGroup(pts []battery.Point, groups []int, prefix string) []chart.Series {
	maxG := 0
	for _, g := range groups {
		if g > maxG {
			maxG = g
		}
	}
	var series []chart.Series
	for g := 0; g <= maxG; g++ {
		var xs, ys []float64
		for i, lbl := range groups {
			if lbl != g {
				continue
			}
			xs = append(xs, pts[i].X)
			ys = append(ys, pts[i].Y)
		}
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("%s %d", prefix, g),
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(clusterColor(g)),
		})
	}
	return series
}
