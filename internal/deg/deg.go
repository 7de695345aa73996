// Package deg classifies normalized expression records into differentially
// expressed genes and summarizes the result.
//
// A record counts as a DEG only when it passes both gates: the significance
// gate (adjusted p-value below threshold when the table has one, otherwise the
// raw p-value) AND the magnitude gate (|log2 fold change| above threshold).
// Significance alone is not enough; Summary.Significant is the DEG count, and
// Up/Down partition it by the sign of the fold change.
package deg

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/genelens/genelens-cli/internal/tabular"
)

// Thresholds gates DEG classification.
type Thresholds struct {
	PValue    float64 // raw p-value cutoff when no adjusted column exists
	AdjustedP float64 // adjusted p-value cutoff when the column exists
	Log2FC    float64 // absolute fold-change cutoff
	TopN      int     // genes kept in each of TopUp/TopDown
}

// DefaultThresholds mirrors the conventional 0.05 / |log2FC| > 1 gates.
func DefaultThresholds() Thresholds {
	return Thresholds{PValue: 0.05, AdjustedP: 0.05, Log2FC: 1.0, TopN: 10}
}

// TopGene is one entry of a top-N ranking.
type TopGene struct {
	GeneID string
	Log2FC float64
	PValue float64
}

// Summary is the immutable result of DEG analysis.
type Summary struct {
	Total       int
	Significant int // DEG count: significance AND magnitude gates passed
	Up          int
	Down        int

	DegPercent  float64 // Significant / Total * 100
	UpPercent   float64 // Up / Significant * 100
	DownPercent float64 // Down / Significant * 100

	MeanLog2FC   float64 // over DEGs only; 0 when there are none
	MedianLog2FC float64

	TopUp   []TopGene // by descending log2FC
	TopDown []TopGene // by ascending log2FC
}

// Analyze computes a Summary from a normalized table. The table is read-only;
// repeated calls on the same table produce identical summaries.
func Analyze(t *tabular.Table, th Thresholds) Summary {
	s := Summary{Total: t.Len()}
	ids := t.GeneIDs()

	type degRec struct {
		idx    int
		log2fc float64
		pvalue float64
	}
	var degs []degRec
	for i, rec := range t.Records {
		// When an adjusted column exists it is the only significance gate; a
		// NaN cell fails the comparison and the row is never significant.
		p := rec.PValue
		cut := th.PValue
		if t.HasAdjustedP {
			p = rec.AdjustedP
			cut = th.AdjustedP
		}
		if p < cut && math.Abs(rec.Log2FC) > th.Log2FC {
			degs = append(degs, degRec{idx: i, log2fc: rec.Log2FC, pvalue: rec.PValue})
			s.Significant++
			if rec.Log2FC > 0 {
				s.Up++
			} else if rec.Log2FC < 0 {
				s.Down++
			}
		}
	}

	if s.Total > 0 {
		s.DegPercent = float64(s.Significant) / float64(s.Total) * 100
	}
	if s.Significant > 0 {
		s.UpPercent = float64(s.Up) / float64(s.Significant) * 100
		s.DownPercent = float64(s.Down) / float64(s.Significant) * 100

		fcs := make([]float64, len(degs))
		for i, d := range degs {
			fcs[i] = d.log2fc
		}
		s.MeanLog2FC, _ = stats.Mean(fcs)
		s.MedianLog2FC, _ = stats.Median(fcs)
	}

	// Rank by |log2FC| descending, ties by ascending p-value, then original
	// row order (SliceStable preserves it).
	sort.SliceStable(degs, func(i, j int) bool {
		ai, aj := math.Abs(degs[i].log2fc), math.Abs(degs[j].log2fc)
		if ai != aj {
			return ai > aj
		}
		return degs[i].pvalue < degs[j].pvalue
	})

	topN := th.TopN
	if topN <= 0 {
		topN = 10
	}
	for _, d := range degs {
		g := TopGene{GeneID: ids[d.idx], Log2FC: d.log2fc, PValue: d.pvalue}
		if d.log2fc > 0 && len(s.TopUp) < topN {
			s.TopUp = append(s.TopUp, g)
		} else if d.log2fc < 0 && len(s.TopDown) < topN {
			s.TopDown = append(s.TopDown, g)
		}
	}
	return s
}

// TopByAbsFC returns up to n record indices ranked by absolute fold change
// over the whole table, regardless of significance. Used for heatmap row
// selection.
func TopByAbsFC(t *tabular.Table, n int) []int {
	idx := make([]int, t.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		fa := math.Abs(t.Records[idx[a]].Log2FC)
		fb := math.Abs(t.Records[idx[b]].Log2FC)
		if fa != fb {
			return fa > fb
		}
		return t.Records[idx[a]].PValue < t.Records[idx[b]].PValue
	})
	if n > 0 && len(idx) > n {
		idx = idx[:n]
	}
	return idx
}
