// Package narrative composes the "results" and "discussion" report sections
// from analysis summaries. Output is pure template interpolation: the same
// summary always produces the same text.
package narrative

import (
	"fmt"
	"math"
	"strings"

	"github.com/genelens/genelens-cli/internal/deg"
	"github.com/genelens/genelens-cli/internal/tabular"
)

// Section is one composed text block.
type Section struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Qualitative cutoffs for the interpolated wording.
const (
	substantialDegPercent = 10.0
	moderateDegPercent    = 1.0
	balancedSpreadPoints  = 15.0
)

// magnitudeWord grades the transcriptome-wide response strength.
func magnitudeWord(degPercent float64) string {
	switch {
	case degPercent > substantialDegPercent:
		return "substantial"
	case degPercent > moderateDegPercent:
		return "moderate"
	default:
		return "limited"
	}
}

// balanceWord grades the up/down split.
func balanceWord(upPercent, downPercent float64) string {
	spread := math.Abs(upPercent - downPercent)
	switch {
	case spread <= balancedSpreadPoints:
		return "a balanced regulatory response"
	case upPercent > downPercent:
		return "a response skewed toward up-regulation"
	default:
		return "a response skewed toward down-regulation"
	}
}

// Compose builds the ordered narrative sections from a DEG summary and an
// optional enrichment table.
func Compose(s deg.Summary, enrichment *tabular.EnrichmentTable) []Section {
	return []Section{
		{Key: "results", Title: "Results", Content: resultsText(s)},
		{Key: "discussion", Title: "Discussion", Content: discussionText(s, enrichment)},
	}
}

func resultsText(s deg.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"Differential expression analysis identified %d significantly differentially expressed genes (DEGs) out of %d total genes analyzed (%.2f%% of the transcriptome).",
		s.Significant, s.Total, s.DegPercent)

	if s.Significant == 0 {
		b.WriteString("\n\nNo genes passed both the significance and fold-change thresholds under the configured cutoffs. This indicates a limited transcriptional response, or thresholds stricter than the effect sizes present in the data.")
		return b.String()
	}

	fmt.Fprintf(&b,
		"\n\nAmong the DEGs, %d genes (%.1f%%) were up-regulated, while %d genes (%.1f%%) were down-regulated. The mean log2 fold change across DEGs was %.2f (median %.2f). This indicates a %s transcriptional response to the experimental conditions.",
		s.Up, s.UpPercent, s.Down, s.DownPercent, s.MeanLog2FC, s.MedianLog2FC, magnitudeWord(s.DegPercent))

	fmt.Fprintf(&b,
		"\n\nThe analysis employed standard statistical thresholds for significance, and the distribution of up- and down-regulated genes suggests %s.",
		balanceWord(s.UpPercent, s.DownPercent))

	if len(s.TopUp) > 0 {
		fmt.Fprintf(&b, " The strongest up-regulated gene was %s (log2FC %.2f).", s.TopUp[0].GeneID, s.TopUp[0].Log2FC)
	}
	if len(s.TopDown) > 0 {
		fmt.Fprintf(&b, " The strongest down-regulated gene was %s (log2FC %.2f).", s.TopDown[0].GeneID, s.TopDown[0].Log2FC)
	}
	return b.String()
}

func discussionText(s deg.Summary, enrichment *tabular.EnrichmentTable) string {
	var b strings.Builder
	if s.Significant == 0 {
		b.WriteString("The absence of differentially expressed genes under the configured thresholds suggests either a weak experimental perturbation or a need to revisit threshold selection. Examining the raw fold-change and p-value distributions may clarify which.")
	} else {
		fmt.Fprintf(&b,
			"The identification of %d differentially expressed genes represents a %s transcriptional response. The distribution between up-regulated (%d) and down-regulated (%d) genes suggests %s consistent with coordinated regulatory mechanisms.",
			s.Significant, magnitudeWord(s.DegPercent), s.Up, s.Down, balanceWord(s.UpPercent, s.DownPercent))
		fmt.Fprintf(&b,
			"\n\nThe magnitude of the response (%.2f%% of genes) indicates %s biological changes under the experimental conditions.",
			s.DegPercent, magnitudeWord(s.DegPercent))
	}

	if enrichment != nil && len(enrichment.Rows) > 0 {
		top := enrichment.Top(3)
		terms := make([]string, len(top))
		for i, r := range top {
			terms[i] = r.Term
		}
		fmt.Fprintf(&b,
			"\n\nPathway enrichment highlighted %d terms; the most significant were %s. These enriched categories provide functional context for the observed expression changes.",
			len(enrichment.Rows), strings.Join(terms, ", "))
	} else {
		b.WriteString("\n\nFurther investigation into the functional categories and pathways enriched among these DEGs would provide additional insights into the underlying biological processes.")
	}

	b.WriteString("\n\nFuture studies should focus on validating key DEGs through independent methods and exploring the functional consequences of these transcriptional changes. Integration with pathway analysis and network-based approaches could reveal regulatory relationships and potential therapeutic targets.")
	return b.String()
}
