package tabular

import (
	"fmt"
	"math"
	"sort"
)

// EnrichmentRow is one scored pathway/term from an enrichment results file.
type EnrichmentRow struct {
	Term      string
	PValue    float64
	GeneCount int
}

// EnrichmentTable is the relaxed normalization of a pathway-enrichment file.
// Unlike DEG tables, enrichment input is optional and advisory, so the column
// discovery is best-effort over alias families rather than all-or-nothing.
type EnrichmentTable struct {
	Rows        []EnrichmentRow
	HasGeneCnts bool
}

var (
	termAliases  = []string{"pathway", "term", "description", "name"}
	pvalAliases  = []string{"pvalue", "pval", "p", "padj", "adjustedpvalue", "fdr", "adjpval"}
	countAliases = []string{"count", "genecount", "size", "genes", "n"}
)

func findAlias(header []string, aliases []string) int {
	for _, a := range aliases {
		for i, h := range header {
			if squash(h) == a {
				return i
			}
		}
	}
	return -1
}

// LoadEnrichment parses and normalizes an enrichment results buffer.
func LoadEnrichment(data []byte, filename string) (*EnrichmentTable, error) {
	header, rows, err := ReadRaw(data, filename)
	if err != nil {
		return nil, err
	}
	termIdx := findAlias(header, termAliases)
	pvalIdx := findAlias(header, pvalAliases)
	if termIdx < 0 {
		return nil, fmt.Errorf("enrichment file has no term column (looked for %v)", termAliases)
	}
	if pvalIdx < 0 {
		return nil, fmt.Errorf("enrichment file has no p-value column (looked for %v)", pvalAliases)
	}
	countIdx := findAlias(header, countAliases)

	t := &EnrichmentTable{HasGeneCnts: countIdx >= 0}
	for _, row := range rows {
		term := cellAt(row, termIdx)
		if term == "" {
			continue
		}
		p, ok := parseNumeric(cellAt(row, pvalIdx))
		if !ok || math.IsNaN(p) {
			continue
		}
		er := EnrichmentRow{Term: term, PValue: p}
		if countIdx >= 0 {
			if c, ok := parseNumeric(cellAt(row, countIdx)); ok {
				er.GeneCount = int(c)
			}
		}
		t.Rows = append(t.Rows, er)
	}
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("enrichment file has no usable rows")
	}
	return t, nil
}

// Top returns up to n rows sorted by ascending p-value, ties broken by term
// for a stable order.
func (t *EnrichmentTable) Top(n int) []EnrichmentRow {
	out := make([]EnrichmentRow, len(t.Rows))
	copy(out, t.Rows)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PValue == out[j].PValue {
			return out[i].Term < out[j].Term
		}
		return out[i].PValue < out[j].PValue
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
