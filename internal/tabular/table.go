package tabular

import (
	"fmt"
	"math"
	"strings"
)

// Canonical field names every downstream package keys on.
const (
	FieldGeneID    = "gene_id"
	FieldLog2FC    = "log2_fold_change"
	FieldPValue    = "p_value"
	FieldAdjustedP = "adjusted_p_value"
)

// aliasTable maps squashed header variants (lowercase, separators removed) to
// canonical field names. This is the compatibility surface for user files:
// every entry must be recognized case-insensitively and separator-insensitively.
var aliasTable = map[string]string{
	"log2fc":         FieldLog2FC,
	"logfc":          FieldLog2FC,
	"log2foldchange": FieldLog2FC,
	"logfoldchange":  FieldLog2FC,
	"foldchange":     FieldLog2FC,
	"fc":             FieldLog2FC,

	"pvalue": FieldPValue,
	"pval":   FieldPValue,
	"p":      FieldPValue,

	"padj":           FieldAdjustedP,
	"adjustedpvalue": FieldAdjustedP,
	"adjustedp":      FieldAdjustedP,
	"fdr":            FieldAdjustedP,
	"adjpval":        FieldAdjustedP,
	"qvalue":         FieldAdjustedP,

	"geneid":   FieldGeneID,
	"gene":     FieldGeneID,
	"genename": FieldGeneID,
	"symbol":   FieldGeneID,
}

// SchemaError is fatal to a single file's normalization. Row 0 refers to the
// header; data rows are 1-based.
type SchemaError struct {
	Field  string
	Reason string
	Row    int
	Column string
}

func (e *SchemaError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("schema error in field %q: %s (row %d, column %q)", e.Field, e.Reason, e.Row, e.Column)
	}
	return fmt.Sprintf("schema error in field %q: %s", e.Field, e.Reason)
}

// Record is one normalized row. AdjustedP is NaN when the file carries no
// adjusted p-value column. Samples is aligned with Table.SampleColumns and may
// contain NaN for blank cells.
type Record struct {
	GeneID    string
	Log2FC    float64
	PValue    float64
	AdjustedP float64
	Samples   []float64
}

// Table is the canonical record model produced by Normalize. Every record has
// a value (possibly NaN) for every declared column.
type Table struct {
	Records       []Record
	SampleColumns []string
	HasGeneID     bool
	HasAdjustedP  bool
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.Records) }

// ExpressionMatrix returns the sample sub-matrix with one row per record and
// one column per sample column. NaN cells are replaced with 0 so downstream
// numeric code never sees missing values.
func (t *Table) ExpressionMatrix() [][]float64 {
	out := make([][]float64, len(t.Records))
	for i, rec := range t.Records {
		row := make([]float64, len(t.SampleColumns))
		for j := range t.SampleColumns {
			v := rec.Samples[j]
			if math.IsNaN(v) {
				v = 0
			}
			row[j] = v
		}
		out[i] = row
	}
	return out
}

// GeneIDs returns gene identifiers for every record, synthesizing positional
// names when the file carried none.
func (t *Table) GeneIDs() []string {
	out := make([]string, len(t.Records))
	for i, rec := range t.Records {
		if rec.GeneID != "" {
			out[i] = rec.GeneID
		} else {
			out[i] = fmt.Sprintf("gene_%d", i+1)
		}
	}
	return out
}

// squash lowers a header and strips separators so "Log2_FC", "log2-fc" and
// "log2FC" all resolve to the same alias key.
func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case '_', '-', ' ', '.':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalField resolves a raw header to its canonical field name, if any.
func CanonicalField(header string) (string, bool) {
	f, ok := aliasTable[squash(header)]
	return f, ok
}

// Normalize maps raw headers and string rows into a Table. Normalization is
// all-or-nothing: any parse failure on a required field rejects the whole
// table with a SchemaError.
func Normalize(header []string, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, &SchemaError{Field: FieldLog2FC, Reason: "file has no data rows"}
	}

	// Resolve canonical columns in a single pass over the header. First match
	// wins so duplicate aliases do not reshuffle data; later duplicates are
	// still claimed so they cannot leak through as expression samples.
	fieldIdx := map[string]int{}
	claimed := make([]bool, len(header))
	for i, h := range header {
		f, ok := CanonicalField(h)
		if !ok {
			continue
		}
		claimed[i] = true
		if _, seen := fieldIdx[f]; seen {
			continue
		}
		fieldIdx[f] = i
	}

	for _, required := range []string{FieldLog2FC, FieldPValue} {
		if _, ok := fieldIdx[required]; !ok {
			return nil, &SchemaError{Field: required, Reason: "no matching column"}
		}
	}

	// Remaining columns that parse as numeric (or blank) in every row are kept
	// as expression samples; anything else is dropped.
	var sampleIdx []int
	var sampleNames []string
	for i, h := range header {
		if claimed[i] {
			continue
		}
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		allNumeric := true
		anyValue := false
		for _, row := range rows {
			if i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			anyValue = true
			if _, ok := parseNumeric(cell); !ok {
				allNumeric = false
				break
			}
		}
		if allNumeric && anyValue {
			sampleIdx = append(sampleIdx, i)
			sampleNames = append(sampleNames, name)
		}
	}

	t := &Table{SampleColumns: sampleNames}
	_, t.HasGeneID = fieldIdx[FieldGeneID]
	_, t.HasAdjustedP = fieldIdx[FieldAdjustedP]

	t.Records = make([]Record, 0, len(rows))
	for rowNum, row := range rows {
		rec := Record{AdjustedP: math.NaN()}

		v, err := requiredCell(row, fieldIdx[FieldLog2FC], header, FieldLog2FC, rowNum+1)
		if err != nil {
			return nil, err
		}
		rec.Log2FC = v

		v, err = requiredCell(row, fieldIdx[FieldPValue], header, FieldPValue, rowNum+1)
		if err != nil {
			return nil, err
		}
		rec.PValue = v

		if t.HasAdjustedP {
			idx := fieldIdx[FieldAdjustedP]
			if cell := cellAt(row, idx); cell != "" {
				x, ok := parseNumeric(cell)
				if !ok {
					return nil, &SchemaError{Field: FieldAdjustedP, Reason: fmt.Sprintf("cannot parse %q as a number", cell), Row: rowNum + 1, Column: header[idx]}
				}
				rec.AdjustedP = x
			}
		}
		if t.HasGeneID {
			rec.GeneID = cellAt(row, fieldIdx[FieldGeneID])
		}

		rec.Samples = make([]float64, len(sampleIdx))
		for j, idx := range sampleIdx {
			cell := cellAt(row, idx)
			if cell == "" {
				rec.Samples[j] = math.NaN()
				continue
			}
			x, _ := parseNumeric(cell)
			rec.Samples[j] = x
		}

		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func requiredCell(row []string, idx int, header []string, field string, rowNum int) (float64, error) {
	cell := cellAt(row, idx)
	if cell == "" {
		return 0, &SchemaError{Field: field, Reason: "empty cell", Row: rowNum, Column: header[idx]}
	}
	x, ok := parseNumeric(cell)
	if !ok {
		return 0, &SchemaError{Field: field, Reason: fmt.Sprintf("cannot parse %q as a number", cell), Row: rowNum, Column: header[idx]}
	}
	return x, nil
}
