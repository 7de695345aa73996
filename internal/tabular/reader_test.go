package tabular

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		want     Format
	}{
		{"csv extension", "degs.csv", "a,b\n1,2\n", FormatCSV},
		{"tsv extension", "degs.tsv", "a\tb\n1\t2\n", FormatTSV},
		{"txt extension", "degs.txt", "a\tb\n1\t2\n", FormatTSV},
		{"xlsx extension", "degs.xlsx", "", FormatXLSX},
		{"zip magic wins", "upload.bin", "PK\x03\x04junk", FormatXLSX},
		{"tab sniff", "upload", "a\tb\tc\n1\t2\t3\n", FormatTSV},
		{"comma sniff", "upload", "a,b,c\n1,2,3\n", FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.filename, []byte(tt.data)); got != tt.want {
				t.Errorf("DetectFormat = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadCSV(t *testing.T) {
	data := []byte("gene,log2FC,pvalue\nBRCA1,2.5,0.001\nTP53,-1.8,0.01\n")
	tbl, err := Load(data, "degs.csv")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	if tbl.Records[0].GeneID != "BRCA1" || tbl.Records[0].Log2FC != 2.5 {
		t.Fatalf("record 0 = %+v", tbl.Records[0])
	}
}

func TestLoadTSVRaggedRows(t *testing.T) {
	data := []byte("gene\tlog2FC\tpvalue\tpadj\nA\t1.5\t0.02\nB\t-2.0\t0.001\t0.01\n")
	tbl, err := Load(data, "degs.tsv")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	if tbl.Records[1].AdjustedP != 0.01 {
		t.Fatalf("AdjustedP = %v, want 0.01", tbl.Records[1].AdjustedP)
	}
}

func TestLoadEmptyInput(t *testing.T) {
	if _, err := Load(nil, "degs.csv"); err == nil {
		t.Fatalf("Load of empty buffer succeeded, want error")
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.5", 1.5, true},
		{"-2.25", -2.25, true},
		{"1e-5", 1e-5, true},
		{"2.5E3", 2500, true},
		{"0,5", 0.5, true},
		{"1,000", 1000, true},
		{"1.234,5", 1234.5, true},
		{"1,234.5", 1234.5, true},
		{"85%", 85, true},
		{"", 0, false},
		{"chrX", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseNumeric(tt.in)
		if ok != tt.ok {
			t.Errorf("parseNumeric(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("parseNumeric(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// buildXLSX assembles a minimal single-sheet workbook in memory.
func buildXLSX(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"xl/workbook.xml": `<?xml version="1.0"?>
<workbook xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="DEGs" sheetId="1" r:id="rId1"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0"?>
<Relationships><Relationship Id="rId1" Target="worksheets/sheet1.xml"/></Relationships>`,
		"xl/sharedStrings.xml": `<?xml version="1.0"?>
<sst><si><t>gene</t></si><si><t>log2FC</t></si><si><t>pvalue</t></si><si><t>BRCA1</t></si><si><t>TP53</t></si></sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="s"><v>2</v></c></row>
<row r="2"><c r="A2" t="s"><v>3</v></c><c r="B2"><v>2.5</v></c><c r="C2"><v>0.001</v></c></row>
<row r="3"><c r="A3" t="s"><v>4</v></c><c r="B3"><v>-1.8</v></c><c r="C3"><v>0.01</v></c></row>
</sheetData></worksheet>`,
	}
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestLoadXLSX(t *testing.T) {
	tbl, err := Load(buildXLSX(t), "degs.xlsx")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	if tbl.Records[0].GeneID != "BRCA1" || tbl.Records[0].Log2FC != 2.5 {
		t.Fatalf("record 0 = %+v", tbl.Records[0])
	}
	if tbl.Records[1].GeneID != "TP53" || tbl.Records[1].PValue != 0.01 {
		t.Fatalf("record 1 = %+v", tbl.Records[1])
	}
}

func TestReadXLSXSheetByName(t *testing.T) {
	data := buildXLSX(t)
	header, rows, err := readXLSX(data, "degs", 0)
	if err != nil {
		t.Fatalf("readXLSX by name (case-insensitive): %v", err)
	}
	if len(header) != 3 || len(rows) != 2 {
		t.Fatalf("header=%v rows=%d", header, len(rows))
	}
	if _, _, err := readXLSX(data, "missing", 0); err == nil {
		t.Fatalf("readXLSX of unknown sheet succeeded, want error")
	}
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.in); got != tt.want {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadEnrichment(t *testing.T) {
	data := []byte("Pathway,pvalue,Count\nApoptosis,0.01,12\nCell cycle,0.001,30\nOxidative phosphorylation,0.04,8\n")
	et, err := LoadEnrichment(data, "enrich.csv")
	if err != nil {
		t.Fatalf("LoadEnrichment failed: %v", err)
	}
	if len(et.Rows) != 3 || !et.HasGeneCnts {
		t.Fatalf("rows=%d HasGeneCnts=%v", len(et.Rows), et.HasGeneCnts)
	}
	top := et.Top(2)
	if len(top) != 2 || top[0].Term != "Cell cycle" || top[1].Term != "Apoptosis" {
		t.Fatalf("Top(2) = %+v", top)
	}
	if top[0].GeneCount != 30 {
		t.Fatalf("GeneCount = %d, want 30", top[0].GeneCount)
	}
}

func TestLoadEnrichmentMissingColumns(t *testing.T) {
	if _, err := LoadEnrichment([]byte("a,b\n1,2\n"), "enrich.csv"); err == nil {
		t.Fatalf("LoadEnrichment without term column succeeded, want error")
	}
	if _, err := LoadEnrichment([]byte("term,notes\nApoptosis,x\n"), "enrich.csv"); err == nil {
		t.Fatalf("LoadEnrichment without p-value column succeeded, want error")
	}
}
