package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/genelens/genelens-cli/internal/genetics"
	"github.com/genelens/genelens-cli/internal/percentile"
	"github.com/genelens/genelens-cli/internal/render"
)

const degCSV = `gene,log2FC,pvalue,padj,s1,s2,s3,s4,s5,s6
UP1,2.5,0.001,0.004,9.1,9.4,9.0,1.2,1.0,1.1
UP2,1.8,0.002,0.008,8.2,8.5,8.1,2.0,2.2,1.9
DOWN1,-2.1,0.003,0.009,1.1,1.3,1.0,9.3,9.0,9.2
FLAT1,0.2,0.40,0.62,5.0,5.1,4.9,5.2,5.0,5.1
FLAT2,-0.1,0.80,0.91,4.0,4.2,4.1,4.0,4.1,3.9
`

const enrichCSV = `term,pvalue,genes
Cell cycle,0.001,12
Apoptosis,0.004,8
`

func testOptions() ResearchOptions {
	opt := DefaultResearchOptions()
	opt.Render = render.Options{Width: 400, Height: 300}
	opt.HeatmapTopN = 3
	return opt
}

func TestResearchEndToEnd(t *testing.T) {
	report, err := Research(context.Background(), []byte(degCSV), "degs.csv", []byte(enrichCSV), "enrichment.csv", testOptions())
	if err != nil {
		t.Fatalf("Research: %v", err)
	}
	if report.ID == "" || report.GeneratedAt.IsZero() {
		t.Fatalf("missing report identity: %+v", report)
	}
	if report.Summary.Total != 5 || report.Summary.Significant != 3 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	if len(report.Results) != 7 {
		t.Fatalf("expected 7 analyses, got %d", len(report.Results))
	}
	if len(report.Charts) < 3 {
		t.Fatalf("expected DEG charts plus battery charts, got %d", len(report.Charts))
	}
	for _, c := range report.Charts {
		img, err := png.Decode(bytes.NewReader(c.PNG))
		if err != nil {
			t.Fatalf("chart %s is not a PNG: %v", c.Name, err)
		}
		if img.Bounds().Dx() != 400 {
			t.Fatalf("chart %s width = %d", c.Name, img.Bounds().Dx())
		}
	}
	dendrogram := false
	for _, c := range report.Charts {
		if c.Name == "hierarchical_dendrogram" {
			dendrogram = !c.Placeholder
		}
	}
	if !dendrogram {
		t.Fatal("hierarchical clustering should contribute a merge-height chart")
	}
	if len(report.Narrative) != 2 {
		t.Fatalf("expected results and discussion sections, got %d", len(report.Narrative))
	}
	if !strings.Contains(report.Narrative[1].Content, "Cell cycle") {
		t.Fatalf("discussion missing enrichment terms: %q", report.Narrative[1].Content)
	}
}

func TestResearchChartOrder(t *testing.T) {
	report, err := Research(context.Background(), []byte(degCSV), "degs.csv", nil, "", testOptions())
	if err != nil {
		t.Fatalf("Research: %v", err)
	}
	if len(report.Charts) < 2 {
		t.Fatalf("too few charts: %d", len(report.Charts))
	}
	if report.Charts[0].Name != "volcano" {
		t.Fatalf("first chart = %q, want volcano", report.Charts[0].Name)
	}
	if report.Charts[1].Name != "expression_heatmap" {
		t.Fatalf("second chart = %q, want expression_heatmap", report.Charts[1].Name)
	}
}

func TestResearchSchemaErrorIsFatal(t *testing.T) {
	_, err := Research(context.Background(), []byte("gene,stuff\nA,1\n"), "bad.csv", nil, "", testOptions())
	if err == nil {
		t.Fatal("expected schema error")
	}
}

func TestResearchBadEnrichmentDegrades(t *testing.T) {
	report, err := Research(context.Background(), []byte(degCSV), "degs.csv", []byte("nope\n1\n"), "enrichment.csv", testOptions())
	if err != nil {
		t.Fatalf("Research: %v", err)
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "enrichment file skipped") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing enrichment warning: %v", report.Warnings)
	}
}

func TestResearchNoSampleColumnsSkipsBattery(t *testing.T) {
	csv := "gene,log2FC,pvalue\nA,2.0,0.001\nB,-1.5,0.002\n"
	report, err := Research(context.Background(), []byte(csv), "degs.csv", nil, "", testOptions())
	if err != nil {
		t.Fatalf("Research: %v", err)
	}
	if len(report.Results) != 0 {
		t.Fatalf("battery should be skipped, got %d results", len(report.Results))
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "battery skipped") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing skip warning: %v", report.Warnings)
	}
	if len(report.Narrative) != 2 {
		t.Fatalf("narrative must still be composed, got %d sections", len(report.Narrative))
	}
}

func TestResearchDeterministicSummaryAndNarrative(t *testing.T) {
	a, err := Research(context.Background(), []byte(degCSV), "degs.csv", []byte(enrichCSV), "enrichment.csv", testOptions())
	if err != nil {
		t.Fatalf("Research: %v", err)
	}
	b, err := Research(context.Background(), []byte(degCSV), "degs.csv", []byte(enrichCSV), "enrichment.csv", testOptions())
	if err != nil {
		t.Fatalf("Research: %v", err)
	}
	if !reflect.DeepEqual(a.Summary, b.Summary) {
		t.Fatalf("summaries diverge: %+v vs %+v", a.Summary, b.Summary)
	}
	for i := range a.Narrative {
		if a.Narrative[i] != b.Narrative[i] {
			t.Fatalf("narrative section %d diverges", i)
		}
	}
}

func TestWriteResearchArtifacts(t *testing.T) {
	report, err := Research(context.Background(), []byte(degCSV), "degs.csv", []byte(enrichCSV), "enrichment.csv", testOptions())
	if err != nil {
		t.Fatalf("Research: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "report")
	if err := WriteResearchArtifacts(report, dir); err != nil {
		t.Fatalf("WriteResearchArtifacts: %v", err)
	}

	manifest, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.Contains(string(manifest), `"charts/01_volcano.png"`) {
		t.Fatalf("manifest lacks chart path:\n%s", manifest)
	}
	md, err := os.ReadFile(filepath.Join(dir, "narrative.md"))
	if err != nil {
		t.Fatalf("read narrative: %v", err)
	}
	if !strings.Contains(string(md), "## Results") || !strings.Contains(string(md), "## Discussion") {
		t.Fatalf("narrative.md missing sections:\n%s", md)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "charts"))
	if err != nil {
		t.Fatalf("read charts dir: %v", err)
	}
	if len(entries) != len(report.Charts) {
		t.Fatalf("wrote %d chart files, want %d", len(entries), len(report.Charts))
	}
}

func TestPersonalFlow(t *testing.T) {
	snps := []genetics.SnpRecord{
		{RsID: "rs762551", Genotype: "AA"},
		{RsID: "rs4988235", Genotype: "TT"},
		{RsID: "rs9999999", Genotype: "AT"},
	}
	lifestyle := map[string]any{"caffeine": "2 cups/day"}
	report := Personal(snps, lifestyle, genetics.BuiltinRules(), percentile.DefaultTable(), nil)
	if report.ID == "" || report.GeneratedAt.IsZero() {
		t.Fatalf("missing report identity: %+v", report)
	}
	if len(report.Cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(report.Cards))
	}
	if report.Cards[0].Percentile == nil {
		t.Fatal("known variant should carry a percentile")
	}
	if report.Cards[2].Percentile != nil {
		t.Fatal("unknown variant must not carry a percentile")
	}
	if len(report.PeerComparisons) == 0 {
		t.Fatal("expected peer comparisons")
	}
	if report.BioCard.Title == "" {
		t.Fatal("expected a bio card")
	}

	dir := t.TempDir()
	if err := WritePersonalArtifacts(report, dir); err != nil {
		t.Fatalf("WritePersonalArtifacts: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "personal.json"))
	if err != nil {
		t.Fatalf("read personal.json: %v", err)
	}
	if !strings.Contains(string(b), "RS762551") {
		t.Fatalf("personal.json missing card data:\n%s", b)
	}
}
