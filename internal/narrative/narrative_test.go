package narrative

import (
	"strings"
	"testing"

	"github.com/genelens/genelens-cli/internal/deg"
	"github.com/genelens/genelens-cli/internal/tabular"
)

func sampleSummary() deg.Summary {
	return deg.Summary{
		Total:        1000,
		Significant:  150,
		Up:           80,
		Down:         70,
		DegPercent:   15.0,
		UpPercent:    53.3,
		DownPercent:  46.7,
		MeanLog2FC:   0.4,
		MedianLog2FC: 0.6,
		TopUp:        []deg.TopGene{{GeneID: "BRCA1", Log2FC: 4.2}},
		TopDown:      []deg.TopGene{{GeneID: "TP53", Log2FC: -3.8}},
	}
}

func TestComposeSectionsOrdered(t *testing.T) {
	sections := Compose(sampleSummary(), nil)
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if sections[0].Key != "results" || sections[1].Key != "discussion" {
		t.Fatalf("section keys = %q, %q", sections[0].Key, sections[1].Key)
	}
	if sections[0].Title != "Results" || sections[1].Title != "Discussion" {
		t.Fatalf("section titles = %q, %q", sections[0].Title, sections[1].Title)
	}
}

func TestComposeInterpolatesCounts(t *testing.T) {
	sections := Compose(sampleSummary(), nil)
	results := sections[0].Content
	for _, want := range []string{
		"150 significantly differentially expressed genes",
		"1000 total genes",
		"15.00% of the transcriptome",
		"80 genes (53.3%) were up-regulated",
		"70 genes (46.7%) were down-regulated",
		"BRCA1",
		"TP53",
	} {
		if !strings.Contains(results, want) {
			t.Errorf("results missing %q:\n%s", want, results)
		}
	}
}

func TestQualitativeWords(t *testing.T) {
	tests := []struct {
		name       string
		degPercent float64
		up, down   float64
		want       []string
		dontWant   []string
	}{
		{"substantial balanced", 15, 53, 47, []string{"substantial", "balanced regulatory response"}, nil},
		{"moderate", 5, 50, 50, []string{"moderate"}, []string{"substantial"}},
		{"limited", 0.5, 50, 50, []string{"limited"}, []string{"substantial", "moderate transcriptional"}},
		{"up skewed", 15, 80, 20, []string{"skewed toward up-regulation"}, []string{"balanced regulatory"}},
		{"down skewed", 15, 20, 80, []string{"skewed toward down-regulation"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleSummary()
			s.DegPercent = tt.degPercent
			s.UpPercent = tt.up
			s.DownPercent = tt.down
			text := Compose(s, nil)[0].Content
			for _, w := range tt.want {
				if !strings.Contains(text, w) {
					t.Errorf("missing %q:\n%s", w, text)
				}
			}
			for _, w := range tt.dontWant {
				if strings.Contains(text, w) {
					t.Errorf("unexpected %q:\n%s", w, text)
				}
			}
		})
	}
}

func TestComposeNoDEGs(t *testing.T) {
	s := deg.Summary{Total: 500}
	sections := Compose(s, nil)
	if !strings.Contains(sections[0].Content, "No genes passed") {
		t.Fatalf("results = %q", sections[0].Content)
	}
	if !strings.Contains(sections[1].Content, "absence of differentially expressed genes") {
		t.Fatalf("discussion = %q", sections[1].Content)
	}
}

func TestComposeWithEnrichment(t *testing.T) {
	et := &tabular.EnrichmentTable{Rows: []tabular.EnrichmentRow{
		{Term: "Apoptosis", PValue: 0.01},
		{Term: "Cell cycle", PValue: 0.001},
	}}
	discussion := Compose(sampleSummary(), et)[1].Content
	if !strings.Contains(discussion, "Cell cycle, Apoptosis") {
		t.Fatalf("enrichment terms missing or unordered:\n%s", discussion)
	}
	if !strings.Contains(discussion, "highlighted 2 terms") {
		t.Fatalf("term count missing:\n%s", discussion)
	}
}

func TestComposeDeterministic(t *testing.T) {
	s := sampleSummary()
	a := Compose(s, nil)
	for i := 0; i < 5; i++ {
		b := Compose(s, nil)
		for j := range a {
			if a[j].Content != b[j].Content {
				t.Fatalf("run %d section %q differs", i, a[j].Key)
			}
		}
	}
}
