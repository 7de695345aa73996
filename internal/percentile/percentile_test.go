package percentile

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestPercentileMonotonic(t *testing.T) {
	tbl := DefaultTable()
	traits := []string{"caffeine_metabolism", "lactose_tolerance", "exercise_response", "unknown_trait"}
	for _, trait := range traits {
		prev := -1.0
		for s := 0.0; s <= 1.0; s += 0.05 {
			p := tbl.Percentile(trait, s)
			if p < prev {
				t.Fatalf("%s not monotonic: percentile(%v) = %v < %v", trait, s, p, prev)
			}
			if p < 0 || p > 1 {
				t.Fatalf("%s percentile(%v) = %v out of [0,1]", trait, s, p)
			}
			prev = p
		}
	}
}

func TestPercentileClampsScore(t *testing.T) {
	tbl := DefaultTable()
	if got, want := tbl.Percentile("peer", -0.5), 0.0; got != want {
		t.Fatalf("percentile(-0.5) = %v, want %v", got, want)
	}
	if got, want := tbl.Percentile("peer", 1.5), 1.0; got != want {
		t.Fatalf("percentile(1.5) = %v, want %v", got, want)
	}
}

func TestPercentileUnknownTraitUsesDefault(t *testing.T) {
	tbl := DefaultTable()
	// Default Normal(0.5, 0.25): CDF at the mean is exactly one half.
	if got := tbl.Percentile("no_such_trait", 0.5); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("default percentile(0.5) = %v, want 0.5", got)
	}
}

func TestUniformIsIdentity(t *testing.T) {
	tbl := DefaultTable()
	for _, s := range []float64{0, 0.25, 0.5, 0.9, 1} {
		if got := tbl.Percentile("peer", s); got != s {
			t.Fatalf("peer percentile(%v) = %v, want identity", s, got)
		}
	}
}

func TestPercentileDeterministic(t *testing.T) {
	tbl := DefaultTable()
	a := tbl.Percentile("caffeine_metabolism", 0.8)
	for i := 0; i < 10; i++ {
		if b := tbl.Percentile("caffeine_metabolism", 0.8); b != a {
			t.Fatalf("run %d: %v != %v", i, b, a)
		}
	}
}

func TestDistributionValidate(t *testing.T) {
	tests := []struct {
		name string
		d    Distribution
		ok   bool
	}{
		{"normal ok", Distribution{Family: FamilyNormal, Mean: 0.5, Stddev: 0.2}, true},
		{"normal zero stddev", Distribution{Family: FamilyNormal, Mean: 0.5}, false},
		{"beta ok", Distribution{Family: FamilyBeta, Alpha: 2, Beta: 3}, true},
		{"beta bad shape", Distribution{Family: FamilyBeta, Alpha: 0, Beta: 3}, false},
		{"uniform ok", Distribution{Family: FamilyUniform}, true},
		{"unknown family", Distribution{Family: "cauchy"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() err = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestLoadTableOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dist.yaml")
	body := `traits:
  caffeine_metabolism:
    family: uniform
  night_vision:
    family: normal
    mean: 0.4
    stddev: 0.1
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	tbl, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if got := tbl.Percentile("caffeine_metabolism", 0.3); got != 0.3 {
		t.Fatalf("override not applied: percentile = %v, want 0.3", got)
	}
	if got := tbl.Percentile("night_vision", 0.4); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("new trait percentile = %v, want 0.5", got)
	}
	// Untouched defaults survive the merge.
	if _, ok := tbl.Traits["lactose_tolerance"]; !ok {
		t.Fatalf("default trait lost in merge")
	}
}

func TestLoadTableBadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dist.yaml")
	if err := os.WriteFile(path, []byte("traits:\n  x:\n    family: cauchy\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadTable(path); err == nil {
		t.Fatalf("LoadTable accepted unknown family")
	}
	if _, err := LoadTable(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("LoadTable accepted missing file")
	}
}

func TestLoadTableEmptyPathUsesDefaults(t *testing.T) {
	tbl, err := LoadTable("")
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if len(tbl.Traits) == 0 {
		t.Fatalf("empty path produced empty table")
	}
}
