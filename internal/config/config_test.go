package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PValueThreshold != 0.05 || cfg.Log2FCThreshold != 1.0 {
		t.Fatalf("threshold defaults = %v / %v", cfg.PValueThreshold, cfg.Log2FCThreshold)
	}
	if cfg.Clusters != 3 || cfg.LassoAlpha != 0.1 || cfg.RidgeAlpha != 1.0 {
		t.Fatalf("battery defaults = %+v", cfg)
	}
	if !cfg.ParallelBattery {
		t.Fatalf("parallel_battery default = false, want true")
	}
	if cfg.ChartWidth != 900 || cfg.ChartHeight != 560 {
		t.Fatalf("chart defaults = %dx%d", cfg.ChartWidth, cfg.ChartHeight)
	}
	if cfg.ReportsDir == "" {
		t.Fatalf("reports_dir not defaulted")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	want := &Global{
		PValueThreshold:    0.01,
		AdjustedPThreshold: 0.02,
		Log2FCThreshold:    1.5,
		TopN:               5,
		Classes:            3,
		Neighbors:          5,
		Clusters:           4,
		LassoAlpha:         0.2,
		RidgeAlpha:         2.0,
		Seed:               7,
		ParallelBattery:    false,
		ChartWidth:         640,
		ChartHeight:        480,
		HeatmapTopN:        12,
		ReportsDir:         "/tmp/reports",
	}
	if err := Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.PValueThreshold != want.PValueThreshold ||
		got.Log2FCThreshold != want.Log2FCThreshold ||
		got.Clusters != want.Clusters ||
		got.LassoAlpha != want.LassoAlpha ||
		got.Seed != want.Seed ||
		got.ChartWidth != want.ChartWidth ||
		got.ReportsDir != want.ReportsDir {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
	if got.ParallelBattery {
		t.Fatalf("parallel_battery not preserved")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("GENELENS_CLUSTERS", "6")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Clusters != 6 {
		t.Fatalf("Clusters = %d, want env override 6", cfg.Clusters)
	}
	_ = os.Unsetenv("GENELENS_CLUSTERS")
}
