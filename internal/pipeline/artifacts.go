package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/genelens/genelens-cli/internal/battery"
	"github.com/genelens/genelens-cli/internal/deg"
	"github.com/genelens/genelens-cli/internal/narrative"
	"github.com/genelens/genelens-cli/internal/utils"
)

// chartManifestEntry describes one chart file in the report manifest.
type chartManifestEntry struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	File        string `json:"file"`
	Placeholder bool   `json:"placeholder,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type researchManifest struct {
	ID          string               `json:"id"`
	GeneratedAt time.Time            `json:"generated_at"`
	InputFile   string               `json:"input_file"`
	Summary     deg.Summary          `json:"summary"`
	Results     []battery.Result     `json:"results"`
	Charts      []chartManifestEntry `json:"charts"`
	Narrative   []narrative.Section  `json:"narrative"`
	Warnings    []string             `json:"warnings,omitempty"`
}

// WriteResearchArtifacts materializes a research report into dir:
// report.json, charts/NN_name.png, and narrative.md.
func WriteResearchArtifacts(report *ResearchReport, dir string) error {
	chartsDir := filepath.Join(dir, "charts")
	if err := utils.EnsureDir(chartsDir); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	manifest := researchManifest{
		ID:          report.ID,
		GeneratedAt: report.GeneratedAt,
		InputFile:   report.InputFile,
		Summary:     report.Summary,
		Results:     report.Results,
		Narrative:   report.Narrative,
		Warnings:    report.Warnings,
	}
	for i, c := range report.Charts {
		file := filepath.Join("charts", fmt.Sprintf("%02d_%s.png", i+1, c.Name))
		if err := utils.SafeWriteFile(filepath.Join(dir, file), c.PNG); err != nil {
			return fmt.Errorf("write chart %s: %w", c.Name, err)
		}
		manifest.Charts = append(manifest.Charts, chartManifestEntry{
			Name:        c.Name,
			Category:    c.Category,
			Description: c.Description,
			File:        file,
			Placeholder: c.Placeholder,
			Reason:      c.Reason,
		})
	}

	if err := writeJSON(filepath.Join(dir, "report.json"), manifest); err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(dir, "narrative.md"), []byte(narrativeMarkdown(report)))
}

// WritePersonalArtifacts materializes a personal report as personal.json.
func WritePersonalArtifacts(report *PersonalReport, dir string) error {
	if err := utils.EnsureDir(dir); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	return writeJSON(filepath.Join(dir, "personal.json"), report)
}

func writeJSON(path string, v any) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func narrativeMarkdown(report *ResearchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Analysis Report %s\n", report.ID)
	for _, s := range report.Narrative {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", s.Title, s.Content)
	}
	if len(report.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}
