package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestReadSnpFileCSV(t *testing.T) {
	path := writeFile(t, "snps.csv", "rsid,genotype\nrs762551,AA\nrs4988235,TT\n\nrs7412,CC\n")
	snps, err := readSnpFile(path)
	if err != nil {
		t.Fatalf("readSnpFile: %v", err)
	}
	if len(snps) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(snps))
	}
	if snps[0].RsID != "rs762551" || snps[0].Genotype != "AA" {
		t.Fatalf("unexpected first variant: %+v", snps[0])
	}
}

func TestReadSnpFileCSVAltHeaders(t *testing.T) {
	path := writeFile(t, "snps.csv", "SNP,Alleles\nrs1800566,GA\n")
	snps, err := readSnpFile(path)
	if err != nil {
		t.Fatalf("readSnpFile: %v", err)
	}
	if len(snps) != 1 || snps[0].RsID != "rs1800566" {
		t.Fatalf("unexpected variants: %+v", snps)
	}
}

func TestReadSnpFileCSVMissingColumns(t *testing.T) {
	path := writeFile(t, "snps.csv", "id,value\nrs1,AA\n")
	if _, err := readSnpFile(path); err == nil {
		t.Fatal("expected column error")
	}
}

func TestReadSnpFileJSON(t *testing.T) {
	path := writeFile(t, "snps.json", `[{"rsid":"rs762551","genotype":"AC"},{"rsid":"","genotype":"TT"}]`)
	snps, err := readSnpFile(path)
	if err != nil {
		t.Fatalf("readSnpFile: %v", err)
	}
	if len(snps) != 1 {
		t.Fatalf("blank rsid should be dropped, got %d variants", len(snps))
	}
	if snps[0].Genotype != "AC" {
		t.Fatalf("unexpected genotype: %q", snps[0].Genotype)
	}
}

func TestReadSnpFileJSONMalformed(t *testing.T) {
	path := writeFile(t, "snps.json", `{"rsid":"rs1"}`)
	if _, err := readSnpFile(path); err == nil {
		t.Fatal("expected parse error for non-array json")
	}
}

func TestParseLifestyle(t *testing.T) {
	m, err := parseLifestyle([]string{"caffeine=2 cups/day", "sleep=7"})
	if err != nil {
		t.Fatalf("parseLifestyle: %v", err)
	}
	if m["caffeine"] != "2 cups/day" || m["sleep"] != "7" {
		t.Fatalf("unexpected map: %v", m)
	}

	if _, err := parseLifestyle([]string{"no-equals"}); err == nil {
		t.Fatal("expected error for missing separator")
	}
	if _, err := parseLifestyle([]string{"=value"}); err == nil {
		t.Fatal("expected error for empty key")
	}

	m, err = parseLifestyle(nil)
	if err != nil || m != nil {
		t.Fatalf("nil input should yield nil map, got %v (%v)", m, err)
	}
}

func TestParseSnpCSVHeaderOnly(t *testing.T) {
	if _, err := parseSnpCSV([]byte("rsid,genotype\n")); err == nil {
		t.Fatal("expected error for header-only file")
	}
}

func TestParseSnpCSVSkipsShortRows(t *testing.T) {
	snps, err := parseSnpCSV([]byte("note,rsid,genotype\nx,rs1,AA\nonly-one-field\n"))
	if err != nil {
		t.Fatalf("parseSnpCSV: %v", err)
	}
	if len(snps) != 1 || !strings.EqualFold(snps[0].RsID, "rs1") {
		t.Fatalf("unexpected variants: %+v", snps)
	}
}
