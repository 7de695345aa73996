// Package genetics interprets SNP genotypes through a trait-rule table and
// projects the interpretations into insight cards, peer comparisons, and a
// profile bio card.
package genetics

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// GenotypeEffect is one genotype's interpretation under a rule.
type GenotypeEffect struct {
	Interpretation  string   `yaml:"interpretation"`
	Score           float64  `yaml:"score"`
	Recommendations []string `yaml:"recommendations"`
}

// Rule interprets one rsID. Genotype keys are normalized (uppercase, allele
// pair sorted) so "GA" and "AG" resolve to the same effect. Reference names
// the genotype used when an observed genotype has no entry.
type Rule struct {
	Domain      string                    `yaml:"domain"`
	Gene        string                    `yaml:"gene"`
	Description string                    `yaml:"description"`
	Reference   string                    `yaml:"reference,omitempty"`
	Genotypes   map[string]GenotypeEffect `yaml:"genotypes"`
}

// RuleTable maps uppercase rsIDs to rules. Built once at startup, read-only
// afterwards.
type RuleTable map[string]Rule

// NormalizeGenotype uppercases a genotype and sorts a two-letter allele pair
// so lookup is order-insensitive.
func NormalizeGenotype(g string) string {
	g = strings.ToUpper(strings.TrimSpace(g))
	if len(g) == 2 && g[0] > g[1] {
		return string([]byte{g[1], g[0]})
	}
	return g
}

// normalizeRule canonicalizes genotype keys and picks a deterministic
// reference genotype when none is declared.
func normalizeRule(r Rule) Rule {
	genotypes := make(map[string]GenotypeEffect, len(r.Genotypes))
	for g, eff := range r.Genotypes {
		genotypes[NormalizeGenotype(g)] = eff
	}
	r.Genotypes = genotypes
	if r.Reference != "" {
		r.Reference = NormalizeGenotype(r.Reference)
	}
	if _, ok := genotypes[r.Reference]; !ok {
		keys := make([]string, 0, len(genotypes))
		for g := range genotypes {
			keys = append(keys, g)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			r.Reference = keys[0]
		}
	}
	return r
}

// TraitKey converts a rule domain to the percentile-table trait key.
func (r Rule) TraitKey() string {
	return strings.ReplaceAll(strings.ToLower(r.Domain), " ", "_")
}

// BuiltinRules returns the shipped rule table for the five curated variants.
func BuiltinRules() RuleTable {
	raw := RuleTable{
		"RS762551": {
			Domain:      "Caffeine Metabolism",
			Gene:        "CYP1A2",
			Description: "CYP1A2 enzyme activity affects caffeine metabolism speed",
			Reference:   "AA",
			Genotypes: map[string]GenotypeEffect{
				"AA": {
					Interpretation: "Fast caffeine metabolizer",
					Score:          0.8,
					Recommendations: []string{
						"You metabolize caffeine quickly",
						"May tolerate higher caffeine intake",
						"Caffeine effects may be shorter-lived",
					},
				},
				"AC": {
					Interpretation: "Intermediate caffeine metabolizer",
					Score:          0.5,
					Recommendations: []string{
						"Moderate caffeine metabolism",
						"Standard caffeine recommendations apply",
						"Monitor your response to caffeine",
					},
				},
				"CC": {
					Interpretation: "Slow caffeine metabolizer",
					Score:          0.2,
					Recommendations: []string{
						"You metabolize caffeine slowly",
						"Consider limiting caffeine intake, especially in afternoon",
						"May experience longer-lasting effects from caffeine",
						"Higher risk of sleep disruption from caffeine",
					},
				},
			},
		},
		"RS4988235": {
			Domain:      "Lactose Tolerance",
			Gene:        "LCT",
			Description: "Lactase persistence affects ability to digest lactose",
			Reference:   "CC",
			Genotypes: map[string]GenotypeEffect{
				"CC": {
					Interpretation: "Lactose tolerant",
					Score:          0.9,
					Recommendations: []string{
						"You can digest lactose well",
						"No need to avoid dairy products",
						"Lactose intolerance is unlikely",
					},
				},
				"CT": {
					Interpretation: "Partial lactose tolerance",
					Score:          0.6,
					Recommendations: []string{
						"Moderate lactose tolerance",
						"May tolerate small amounts of dairy",
						"Monitor symptoms after dairy consumption",
					},
				},
				"TT": {
					Interpretation: "Lactose intolerant",
					Score:          0.1,
					Recommendations: []string{
						"Likely lactose intolerant",
						"Consider limiting dairy intake",
						"Try lactose-free alternatives",
						"Monitor for digestive symptoms",
					},
				},
			},
		},
		"RS7412": {
			Domain:      "Cardiovascular Health",
			Gene:        "APOE",
			Description: "APOE ε2 variant associated with cardiovascular health",
			Reference:   "CC",
			Genotypes: map[string]GenotypeEffect{
				"CC": {
					Interpretation: "APOE ε2/ε2 - Lower cardiovascular risk",
					Score:          0.85,
					Recommendations: []string{
						"Favorable APOE profile for cardiovascular health",
						"Continue heart-healthy lifestyle",
						"Regular cardiovascular monitoring recommended",
					},
				},
				"CT": {
					Interpretation: "APOE ε2/ε3 - Moderate cardiovascular risk",
					Score:          0.6,
					Recommendations: []string{
						"Standard cardiovascular risk profile",
						"Maintain heart-healthy diet and exercise",
						"Regular health checkups recommended",
					},
				},
				"TT": {
					Interpretation: "APOE ε3/ε3 - Standard cardiovascular risk",
					Score:          0.5,
					Recommendations: []string{
						"Standard cardiovascular risk profile",
						"Follow general heart health guidelines",
						"Regular monitoring recommended",
					},
				},
			},
		},
		"RS1800566": {
			Domain:      "Drug Metabolism",
			Gene:        "CYP2D6",
			Description: "CYP2D6 enzyme affects metabolism of many medications",
			Reference:   "GG",
			Genotypes: map[string]GenotypeEffect{
				"GG": {
					Interpretation: "Normal CYP2D6 metabolizer",
					Score:          0.7,
					Recommendations: []string{
						"Normal drug metabolism",
						"Standard medication dosages typically appropriate",
						"Discuss with healthcare provider for medication adjustments",
					},
				},
				"AG": {
					Interpretation: "Intermediate CYP2D6 metabolizer",
					Score:          0.5,
					Recommendations: []string{
						"Moderate drug metabolism",
						"May require adjusted dosages for some medications",
						"Consult healthcare provider about pharmacogenetics",
					},
				},
				"AA": {
					Interpretation: "Poor CYP2D6 metabolizer",
					Score:          0.3,
					Recommendations: []string{
						"Reduced drug metabolism",
						"May require lower dosages for some medications",
						"Important to discuss with healthcare provider",
						"Consider pharmacogenetic testing for medications",
					},
				},
			},
		},
		"RS1042713": {
			Domain:      "Exercise Response",
			Gene:        "ADRB2",
			Description: "Beta-2 adrenergic receptor affects exercise performance",
			Reference:   "GG",
			Genotypes: map[string]GenotypeEffect{
				"GG": {
					Interpretation: "Enhanced exercise response",
					Score:          0.75,
					Recommendations: []string{
						"Favorable genetics for endurance exercise",
						"May respond well to aerobic training",
						"Consider endurance-focused training programs",
					},
				},
				"AG": {
					Interpretation: "Moderate exercise response",
					Score:          0.5,
					Recommendations: []string{
						"Standard exercise response",
						"Balanced training approach recommended",
						"Both strength and cardio training beneficial",
					},
				},
				"AA": {
					Interpretation: "Standard exercise response",
					Score:          0.45,
					Recommendations: []string{
						"Standard exercise genetics",
						"Consistent training is key",
						"Focus on progressive overload",
					},
				},
			},
		},
	}
	out := make(RuleTable, len(raw))
	for rsid, r := range raw {
		out[rsid] = normalizeRule(r)
	}
	return out
}

// LoadRules merges a YAML override file over the built-in rules. Rules in the
// file replace same-keyed builtins; the rest survive.
func LoadRules(path string) (RuleTable, error) {
	table := BuiltinRules()
	if path == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule table: %w", err)
	}
	var override map[string]Rule
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse rule table: %w", err)
	}
	for rsid, r := range override {
		if len(r.Genotypes) == 0 {
			return nil, fmt.Errorf("rule %s has no genotypes", rsid)
		}
		if r.Domain == "" {
			return nil, fmt.Errorf("rule %s has no domain", rsid)
		}
		table[strings.ToUpper(strings.TrimSpace(rsid))] = normalizeRule(r)
	}
	return table, nil
}

// RsIDs lists the table's keys in sorted order.
func (t RuleTable) RsIDs() []string {
	out := make([]string, 0, len(t))
	for rsid := range t {
		out = append(out, rsid)
	}
	sort.Strings(out)
	return out
}
