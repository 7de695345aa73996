package genetics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/genelens/genelens-cli/internal/percentile"
)

// SnpRecord is one observed variant.
type SnpRecord struct {
	RsID     string
	Genotype string
}

// InsightCard is the per-variant interpretation handed to report output.
type InsightCard struct {
	RsID            string   `json:"rsid"`
	Domain          string   `json:"domain"`
	Summary         string   `json:"summary"`
	Score           float64  `json:"score"`
	Percentile      *float64 `json:"percentile,omitempty"`
	Recommendations []string `json:"recommendations"`
}

// PeerComparison relates one score to the reference population.
type PeerComparison struct {
	Metric     string  `json:"metric"`
	Value      float64 `json:"value"`
	Percentile float64 `json:"percentile"`
	Label      string  `json:"label"`
}

// BioCard is the profile summary built from all cards.
type BioCard struct {
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle"`
	Badges     []string `json:"badges"`
	Highlights []string `json:"highlights"`
}

// Interpret resolves one SNP against the rule table. Unknown rsIDs get a
// generic card with a neutral score and no percentile; known rsIDs with an
// unlisted genotype fall back to the rule's reference genotype with a note.
func Interpret(snp SnpRecord, rules RuleTable, dist percentile.Table) InsightCard {
	rsid := strings.ToUpper(strings.TrimSpace(snp.RsID))
	genotype := NormalizeGenotype(snp.Genotype)

	rule, ok := rules[rsid]
	if !ok {
		return InsightCard{
			RsID:   rsid,
			Domain: "Genetic Variant",
			Summary: fmt.Sprintf("SNP %s with genotype %s detected. This variant may have functional significance, but specific interpretation requires additional research.",
				rsid, genotype),
			Score: 0.5,
			Recommendations: []string{
				"Consult with a genetic counselor or healthcare provider",
				"Review scientific literature for this variant",
				"Consider additional genetic testing if clinically relevant",
			},
		}
	}

	effect, known := rule.Genotypes[genotype]
	note := ""
	if !known {
		effect = rule.Genotypes[rule.Reference]
		note = fmt.Sprintf("Note: Genotype %s interpretation may vary. Showing reference interpretation.", genotype)
	}

	p := dist.Percentile(rule.TraitKey(), effect.Score)
	parts := []string{
		fmt.Sprintf("%s: %s", rule.Domain, effect.Interpretation),
		fmt.Sprintf("Gene: %s", rule.Gene),
		rule.Description,
	}
	if note != "" {
		parts = append(parts, note)
	}

	return InsightCard{
		RsID:            rsid,
		Domain:          rule.Domain,
		Summary:         strings.Join(parts, ". ") + ".",
		Score:           effect.Score,
		Percentile:      &p,
		Recommendations: effect.Recommendations,
	}
}

// PeerComparisons computes the overall average plus one entry per domain,
// ranked through the "peer" reference distribution. Domains come out in
// sorted order so reports are stable.
func PeerComparisons(cards []InsightCard, dist percentile.Table) []PeerComparison {
	if len(cards) == 0 {
		return nil
	}

	var total float64
	domainScores := map[string][]float64{}
	for _, c := range cards {
		total += c.Score
		domainScores[c.Domain] = append(domainScores[c.Domain], c.Score)
	}
	avg := total / float64(len(cards))

	out := []PeerComparison{{
		Metric:     "Overall Genetic Score",
		Value:      round2(avg),
		Percentile: round2(dist.Percentile("peer", avg)),
		Label:      "Average across all analyzed traits",
	}}

	domains := make([]string, 0, len(domainScores))
	for d := range domainScores {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	for _, d := range domains {
		scores := domainScores[d]
		var sum float64
		for _, s := range scores {
			sum += s
		}
		domainAvg := sum / float64(len(scores))
		out = append(out, PeerComparison{
			Metric:     d,
			Value:      round2(domainAvg),
			Percentile: round2(dist.Percentile("peer", domainAvg)),
			Label:      fmt.Sprintf("Average score in %s", d),
		})
	}
	return out
}

// BuildBioCard summarizes the cards and folds lifestyle fields into the
// highlights. Lifestyle values arrive as loosely-typed key-values.
func BuildBioCard(cards []InsightCard, lifestyle map[string]any) BioCard {
	if len(cards) == 0 {
		return BioCard{
			Title:      "Genetic Profile",
			Subtitle:   "No genetic variants analyzed",
			Highlights: []string{"Upload SNP data to generate your genetic profile"},
		}
	}

	var total float64
	domainCounts := map[string]int{}
	for _, c := range cards {
		total += c.Score
		domainCounts[c.Domain]++
	}
	avg := total / float64(len(cards))

	subtitle := fmt.Sprintf("Analysis of %d genetic %s across %d %s",
		len(cards), plural(len(cards), "variant"), len(domainCounts), plural(len(domainCounts), "domain"))

	// Badges: domains by descending card count, ties alphabetical, top 5.
	domains := make([]string, 0, len(domainCounts))
	for d := range domainCounts {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool {
		if domainCounts[domains[i]] != domainCounts[domains[j]] {
			return domainCounts[domains[i]] > domainCounts[domains[j]]
		}
		return domains[i] < domains[j]
	})
	if len(domains) > 5 {
		domains = domains[:5]
	}

	var highlights []string
	switch {
	case avg > 0.6:
		highlights = append(highlights, "Overall favorable genetic profile")
	case avg < 0.4:
		highlights = append(highlights, "Some genetic variants may require attention")
	default:
		highlights = append(highlights, "Balanced genetic profile")
	}

	// Most extreme cards (furthest from neutral) surface first.
	ranked := make([]InsightCard, len(cards))
	copy(ranked, cards)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Score-0.5) > math.Abs(ranked[j].Score-0.5)
	})
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	for _, c := range ranked {
		if c.Score > 0.7 {
			highlights = append(highlights, fmt.Sprintf("Strong positive signal in %s", c.Domain))
		} else if c.Score < 0.3 {
			highlights = append(highlights, fmt.Sprintf("Notable variant in %s", c.Domain))
		}
	}

	highlights = append(highlights, lifestyleHighlights(lifestyle)...)

	return BioCard{
		Title:      "Personal Genetic Profile",
		Subtitle:   subtitle,
		Badges:     domains,
		Highlights: highlights,
	}
}

// lifestyleHighlights coerces known lifestyle keys into display strings,
// skipping empty values. Keys come out in sorted order.
var lifestyleLabels = map[string]string{
	"exercise_frequency": "Exercise frequency",
	"caffeine_intake":    "Caffeine intake",
	"sleep_hours":        "Sleep",
	"diet":               "Diet",
	"smoking":            "Smoking",
}

func lifestyleHighlights(lifestyle map[string]any) []string {
	if len(lifestyle) == 0 {
		return nil
	}
	keys := make([]string, 0, len(lifestyle))
	for k := range lifestyle {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []string
	for _, k := range keys {
		v := cast.ToString(lifestyle[k])
		if v == "" {
			continue
		}
		label, ok := lifestyleLabels[k]
		if !ok {
			label = capitalize(strings.ReplaceAll(k, "_", " "))
		}
		out = append(out, fmt.Sprintf("%s: %s", label, v))
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
