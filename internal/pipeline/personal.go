package pipeline

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/genelens/genelens-cli/internal/genetics"
	"github.com/genelens/genelens-cli/internal/percentile"
)

// PersonalReport is the complete output of the personal-genomics flow.
type PersonalReport struct {
	ID              string                    `json:"id"`
	GeneratedAt     time.Time                 `json:"generated_at"`
	Cards           []genetics.InsightCard    `json:"cards"`
	PeerComparisons []genetics.PeerComparison `json:"peer_comparisons"`
	BioCard         genetics.BioCard          `json:"bio_card"`
}

// Personal interprets a batch of SNPs against the configured rule and
// distribution tables. Unknown variants degrade to generic cards; the flow
// itself never fails.
func Personal(snps []genetics.SnpRecord, lifestyle map[string]any, rules genetics.RuleTable, dist percentile.Table, log *zap.Logger) *PersonalReport {
	if log == nil {
		log = zap.NewNop()
	}

	cards := make([]genetics.InsightCard, 0, len(snps))
	for _, snp := range snps {
		card := genetics.Interpret(snp, rules, dist)
		if card.Percentile == nil {
			log.Info("unknown variant interpreted generically", zap.String("rsid", card.RsID))
		}
		cards = append(cards, card)
	}

	report := &PersonalReport{
		ID:              uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		Cards:           cards,
		PeerComparisons: genetics.PeerComparisons(cards, dist),
		BioCard:         genetics.BuildBioCard(cards, lifestyle),
	}
	log.Info("personal analysis complete",
		zap.Int("variants", len(cards)),
		zap.Int("comparisons", len(report.PeerComparisons)))
	return report
}
