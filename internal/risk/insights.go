package risk

import (
	"fmt"
	"slices"

	"github.com/leainsurance/travelrisk/pkg/money"
)

// CoverageTier is a plan tier we recommend.
type CoverageTier string

const (
	TierSilver   CoverageTier = "Silver"
	TierGold     CoverageTier = "Gold"
	TierPlatinum CoverageTier = "Platinum"
)

// Minimum coverage suggestions, in knowledge-base currency units.
const (
	platinumMedicalMinimum = 150000
	goldMedicalMinimum     = 100000
	silverMedicalMinimum   = 50000
	mountainRescueMinimum  = 10000
	decompressionMinimum   = 25000
)

// illustrativeTripSample is the denominator of the claim-frequency figure in
// the summary. It is a fixed heuristic, not derived from the claims sample.
const illustrativeTripSample = 50

func (e *Engine) generateInsights(score float64, activities []string, claimCount int, avgClaim float64) (recs, coverage []string, summary string) {
	cur := e.kb.Currency()

	switch {
	case score > 2.5:
		recs = append(recs, "Consider Platinum plan for comprehensive high-risk coverage")
		coverage = append(coverage, "Medical coverage: "+money.Format(cur, platinumMedicalMinimum)+"+")
	case score > 1.8:
		recs = append(recs, "Gold plan recommended for enhanced protection")
		coverage = append(coverage, "Medical coverage: "+money.Format(cur, goldMedicalMinimum)+"+")
	default:
		recs = append(recs, "Silver plan provides adequate basic protection")
		coverage = append(coverage, "Medical coverage: "+money.Format(cur, silverMedicalMinimum)+"+")
	}

	if slices.Contains(activities, "skiing") || slices.Contains(activities, "snowboarding") {
		recs = append(recs, "Add adventure sports rider for off-piste coverage")
		coverage = append(coverage, "Mountain rescue: "+money.Format(cur, mountainRescueMinimum)+"+")
	}
	if slices.Contains(activities, "diving") {
		recs = append(recs, "Ensure hyperbaric chamber treatment is covered")
		coverage = append(coverage, "Decompression treatment: "+money.Format(cur, decompressionMinimum)+"+")
	}

	if claimCount > 0 {
		summary = fmt.Sprintf(
			"Based on %d similar trips, %d%% of travelers filed claims with average amount %s. Your risk score is %.1fx baseline.",
			claimCount, claimCount*100/illustrativeTripSample, money.Format(cur, avgClaim), score)
	} else {
		summary = fmt.Sprintf(
			"Limited historical data for this trip type. Risk score is %.1fx baseline based on destination and activities.",
			score)
	}

	return recs, coverage, summary
}
