package risk

import (
	"slices"
)

// Match weights for similar-claim retrieval. A claim needs at least one
// primary match plus a secondary one, or both primaries.
const (
	destinationMatchWeight = 2
	activityMatchWeight    = 2
	seasonMatchWeight      = 1
	ageGroupMatchWeight    = 1
	similarityThreshold    = 3
)

// MatchScore rates how closely a historical claim resembles a trip.
func MatchScore(claim ClaimRecord, destination string, activities []string, season, ageGroup string) int {
	score := 0
	if claim.Destination == destination {
		score += destinationMatchWeight
	}
	if slices.Contains(activities, claim.Activity) {
		score += activityMatchWeight
	}
	if claim.Season == season || claim.Season == SeasonAll {
		score += seasonMatchWeight
	}
	if claim.AgeGroup == ageGroup || claim.AgeGroup == AgeGroupAll {
		score += ageGroupMatchWeight
	}
	return score
}

// SimilarClaims returns, in knowledge-base order, the claims whose match
// score reaches the similarity threshold.
func (e *Engine) SimilarClaims(destination string, activities []string, season, ageGroup string) []ClaimRecord {
	var similar []ClaimRecord
	for _, c := range e.kb.claims {
		if MatchScore(c, destination, activities, season, ageGroup) >= similarityThreshold {
			similar = append(similar, c)
		}
	}
	return similar
}

// AverageClaimAmount is the mean amount of claims, 0 for none.
func AverageClaimAmount(claims []ClaimRecord) float64 {
	if len(claims) == 0 {
		return 0
	}
	var total float64
	for _, c := range claims {
		total += c.Amount
	}
	return total / float64(len(claims))
}

// FrequentClaimTypes returns up to limit claim types ordered by descending
// count. Equal counts keep the order in which the type first appeared.
func FrequentClaimTypes(claims []ClaimRecord, limit int) []ClaimTypeCount {
	counts := make([]ClaimTypeCount, 0)
	index := make(map[string]int)
	for _, c := range claims {
		if i, ok := index[c.ClaimType]; ok {
			counts[i].Count++
			continue
		}
		index[c.ClaimType] = len(counts)
		counts = append(counts, ClaimTypeCount{ClaimType: c.ClaimType, Count: 1})
	}

	slices.SortStableFunc(counts, func(a, b ClaimTypeCount) int {
		return b.Count - a.Count
	})

	if limit >= 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
