package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestAnalyzeTrip_JapanSkiingWinter(t *testing.T) {
	engine := NewEngine(nil)

	analysis := engine.AnalyzeTrip(TripInput{
		Destination:   "JP",
		Activities:    []string{"skiing"},
		DepartureDate: "2025-01-15",
		Age:           intPtr(30),
		Duration:      intPtr(7),
	})

	assert.Equal(t, 5.88, analysis.RiskScore)
	assert.Equal(t, RiskLevelVeryHigh, analysis.RiskLevel)
	assert.Equal(t, 5, analysis.SimilarClaimsCount)
	assert.InDelta(t, 24500, analysis.AverageClaimAmount, 1e-9)
	assert.Equal(t, []ClaimTypeCount{
		{ClaimType: "medical", Count: 3},
		{ClaimType: "evacuation", Count: 1},
		{ClaimType: "baggage_loss", Count: 1},
	}, analysis.HighFrequencyClaims)

	assert.Equal(t, []string{
		"Consider Platinum plan for comprehensive high-risk coverage",
		"Add adventure sports rider for off-piste coverage",
	}, analysis.Recommendations)
	assert.Equal(t, []string{
		"Medical coverage: SGD 150,000+",
		"Mountain rescue: SGD 10,000+",
	}, analysis.CoverageSuggestions)
	assert.Equal(t,
		"Based on 5 similar trips, 10% of travelers filed claims with average amount SGD 24,500. Your risk score is 5.9x baseline.",
		analysis.RiskSummary)

	assert.Equal(t, SeasonWinter, analysis.Factors.Season)
	assert.Equal(t, AgeGroupAdult, analysis.Factors.AgeGroup)
	assert.Equal(t, 2.1, analysis.Factors.DestinationSeason)
	assert.Equal(t, 2.8, analysis.Factors.Activity)
}

func TestAnalyzeTrip_Defaults(t *testing.T) {
	engine := NewEngine(nil)

	analysis := engine.AnalyzeTrip(TripInput{})

	assert.Equal(t, 1.0, analysis.RiskScore)
	assert.Equal(t, RiskLevelStandard, analysis.RiskLevel)
	assert.Equal(t, "SG", analysis.Factors.Destination)
	assert.Equal(t, []string{DefaultActivity}, analysis.Factors.Activities)
	assert.Equal(t, SeasonAll, analysis.Factors.Season)
	assert.Equal(t, AgeGroupAdult, analysis.Factors.AgeGroup)
	assert.Equal(t, DefaultDuration, analysis.Factors.DurationDays)

	assert.Equal(t, 3, analysis.SimilarClaimsCount)
	assert.InDelta(t, 11800.0/3, analysis.AverageClaimAmount, 1e-9)
	assert.Equal(t, []ClaimTypeCount{
		{ClaimType: "flight_delay", Count: 1},
		{ClaimType: "baggage_loss", Count: 1},
		{ClaimType: "medical", Count: 1},
	}, analysis.HighFrequencyClaims)
	assert.Equal(t, []string{"Silver plan provides adequate basic protection"}, analysis.Recommendations)
	assert.Equal(t, []string{"Medical coverage: SGD 50,000+"}, analysis.CoverageSuggestions)
	assert.Equal(t,
		"Based on 3 similar trips, 6% of travelers filed claims with average amount SGD 3,933. Your risk score is 1.0x baseline.",
		analysis.RiskSummary)
}

func TestAnalyzeTrip_NoSimilarClaims(t *testing.T) {
	engine := NewEngine(nil)

	analysis := engine.AnalyzeTrip(TripInput{
		Destination:   "AU",
		Activities:    []string{"surfing"},
		DepartureDate: "2025-07-01",
		Age:           intPtr(70),
	})

	assert.Equal(t, 0, analysis.SimilarClaimsCount)
	assert.Equal(t, 0.0, analysis.AverageClaimAmount)
	assert.Empty(t, analysis.HighFrequencyClaims)
	// 1.0 (unknown destination) x 1.8 x 1.4
	assert.Equal(t, 2.52, analysis.RiskScore)
	assert.Equal(t, RiskLevelHigh, analysis.RiskLevel)
	assert.Equal(t, "Consider Platinum plan for comprehensive high-risk coverage", analysis.Recommendations[0])
	assert.Equal(t,
		"Limited historical data for this trip type. Risk score is 2.5x baseline based on destination and activities.",
		analysis.RiskSummary)
}

func TestAnalyzeTrip_DivingRider(t *testing.T) {
	analysis := NewEngine(nil).AnalyzeTrip(TripInput{Destination: "TH", Activities: []string{"diving", "general"}, DepartureDate: "2025-07-10"})

	// 1.8 x 2.2
	assert.Equal(t, 3.96, analysis.RiskScore)
	assert.Contains(t, analysis.Recommendations, "Ensure hyperbaric chamber treatment is covered")
	assert.Contains(t, analysis.CoverageSuggestions, "Decompression treatment: SGD 25,000+")
	assert.NotContains(t, analysis.Recommendations, "Add adventure sports rider for off-piste coverage")
}

func TestAnalyzeTrip_ScoreIsProductOfFactors(t *testing.T) {
	engine := NewEngine(nil)
	trips := []TripInput{
		{},
		{Destination: "US", Activities: []string{"business"}, DepartureDate: "2025-10-01", Age: intPtr(45), Duration: intPtr(3)},
		{Destination: "EU", Activities: []string{"hiking", "general"}, DepartureDate: "2025-04-20", Age: intPtr(70), Duration: intPtr(21)},
		{Destination: "JP", Activities: []string{"skiing", "snowboarding"}, DepartureDate: "2025-02-01", Age: intPtr(22), Duration: intPtr(10)},
		{Destination: "XX", Activities: []string{"unknown"}, DepartureDate: "garbage", Age: intPtr(0), Duration: intPtr(0)},
	}

	for _, trip := range trips {
		analysis := engine.AnalyzeTrip(trip)
		f := analysis.Factors
		for _, m := range []float64{f.DestinationSeason, f.Activity, f.Age, f.Duration} {
			assert.GreaterOrEqual(t, m, 0.0)
		}
		assert.GreaterOrEqual(t, f.Duration, 1.0)
		assert.InDelta(t, f.DestinationSeason*f.Activity*f.Age*f.Duration, f.Product(), 1e-12)
		assert.InDelta(t, f.Product(), analysis.RiskScore, 0.005)
		assert.Equal(t, ClassifyRiskLevel(f.Product()), analysis.RiskLevel)
	}
}

func TestAnalyzeTrip_RiskiestActivityDominates(t *testing.T) {
	engine := NewEngine(nil)

	single := engine.AnalyzeTrip(TripInput{Destination: "NZ", Activities: []string{"mountaineering"}})
	mixed := engine.AnalyzeTrip(TripInput{Destination: "NZ", Activities: []string{"general", "mountaineering", "hiking"}})

	assert.Equal(t, 3.5, mixed.Factors.Activity)
	assert.Equal(t, single.RiskScore, mixed.RiskScore)
}

func TestAnalyzeTrip_EmptyActivityList(t *testing.T) {
	analysis := NewEngine(nil).AnalyzeTrip(TripInput{Activities: []string{}})

	assert.Equal(t, 1.0, analysis.Factors.Activity)
	assert.Empty(t, analysis.Factors.Activities)
}

func TestAnalyzeTrip_DestinationSeasonFallback(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name     string
		trip     TripInput
		expected float64
	}{
		{"known destination and season", TripInput{Destination: "TH", DepartureDate: "2025-07-01"}, 1.8},
		{"unparsable date uses all", TripInput{Destination: "JP", DepartureDate: "next winter"}, 1.0},
		{"season missing from table uses all", TripInput{Destination: "SG", DepartureDate: "2025-01-01"}, 1.0},
		{"unknown destination", TripInput{Destination: "ZZ", DepartureDate: "2025-01-01"}, 1.0},
		{"blank destination is home", TripInput{Destination: "   ", DepartureDate: "2025-01-01"}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, engine.AnalyzeTrip(tt.trip).Factors.DestinationSeason)
		})
	}
}

func TestDurationMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, DurationMultiplier(7))
	assert.InDelta(t, 1.35, DurationMultiplier(14), 1e-9)
	assert.Equal(t, 1.0, DurationMultiplier(3))
	assert.Equal(t, 1.0, DurationMultiplier(0))
	assert.Equal(t, 1.0, DurationMultiplier(-5))
	assert.InDelta(t, 1.05, DurationMultiplier(8), 1e-9)

	for d := 0; d < 60; d++ {
		assert.GreaterOrEqual(t, DurationMultiplier(d+1), DurationMultiplier(d))
	}
}

func TestClassifyRiskLevel(t *testing.T) {
	tests := []struct {
		score    float64
		expected RiskLevel
	}{
		{0, RiskLevelLow},
		{0.99, RiskLevelLow},
		{1.0, RiskLevelStandard},
		{1.49, RiskLevelStandard},
		{1.5, RiskLevelModerate},
		{1.99, RiskLevelModerate},
		{2.0, RiskLevelHigh},
		{2.99, RiskLevelHigh},
		{3.0, RiskLevelVeryHigh},
		{12, RiskLevelVeryHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyRiskLevel(tt.score), "score %v", tt.score)
	}
}

func TestClassifyRiskLevel_UsesUnroundedScore(t *testing.T) {
	// 1.4996 rounds to 1.50 but is still Standard.
	assert.Equal(t, RiskLevelStandard, ClassifyRiskLevel(1.4996))
	assert.Equal(t, 1.5, roundTo(1.4996, 2))
}

func TestSeasonForDate(t *testing.T) {
	tests := []struct {
		date     string
		expected string
	}{
		{"2025-12-01", SeasonWinter},
		{"2025-01-15", SeasonWinter},
		{"2025-02-28", SeasonWinter},
		{"2025-03-01", SeasonSpring},
		{"2025-05-31", SeasonSpring},
		{"2025-06-01", SeasonSummer},
		{"2025-08-31", SeasonSummer},
		{"2025-09-01", SeasonAutumn},
		{"2025-11-30", SeasonAutumn},
		{"2025-07-04T09:30:00Z", SeasonSummer},
		{"2025-07-04T09:30:00+08:00", SeasonSummer},
		{"2025-04-10T09:30:00", SeasonSpring},
		{"2025-04-10T09:30", SeasonSpring},
		{"2025-10-10 09:30:00", SeasonAutumn},
		{"2024-01-15T10:00:00+0800", SeasonWinter},
		{"2024-01-15T10:00:00.250+0800", SeasonWinter},
		{"2024-04-15T10:00+08:00", SeasonSpring},
		{"2024-01-15 10:00", SeasonWinter},
		{"2024-07-15 10:00:00+08:00", SeasonSummer},
		{"20240115", SeasonWinter},
		{"20240715T100000", SeasonSummer},
		{"20241015T100000+0800", SeasonAutumn},
		{"", SeasonAll},
		{"tomorrow", SeasonAll},
		{"2025-13-01", SeasonAll},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.expected, SeasonForDate(tt.date))
		})
	}
}

func TestSeasonForMonth_CoversEveryMonth(t *testing.T) {
	counts := map[string]int{}
	for m := time.January; m <= time.December; m++ {
		counts[SeasonForMonth(m)]++
	}
	require.Len(t, counts, 4)
	for _, n := range counts {
		assert.Equal(t, 3, n)
	}
}

func TestAgeGroupFor(t *testing.T) {
	tests := []struct {
		age      int
		expected string
	}{
		{0, AgeGroupYoungAdult},
		{25, AgeGroupYoungAdult},
		{26, AgeGroupAdult},
		{50, AgeGroupAdult},
		{51, AgeGroupMiddleAged},
		{65, AgeGroupMiddleAged},
		{66, AgeGroupSenior},
		{99, AgeGroupSenior},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, AgeGroupFor(tt.age), "age %d", tt.age)
	}
}

func TestNewEngine_NilUsesEmbeddedKnowledgeBase(t *testing.T) {
	engine := NewEngine(nil)
	require.NotNil(t, engine.KnowledgeBase())
	assert.Equal(t, "SG", engine.KnowledgeBase().HomeDestination())
}
