// Package risk scores travel-insurance risk from trip attributes and uses the
// score to recommend coverage and re-rank candidate plans.
package risk

import (
	"math"
	"strings"
	"time"
)

// RiskLevel is the categorical bucket of a risk score.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelStandard RiskLevel = "Standard"
	RiskLevelModerate RiskLevel = "Moderate"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelVeryHigh RiskLevel = "Very High"
)

// String returns the string representation of RiskLevel
func (r RiskLevel) String() string {
	return string(r)
}

// Trip defaults applied when the caller leaves a field out.
const (
	DefaultActivity = "general"
	DefaultAge      = 30
	DefaultDuration = 7
)

const (
	baselineTripDays   = 7
	perExtraDayPenalty = 0.05
)

// TripInput is the caller-supplied description of a trip. Every field is
// optional.
type TripInput struct {
	Destination   string   `json:"destination,omitempty"`
	Activities    []string `json:"activities,omitempty"`
	DepartureDate string   `json:"departure_date,omitempty"`
	Age           *int     `json:"age,omitempty"`
	Duration      *int     `json:"duration,omitempty"`
}

// RiskFactors is the breakdown of a risk score into its four multipliers and
// the keys they were resolved from.
type RiskFactors struct {
	Destination       string   `json:"destination"`
	Activities        []string `json:"activities"`
	Season            string   `json:"season"`
	AgeGroup          string   `json:"age_group"`
	DurationDays      int      `json:"duration_days"`
	DestinationSeason float64  `json:"destination_season_multiplier"`
	Activity          float64  `json:"activity_multiplier"`
	Age               float64  `json:"age_multiplier"`
	Duration          float64  `json:"duration_multiplier"`
}

// Product is the unrounded risk score.
func (f RiskFactors) Product() float64 {
	return f.DestinationSeason * f.Activity * f.Age * f.Duration
}

// ClaimTypeCount is a claim type and how many similar claims had it.
type ClaimTypeCount struct {
	ClaimType string `json:"claim_type"`
	Count     int    `json:"count"`
}

// RiskAnalysis is the result of analyzing one trip.
type RiskAnalysis struct {
	RiskScore           float64          `json:"risk_score"`
	RiskLevel           RiskLevel        `json:"risk_level"`
	SimilarClaimsCount  int              `json:"similar_claims_count"`
	AverageClaimAmount  float64          `json:"average_claim_amount"`
	HighFrequencyClaims []ClaimTypeCount `json:"high_frequency_claims"`
	Recommendations     []string         `json:"recommendations"`
	CoverageSuggestions []string         `json:"coverage_suggestions"`
	RiskSummary         string           `json:"risk_summary"`
	Factors             RiskFactors      `json:"factors"`
}

// Engine runs trip analysis, persona insights and plan ranking against a
// knowledge base. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	kb *KnowledgeBase
}

// NewEngine creates an engine over kb. A nil kb selects the embedded default.
func NewEngine(kb *KnowledgeBase) *Engine {
	if kb == nil {
		kb = DefaultKnowledgeBase()
	}
	return &Engine{kb: kb}
}

// KnowledgeBase returns the engine's knowledge base.
func (e *Engine) KnowledgeBase() *KnowledgeBase {
	return e.kb
}

// AnalyzeTrip scores a trip. Missing or malformed fields fall back to
// defaults; it never fails.
func (e *Engine) AnalyzeTrip(trip TripInput) RiskAnalysis {
	factors := e.resolveFactors(trip)
	score := factors.Product()

	similar := e.SimilarClaims(factors.Destination, factors.Activities, factors.Season, factors.AgeGroup)
	avg := AverageClaimAmount(similar)
	recs, coverage, summary := e.generateInsights(score, factors.Activities, len(similar), avg)

	return RiskAnalysis{
		RiskScore:           roundTo(score, 2),
		RiskLevel:           ClassifyRiskLevel(score),
		SimilarClaimsCount:  len(similar),
		AverageClaimAmount:  avg,
		HighFrequencyClaims: FrequentClaimTypes(similar, 3),
		Recommendations:     recs,
		CoverageSuggestions: coverage,
		RiskSummary:         summary,
		Factors:             factors,
	}
}

func (e *Engine) resolveFactors(trip TripInput) RiskFactors {
	destination := strings.TrimSpace(trip.Destination)
	if destination == "" {
		destination = e.kb.HomeDestination()
	}
	activities := trip.Activities
	if activities == nil {
		activities = []string{DefaultActivity}
	}
	age := DefaultAge
	if trip.Age != nil {
		age = *trip.Age
	}
	duration := DefaultDuration
	if trip.Duration != nil {
		duration = *trip.Duration
	}

	season := SeasonForDate(trip.DepartureDate)
	ageGroup := AgeGroupFor(age)
	model := e.kb.Model()

	return RiskFactors{
		Destination:       destination,
		Activities:        activities,
		Season:            season,
		AgeGroup:          ageGroup,
		DurationDays:      duration,
		DestinationSeason: model.DestinationMultiplier(destination, season),
		Activity:          maxActivityMultiplier(model, activities),
		Age:               model.AgeMultiplier(ageGroup),
		Duration:          DurationMultiplier(duration),
	}
}

// maxActivityMultiplier lets the riskiest listed activity dominate.
func maxActivityMultiplier(model *RiskModel, activities []string) float64 {
	if len(activities) == 0 {
		return neutralMultiplier
	}
	best := model.ActivityMultiplier(activities[0])
	for _, a := range activities[1:] {
		if m := model.ActivityMultiplier(a); m > best {
			best = m
		}
	}
	return best
}

// DurationMultiplier adds 5% per day beyond a 7-day trip. Shorter trips stay
// at 1.0.
func DurationMultiplier(days int) float64 {
	return math.Max(neutralMultiplier, 1+float64(days-baselineTripDays)*perExtraDayPenalty)
}

// ClassifyRiskLevel buckets a score; each threshold is inclusive on its lower
// bound.
func ClassifyRiskLevel(score float64) RiskLevel {
	switch {
	case score >= 3.0:
		return RiskLevelVeryHigh
	case score >= 2.0:
		return RiskLevelHigh
	case score >= 1.5:
		return RiskLevelModerate
	case score >= 1.0:
		return RiskLevelStandard
	default:
		return RiskLevelLow
	}
}

// Extended and basic ISO-8601 forms, with or without offset. Fractional
// seconds are accepted after any seconds field.
var departureLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
	"20060102T150405Z0700",
	"20060102T150405",
	"20060102T1504",
	"20060102",
}

// SeasonForDate maps an ISO-8601 departure date to a travel season. Empty or
// unparsable input yields SeasonAll.
func SeasonForDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return SeasonAll
	}
	for _, layout := range departureLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return SeasonForMonth(t.Month())
		}
	}
	return SeasonAll
}

// SeasonForMonth maps a calendar month to a travel season.
func SeasonForMonth(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}

// AgeGroupFor maps a traveller age to its risk group.
func AgeGroupFor(age int) string {
	switch {
	case age < 26:
		return AgeGroupYoungAdult
	case age < 51:
		return AgeGroupAdult
	case age < 66:
		return AgeGroupMiddleAged
	default:
		return AgeGroupSenior
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
