package risk

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/leainsurance/travelrisk/pkg/money"
)

// Personas.
const (
	PersonaAdventure = "adventure"
	PersonaFamily    = "family"
	PersonaBusiness  = "business"
	PersonaLuxury    = "luxury"
	PersonaBudget    = "budget"
)

// PersonaProfile is the historical claim pattern of a traveller segment.
type PersonaProfile struct {
	Name               string   `json:"name"`
	HighRiskActivities []string `json:"high_risk_activities"`
	CommonClaims       []string `json:"common_claims"`
	AvgClaimAmount     float64  `json:"avg_claim_amount"`
	ClaimFrequency     float64  `json:"claim_frequency"`
}

var personaProfiles = map[string]PersonaProfile{
	PersonaAdventure: {
		Name:               PersonaAdventure,
		HighRiskActivities: []string{"skiing", "diving", "mountaineering", "bungee_jumping"},
		CommonClaims:       []string{"medical", "evacuation", "equipment"},
		AvgClaimAmount:     35000,
		ClaimFrequency:     0.23,
	},
	PersonaFamily: {
		Name:               PersonaFamily,
		HighRiskActivities: []string{"general", "hiking"},
		CommonClaims:       []string{"medical", "trip_cancellation", "baggage"},
		AvgClaimAmount:     8500,
		ClaimFrequency:     0.12,
	},
	PersonaBusiness: {
		Name:               PersonaBusiness,
		HighRiskActivities: []string{"general"},
		CommonClaims:       []string{"trip_cancellation", "baggage", "flight_delay"},
		AvgClaimAmount:     4200,
		ClaimFrequency:     0.08,
	},
	PersonaLuxury: {
		Name:               PersonaLuxury,
		HighRiskActivities: []string{"general", "spa", "dining"},
		CommonClaims:       []string{"trip_cancellation", "baggage", "medical"},
		AvgClaimAmount:     12000,
		ClaimFrequency:     0.10,
	},
	PersonaBudget: {
		Name:               PersonaBudget,
		HighRiskActivities: []string{"backpacking", "hostels"},
		CommonClaims:       []string{"baggage", "medical", "transport"},
		AvgClaimAmount:     3800,
		ClaimFrequency:     0.15,
	},
}

// skiInjuryClaim is the typical ski-injury claim quoted in adventure copy,
// in knowledge-base currency.
const skiInjuryClaim = 30000

const skiInjuryClaimPlaceholder = "{ski_injury_claim}"

type personaMessages struct {
	elevated string
	baseline string
}

// Only adventure, family and business have their own copy.
var personaCopy = map[string]personaMessages{
	PersonaAdventure: {
		elevated: "Adventure seekers like you face 2.3x higher medical claim rates! Most ski-related injuries in Japan exceed {ski_injury_claim}. Our Gold plan covers mountain rescue and specialized treatment.",
		baseline: "Adventure traveller detected! While your specific activities are lower risk, adventure travellers often have unexpected incidents. Consider enhanced coverage for peace of mind.",
	},
	PersonaFamily: {
		elevated: "Family travellers with your itinerary see increased medical needs. Children and seniors need extra protection - our plans cover all family members comprehensively.",
		baseline: "Perfect for family protection! Your trip has standard risk levels. Our family-friendly plans ensure everyone's covered without breaking the budget.",
	},
	PersonaBusiness: {
		elevated: "Business travellers in your destination face higher trip disruption risks. Flight delays and cancellations are 40% more likely. Enhanced coverage recommended.",
		baseline: "Business travel protection optimized! Your route has good reliability. Our plans focus on quick claims processing to minimize business disruption.",
	},
}

// PersonaRiskProfile is the customer-facing rendering of a PersonaProfile.
type PersonaRiskProfile struct {
	TypicalClaimFrequency string   `json:"typical_claim_frequency"`
	AverageClaimAmount    string   `json:"average_claim_amount"`
	CommonClaimTypes      []string `json:"common_claim_types"`
}

// PersonaInsights is a trip analysis enriched with persona-specific advice.
type PersonaInsights struct {
	RiskAnalysis

	Persona                  string             `json:"persona"`
	PersonaRiskProfile       PersonaRiskProfile `json:"persona_risk_profile"`
	HasHighRiskActivity      bool               `json:"has_high_risk_activity"`
	PersonalizedMessage      string             `json:"personalized_message"`
	RecommendedCoverageLevel CoverageTier       `json:"recommended_coverage_level"`
	RiskComparison           string             `json:"risk_comparison"`
}

// NormalizePersona maps unknown persona names to family.
func NormalizePersona(persona string) string {
	if _, ok := personaProfiles[persona]; ok {
		return persona
	}
	return PersonaFamily
}

// LookupPersona returns the profile for persona, falling back to family.
func LookupPersona(persona string) PersonaProfile {
	return personaProfiles[NormalizePersona(persona)].clone()
}

func (p PersonaProfile) clone() PersonaProfile {
	p.HighRiskActivities = slices.Clone(p.HighRiskActivities)
	p.CommonClaims = slices.Clone(p.CommonClaims)
	return p
}

// Personas lists every persona profile ordered by name.
func Personas() []PersonaProfile {
	out := make([]PersonaProfile, 0, len(personaProfiles))
	for _, p := range personaProfiles {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PersonaInsights analyzes trip and layers persona advice on top.
func (e *Engine) PersonaInsights(persona string, trip TripInput) PersonaInsights {
	persona = NormalizePersona(persona)
	profile := personaProfiles[persona]
	analysis := e.AnalyzeTrip(trip)

	// Only activities the caller actually listed count here, not the default.
	highRisk := false
	for _, a := range trip.Activities {
		if slices.Contains(profile.HighRiskActivities, a) {
			highRisk = true
			break
		}
	}

	return PersonaInsights{
		RiskAnalysis: analysis,
		Persona:      persona,
		PersonaRiskProfile: PersonaRiskProfile{
			TypicalClaimFrequency: fmt.Sprintf("%.1f%%", profile.ClaimFrequency*100),
			AverageClaimAmount:    money.Format(e.kb.Currency(), profile.AvgClaimAmount),
			CommonClaimTypes:      slices.Clone(profile.CommonClaims),
		},
		HasHighRiskActivity:      highRisk,
		PersonalizedMessage:      personaMessage(persona, highRisk || analysis.RiskScore > 2.0, e.kb.Currency()),
		RecommendedCoverageLevel: RecommendCoverageTier(persona, analysis.RiskScore),
		RiskComparison: fmt.Sprintf("Your risk is %.1fx higher than average %s travellers",
			analysis.RiskScore, persona),
	}
}

func personaMessage(persona string, elevated bool, currency money.Currency) string {
	msgs, ok := personaCopy[persona]
	if !ok {
		msgs = personaCopy[PersonaFamily]
	}
	msg := msgs.baseline
	if elevated {
		msg = msgs.elevated
	}
	return strings.ReplaceAll(msg, skiInjuryClaimPlaceholder, money.Format(currency, skiInjuryClaim))
}

// RecommendCoverageTier picks a plan tier; the first matching rule wins.
func RecommendCoverageTier(persona string, score float64) CoverageTier {
	switch {
	case persona == PersonaLuxury || score > 2.5:
		return TierPlatinum
	case persona == PersonaAdventure || score > 1.8:
		return TierGold
	case persona == PersonaBudget && score < 1.2:
		return TierSilver
	default:
		return TierGold
	}
}
