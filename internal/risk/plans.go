package risk

import (
	"maps"
	"math"
	"slices"

	json "github.com/goccy/go-json"
)

// Plan ranking defaults and limits.
const (
	DefaultMedicalCoverage = 50000
	DefaultPlanScore       = 50

	maxPlanScore = 100
	minPlanScore = 0

	highRiskScore          = 2.0
	highRiskMedicalMinimum = 100000
)

// Risk assessment labels attached to ranked plans.
const (
	AssessmentExcellent    = "Excellent coverage for your risk profile"
	AssessmentGood         = "Good coverage for your risk profile"
	AssessmentInsufficient = "May have insufficient coverage for your risk profile"

	HighRiskWarning = "High-risk activities detected. Consider higher medical coverage."
)

// PlanCandidate is an insurance plan offered for a trip. RankPlans fills in
// the RiskFitScore, RiskAssessment and RiskWarning fields. Fields the engine
// does not know about are kept in Extra and written back unchanged.
type PlanCandidate struct {
	ID       string             `json:"id,omitempty"`
	Name     string             `json:"name"`
	Tier     string             `json:"tier,omitempty"`
	Premium  float64            `json:"premium,omitempty"`
	Coverage map[string]float64 `json:"coverage,omitempty"`
	Score    *float64           `json:"score,omitempty"`

	RiskFitScore   float64 `json:"risk_fit_score"`
	RiskAssessment string  `json:"risk_assessment,omitempty"`
	RiskWarning    string  `json:"risk_warning,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// planFields has no methods, so encoding it skips PlanCandidate's codec.
type planFields PlanCandidate

var knownPlanFields = []string{
	"id", "name", "tier", "premium", "coverage", "score",
	"risk_fit_score", "risk_assessment", "risk_warning",
}

// UnmarshalJSON decodes the known fields and collects the rest into Extra.
func (p *PlanCandidate) UnmarshalJSON(data []byte) error {
	var fields planFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range knownPlanFields {
		delete(raw, k)
	}

	fields.Extra = nil
	if len(raw) > 0 {
		fields.Extra = raw
	}
	*p = PlanCandidate(fields)
	return nil
}

// MarshalJSON encodes the known fields merged with Extra. Known fields win
// over an Extra entry of the same name.
func (p PlanCandidate) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(planFields(p))
	if err != nil || len(p.Extra) == 0 {
		return known, err
	}

	merged := make(map[string]json.RawMessage, len(p.Extra)+len(knownPlanFields))
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range p.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// MedicalCoverage is the plan's medical sub-limit, DefaultMedicalCoverage when
// the plan does not state one.
func (p PlanCandidate) MedicalCoverage() float64 {
	if v, ok := p.Coverage["medical"]; ok {
		return v
	}
	return DefaultMedicalCoverage
}

// BaseScore is the plan's pre-existing suitability score.
func (p PlanCandidate) BaseScore() float64 {
	if p.Score != nil {
		return *p.Score
	}
	return DefaultPlanScore
}

// CoverageRatio compares medical coverage with the average similar claim. A
// zero average yields 1.0.
func CoverageRatio(medical, avgClaim float64) float64 {
	if avgClaim <= 0 {
		return 1.0
	}
	return medical / avgClaim
}

// RankPlans annotates copies of plans with a risk-fit score and returns them
// in descending risk-fit order. Equal scores keep their input order. The
// input slice is left untouched.
func RankPlans(plans []PlanCandidate, analysis RiskAnalysis) []PlanCandidate {
	ranked := make([]PlanCandidate, len(plans))
	for i, p := range plans {
		ranked[i] = annotatePlan(p, analysis)
	}

	slices.SortStableFunc(ranked, func(a, b PlanCandidate) int {
		switch {
		case a.RiskFitScore > b.RiskFitScore:
			return -1
		case a.RiskFitScore < b.RiskFitScore:
			return 1
		default:
			return 0
		}
	})
	return ranked
}

// EnhancePlans analyzes trip and ranks plans against the result.
func (e *Engine) EnhancePlans(plans []PlanCandidate, trip TripInput) ([]PlanCandidate, RiskAnalysis) {
	analysis := e.AnalyzeTrip(trip)
	return RankPlans(plans, analysis), analysis
}

func annotatePlan(p PlanCandidate, analysis RiskAnalysis) PlanCandidate {
	p.Coverage = maps.Clone(p.Coverage)
	p.Extra = maps.Clone(p.Extra)
	medical := p.MedicalCoverage()
	ratio := CoverageRatio(medical, analysis.AverageClaimAmount)
	base := p.BaseScore()

	var adjusted float64
	switch {
	case ratio >= 2.0:
		adjusted = base + 20
		p.RiskAssessment = AssessmentExcellent
	case ratio >= 1.5:
		adjusted = base + 10
		p.RiskAssessment = AssessmentGood
	default:
		adjusted = base - 15
		p.RiskAssessment = AssessmentInsufficient
	}
	p.RiskFitScore = math.Min(maxPlanScore, math.Max(minPlanScore, adjusted))

	p.RiskWarning = ""
	if analysis.RiskScore > highRiskScore && medical < highRiskMedicalMinimum {
		p.RiskWarning = HighRiskWarning
	}
	return p
}
