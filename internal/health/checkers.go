package health

import (
	"context"
	"fmt"
	"time"

	"github.com/leainsurance/travelrisk/internal/risk"
)

// KnowledgeBaseChecker verifies the risk engine can score a reference trip
// against a non-empty knowledge base.
type KnowledgeBaseChecker struct {
	engine *risk.Engine
	probe  risk.TripInput
}

// NewKnowledgeBaseChecker creates a critical checker over engine
func NewKnowledgeBaseChecker(engine *risk.Engine) *KnowledgeBaseChecker {
	return &KnowledgeBaseChecker{
		engine: engine,
		probe:  risk.TripInput{Activities: []string{risk.DefaultActivity}},
	}
}

// Name returns the checker name
func (k *KnowledgeBaseChecker) Name() string {
	return "knowledge_base"
}

// IsCritical returns true; the service cannot score without a knowledge base
func (k *KnowledgeBaseChecker) IsCritical() bool {
	return true
}

// Check scores the probe trip and reports the knowledge base size
func (k *KnowledgeBaseChecker) Check(ctx context.Context) ComponentStatus {
	start := time.Now()
	status := k.check()
	status.LatencyMS = float64(time.Since(start).Microseconds()) / 1000
	status.CheckedAt = time.Now().UTC().Format(time.RFC3339)
	return status
}

func (k *KnowledgeBaseChecker) check() ComponentStatus {
	if k.engine == nil || k.engine.KnowledgeBase() == nil {
		return ComponentStatus{Status: StatusDown, Details: "no knowledge base loaded"}
	}

	summary := k.engine.KnowledgeBase().Summary()
	if summary.ClaimCount == 0 {
		return ComponentStatus{Status: StatusDegraded, Details: "knowledge base has no claims"}
	}

	analysis := k.engine.AnalyzeTrip(k.probe)
	if analysis.RiskScore <= 0 {
		return ComponentStatus{Status: StatusDown, Details: fmt.Sprintf("reference trip scored %.2f", analysis.RiskScore)}
	}

	return ComponentStatus{
		Status: StatusUp,
		Details: fmt.Sprintf("%d claims, %d destinations, %d activities",
			summary.ClaimCount, len(summary.Destinations), len(summary.Activities)),
	}
}
