package risk

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/leainsurance/travelrisk/internal/common/logger"
	"github.com/leainsurance/travelrisk/internal/metrics"
	"github.com/leainsurance/travelrisk/internal/middleware"
)

const tracerName = "github.com/leainsurance/travelrisk/internal/risk"

// Metric operation labels
const (
	opAnalyze = "analyze"
	opPersona = "persona"
	opRank    = "rank"
)

// Service exposes the engine to transports, adding logging, tracing and
// metrics around every operation.
type Service struct {
	engine *Engine
	logger *zap.Logger
	tracer trace.Tracer
}

// NewService creates a new risk service
func NewService(engine *Engine, logger *zap.Logger) *Service {
	if engine == nil {
		engine = NewEngine(nil)
	}
	return &Service{
		engine: engine,
		logger: logger.With(zap.String("component", "risk")),
		tracer: otel.Tracer(tracerName),
	}
}

// Engine returns the underlying engine
func (s *Service) Engine() *Engine {
	return s.engine
}

// Analyze scores a trip
func (s *Service) Analyze(ctx context.Context, trip TripInput) RiskAnalysis {
	ctx, span := s.tracer.Start(ctx, "risk.Analyze", trace.WithAttributes(tripAttributes(trip)...))
	defer span.End()

	analysis := s.engine.AnalyzeTrip(trip)
	s.observe(ctx, span, opAnalyze, analysis)
	return analysis
}

// PersonaInsights scores a trip and adds persona advice
func (s *Service) PersonaInsights(ctx context.Context, persona string, trip TripInput) PersonaInsights {
	ctx, span := s.tracer.Start(ctx, "risk.PersonaInsights", trace.WithAttributes(tripAttributes(trip)...))
	defer span.End()

	insights := s.engine.PersonaInsights(persona, trip)
	span.SetAttributes(
		attribute.String("risk.persona", insights.Persona),
		attribute.String("risk.coverage_level", string(insights.RecommendedCoverageLevel)),
	)
	s.observe(ctx, span, opPersona, insights.RiskAnalysis)
	metrics.RecordPersonaInsight(insights.Persona, string(insights.RecommendedCoverageLevel))

	if insights.Persona != persona {
		s.requestLogger(ctx).Debug("Unknown persona, using default profile",
			zap.String("requested", persona), zap.String("persona", insights.Persona))
	}
	return insights
}

// RankPlans ranks plans against analysis, or against a fresh analysis of
// trip when analysis is nil.
func (s *Service) RankPlans(ctx context.Context, plans []PlanCandidate, analysis *RiskAnalysis, trip TripInput) ([]PlanCandidate, RiskAnalysis) {
	ctx, span := s.tracer.Start(ctx, "risk.RankPlans", trace.WithAttributes(attribute.Int("risk.plan_count", len(plans))))
	defer span.End()

	var base RiskAnalysis
	if analysis != nil {
		base = *analysis
	} else {
		base = s.Analyze(ctx, trip)
	}

	ranked := RankPlans(plans, base)

	warnings := 0
	for _, p := range ranked {
		if p.RiskWarning != "" {
			warnings++
		}
	}
	span.SetAttributes(attribute.Int("risk.plan_warnings", warnings))
	metrics.RecordPlanRanking(len(ranked), warnings)

	s.requestLogger(ctx).Debug("Ranked plans",
		zap.Int("plans", len(ranked)),
		zap.Int("warnings", warnings),
		zap.Float64("risk_score", base.RiskScore))
	return ranked, base
}

// Personas lists the persona profiles
func (s *Service) Personas() []PersonaProfile {
	return Personas()
}

// Model summarizes the knowledge base
func (s *Service) Model() Summary {
	return s.engine.KnowledgeBase().Summary()
}

// requestLogger tags the component logger with the request id and trace
// context carried by ctx.
func (s *Service) requestLogger(ctx context.Context) *zap.Logger {
	log := logger.WithTraceContext(s.logger, ctx)
	if requestID := middleware.GetRequestIDFromContext(ctx); requestID != "" {
		log = logger.WithRequestID(log, requestID)
	}
	return log
}

func (s *Service) observe(ctx context.Context, span trace.Span, operation string, analysis RiskAnalysis) {
	span.SetAttributes(
		attribute.Float64("risk.score", analysis.RiskScore),
		attribute.String("risk.level", analysis.RiskLevel.String()),
		attribute.Int("risk.similar_claims", analysis.SimilarClaimsCount),
	)
	metrics.RecordRiskAnalysis(operation, analysis.RiskLevel.String(), analysis.RiskScore)

	s.requestLogger(ctx).Debug("Trip analyzed",
		zap.String("operation", operation),
		zap.String("destination", analysis.Factors.Destination),
		zap.String("season", analysis.Factors.Season),
		zap.Float64("risk_score", analysis.RiskScore),
		zap.String("risk_level", analysis.RiskLevel.String()))
}

func tripAttributes(trip TripInput) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("trip.destination", trip.Destination),
		attribute.StringSlice("trip.activities", trip.Activities),
	}
	if trip.Duration != nil {
		attrs = append(attrs, attribute.Int("trip.duration", *trip.Duration))
	}
	return attrs
}
