// Package metrics provides Prometheus metrics collection for travelrisk services
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "travelrisk"

// HTTP metrics
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"service", "method", "path"},
	)

	httpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
		[]string{"service"},
	)
)

// Risk scoring metrics
var (
	riskScoreHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_score",
			Help:      "Distribution of computed trip risk scores (1.0 = baseline)",
			Buckets:   []float64{0.5, 0.75, 1, 1.25, 1.5, 2, 2.5, 3, 4, 5, 7.5, 10},
		},
		[]string{"operation"}, // operation: analyze, persona, rank
	)

	riskAnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_analyses_total",
			Help:      "Total number of trip risk analyses by resulting level",
		},
		[]string{"operation", "level"},
	)

	personaInsightsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persona_insights_total",
			Help:      "Total number of persona insight requests",
		},
		[]string{"persona", "coverage_level"},
	)

	plansRankedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_ranked_total",
			Help:      "Total number of candidate plans re-ranked",
		},
	)

	planWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_risk_warnings_total",
			Help:      "Total number of ranked plans that carried a high-risk warning",
		},
	)
)

// Middleware returns a Gin middleware that records HTTP metrics.
// serviceName is used as the "service" label on all metrics.
func Middleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		if path == "/metrics" {
			c.Next()
			return
		}

		httpRequestsInFlight.WithLabelValues(serviceName).Inc()
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		httpRequestsTotal.WithLabelValues(serviceName, method, path, status).Inc()
		httpRequestDuration.WithLabelValues(serviceName, method, path).Observe(time.Since(start).Seconds())
		httpRequestsInFlight.WithLabelValues(serviceName).Dec()
	}
}

// Handler returns a gin.HandlerFunc that serves Prometheus metrics.
// Register this on the "/metrics" route.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordRiskAnalysis records one computed risk score and its level
func RecordRiskAnalysis(operation, level string, score float64) {
	riskScoreHistogram.WithLabelValues(operation).Observe(score)
	riskAnalysesTotal.WithLabelValues(operation, level).Inc()
}

// RecordPersonaInsight records a persona insight and the tier it recommended
func RecordPersonaInsight(persona, coverageLevel string) {
	personaInsightsTotal.WithLabelValues(persona, coverageLevel).Inc()
}

// RecordPlanRanking records a ranking run over plans candidates, warnings of
// which were flagged high-risk
func RecordPlanRanking(plans, warnings int) {
	plansRankedTotal.Add(float64(plans))
	planWarningsTotal.Add(float64(warnings))
}
