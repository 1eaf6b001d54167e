// Package health provides liveness, readiness and detailed health endpoints
// for travelrisk services.
package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Component states
const (
	StatusUp       = "up"
	StatusDegraded = "degraded"
	StatusDown     = "down"
)

const checkTimeout = 5 * time.Second

// ComponentStatus represents the health status of a single component
type ComponentStatus struct {
	Status    string  `json:"status"`
	LatencyMS float64 `json:"latency_ms"`
	Details   string  `json:"details,omitempty"`
	CheckedAt string  `json:"checked_at"`
}

// HealthResponse is the response structure for health checks
type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime,omitempty"`
	CheckedAt  string                     `json:"checked_at"`
}

// HealthChecker is implemented by every component the service reports on
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) ComponentStatus
	// IsCritical marks components whose failure makes the service not ready
	IsCritical() bool
}

// HealthService aggregates registered health checkers
type HealthService struct {
	logger    *zap.Logger
	startTime time.Time

	mu       sync.RWMutex
	checkers []HealthChecker
	version  string
}

// NewHealthService creates a new HealthService
func NewHealthService(logger *zap.Logger) *HealthService {
	return &HealthService{
		logger:    logger.With(zap.String("component", "health")),
		startTime: time.Now(),
	}
}

// SetVersion sets the application version reported in health responses
func (h *HealthService) SetVersion(version string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.version = version
}

// RegisterCheck adds a new health checker to the service
func (h *HealthService) RegisterCheck(checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, checker)
	h.logger.Info("Registered health checker",
		zap.String("name", checker.Name()),
		zap.Bool("critical", checker.IsCritical()))
}

func (h *HealthService) snapshot() ([]HealthChecker, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]HealthChecker(nil), h.checkers...), h.version
}

type checkResult struct {
	name     string
	status   ComponentStatus
	critical bool
}

func (h *HealthService) run(ctx context.Context, checkers []HealthChecker) []checkResult {
	results := make([]checkResult, len(checkers))
	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Add(1)
		go func(i int, c HealthChecker) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			results[i] = checkResult{name: c.Name(), status: c.Check(checkCtx), critical: c.IsCritical()}
		}(i, checker)
	}
	wg.Wait()
	return results
}

// Check runs all registered health checkers and aggregates the results. The
// overall status is the worst component status.
func (h *HealthService) Check(ctx context.Context) *HealthResponse {
	checkers, version := h.snapshot()

	overall := StatusUp
	components := make(map[string]ComponentStatus, len(checkers))
	for _, r := range h.run(ctx, checkers) {
		components[r.name] = r.status
		switch r.status.Status {
		case StatusDown:
			overall = StatusDown
			h.logger.Warn("Component is down", zap.String("name", r.name), zap.String("details", r.status.Details))
		case StatusDegraded:
			if overall != StatusDown {
				overall = StatusDegraded
			}
			h.logger.Warn("Component is degraded", zap.String("name", r.name))
		}
	}

	return &HealthResponse{
		Status:     overall,
		Components: components,
		Version:    version,
		Uptime:     formatDuration(time.Since(h.startTime)),
		CheckedAt:  time.Now().UTC().Format(time.RFC3339),
	}
}

// Handler serves the detailed health report: 200 for up or degraded, 503 for down.
func (h *HealthService) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := h.Check(c.Request.Context())
		status := http.StatusOK
		if resp.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}

// ReadyHandler serves the readiness probe: 503 when any critical component is down.
func (h *HealthService) ReadyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checkers, _ := h.snapshot()
		for _, r := range h.run(c.Request.Context(), checkers) {
			if r.critical && r.status.Status == StatusDown {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "not ready",
					"reason": fmt.Sprintf("critical component %s is down", r.name),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// LiveHandler serves the liveness probe; it answers 200 while the process runs.
func (h *HealthService) LiveHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "alive",
			"uptime": formatDuration(time.Since(h.startTime)),
		})
	}
}

// RegisterStandardRoutes registers prefix, prefix/ready and prefix/live
func (h *HealthService) RegisterStandardRoutes(router gin.IRouter, prefix string) {
	if prefix == "" {
		prefix = "/health"
	}
	router.GET(prefix, h.Handler())
	router.GET(prefix+"/ready", h.ReadyHandler())
	router.GET(prefix+"/live", h.LiveHandler())
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
