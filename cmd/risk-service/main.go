// Package main is the entry point for the Risk Service
// Risk Service scores trips against historical claims, adds persona advice and re-ranks insurance plans
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/leainsurance/travelrisk/internal/api"
	apperrors "github.com/leainsurance/travelrisk/internal/common/errors"
	"github.com/leainsurance/travelrisk/internal/common/config"
	"github.com/leainsurance/travelrisk/internal/common/logger"
	"github.com/leainsurance/travelrisk/internal/common/tracing"
	"github.com/leainsurance/travelrisk/internal/health"
	"github.com/leainsurance/travelrisk/internal/metrics"
	"github.com/leainsurance/travelrisk/internal/middleware"
	"github.com/leainsurance/travelrisk/internal/risk"
	"github.com/leainsurance/travelrisk/internal/server"
)

const serviceName = "risk-service"

var (
	Version    = "dev"
	BuildTime  = "unknown"
	CommitHash = "unknown"
)

func main() {
	log := logger.New()
	defer log.Sync()

	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	log = logger.WithService(logger.NewWithLevel(cfg.Environment, cfg.LogLevel), serviceName)
	log.Info("Starting Risk Service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", CommitHash),
		zap.String("environment", cfg.Environment),
	)

	kb, err := loadKnowledgeBase(cfg.KnowledgeBasePath)
	if err != nil {
		log.Fatal("Failed to load knowledge base", zap.Error(err))
	}
	summary := kb.Summary()
	log.Info("Knowledge base loaded",
		zap.String("source", knowledgeBaseSource(cfg.KnowledgeBasePath)),
		zap.Int("claims", summary.ClaimCount),
		zap.String("currency", summary.Currency),
	)

	tracingShutdown, err := tracing.Init(context.Background(), tracing.FromAppConfig(cfg), log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, risk.NewEngine(kb), log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	gs := server.New(server.Config{
		Server:          srv,
		Logger:          log,
		Shutdownables:   []server.Shutdownable{server.CloseTracer(tracingShutdown)},
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
	gs.AddShutdownFunc("logger", func(context.Context) error {
		_ = log.Sync()
		return nil
	})

	if err := gs.ListenAndServe(); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}

	log.Info("Server exited")
}

// setupRouter assembles the middleware chain and all routes of the service.
func setupRouter(cfg *config.Config, engine *risk.Engine, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RecoveryWithConfig(recoveryConfig(cfg, log)))
	router.Use(otelgin.Middleware(serviceName))
	router.Use(logger.GinMiddleware(log))
	if cfg.EnableMetrics {
		router.Use(metrics.Middleware(serviceName))
	}
	router.Use(middleware.CORS(middleware.CORSConfigFromOrigins(cfg.GetCORSOrigins())))
	router.Use(api.StandardVersionMiddleware())

	risk.RegisterRoutes(router, risk.NewService(engine, log))

	healthService := health.NewHealthService(log)
	healthService.SetVersion(Version)
	healthService.RegisterCheck(health.NewKnowledgeBaseChecker(engine))
	healthService.RegisterStandardRoutes(router, "/health")

	if cfg.EnableMetrics {
		router.GET("/metrics", metrics.Handler())
	}

	router.NoRoute(func(c *gin.Context) {
		apperrors.HandleError(c, apperrors.NotFound("Route"))
	})

	return router
}

// recoveryConfig puts panic messages in error responses only in development.
func recoveryConfig(cfg *config.Config, log *zap.Logger) middleware.RecoveryConfig {
	rc := middleware.DefaultRecoveryConfig(log)
	rc.ExposePanic = cfg.IsDevelopment()
	return rc
}

func loadKnowledgeBase(path string) (*risk.KnowledgeBase, error) {
	if path == "" {
		return risk.DefaultKnowledgeBase(), nil
	}
	kb, err := risk.LoadKnowledgeBaseFile(path)
	if err != nil {
		return nil, apperrors.KnowledgeBaseError(path, err)
	}
	return kb, nil
}

func knowledgeBaseSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
