package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/leainsurance/travelrisk/internal/common/errors"
)

const maxPanicMessageLength = 500

// RecoveryConfig holds configuration for the recovery middleware
type RecoveryConfig struct {
	Logger *zap.Logger
	// StackTrace logs the goroutine stack with each recovered panic
	StackTrace bool
	// ExposePanic puts the panic message in the response details (development only)
	ExposePanic bool
}

// DefaultRecoveryConfig returns default recovery configuration
func DefaultRecoveryConfig(logger *zap.Logger) RecoveryConfig {
	return RecoveryConfig{
		Logger:     logger,
		StackTrace: true,
	}
}

// RecoveryWithConfig returns a middleware that recovers from panics, logs
// them with the request ID and answers with an INTERNAL_ERROR response.
func RecoveryWithConfig(cfg RecoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			msg := truncate(fmt.Sprintf("%v", rec), maxPanicMessageLength)
			fields := []zap.Field{
				zap.String("request_id", GetRequestID(c)),
				zap.String("panic", msg),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			}
			if cfg.StackTrace {
				fields = append(fields, zap.ByteString("stack_trace", debug.Stack()))
			}
			cfg.Logger.Error("Panic recovered", fields...)

			appErr := apperrors.Internal("Internal server error", fmt.Errorf("panic: %s", msg))
			if cfg.ExposePanic {
				appErr.WithDetails(msg)
			}

			if wantsJSON(c) {
				apperrors.HandleError(c, appErr)
				c.Abort()
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
		}()

		c.Next()
	}
}

func truncate(msg string, n int) string {
	if len(msg) > n {
		return msg[:n] + "..."
	}
	return msg
}

// wantsJSON reports whether the client accepts JSON. API paths default to JSON.
func wantsJSON(c *gin.Context) bool {
	accept := c.Request.Header.Get("Accept")
	if accept == "" || accept == "*/*" {
		return strings.HasPrefix(c.Request.URL.Path, "/api")
	}
	return strings.Contains(accept, "application/json")
}
