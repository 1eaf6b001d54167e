// Package middleware provides HTTP middleware for travelrisk services
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderXRequestID is the request ID header, accepted inbound and echoed outbound
const HeaderXRequestID = "X-Request-ID"

type contextKey string

// RequestIDKey is the key under which the request ID is stored, in both the
// gin context and the request context.
const RequestIDKey contextKey = "request_id"

// maxRequestIDLength bounds caller-supplied IDs before they reach logs
const maxRequestIDLength = 128

// GetRequestID retrieves the request ID from the Gin context
func GetRequestID(c *gin.Context) string {
	return c.GetString(string(RequestIDKey))
}

// GetRequestIDFromContext retrieves the request ID from a context.Context
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID adds a request ID to a context.Context
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestID tags each request with the caller's X-Request-ID, or a new UUID
// when the header is absent or oversized.
func RequestID() gin.HandlerFunc {
	return RequestIDWithGenerator(func() string { return uuid.New().String() })
}

// RequestIDWithGenerator is RequestID with a custom ID generator
func RequestIDWithGenerator(generate func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = generate()
		}

		c.Set(string(RequestIDKey), requestID)
		c.Request = c.Request.WithContext(ContextWithRequestID(c.Request.Context(), requestID))
		c.Header(HeaderXRequestID, requestID)

		c.Next()
	}
}
