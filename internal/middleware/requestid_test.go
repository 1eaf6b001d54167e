package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestIDRouter(mw gin.HandlerFunc) (*gin.Engine, *string, *string) {
	gin.SetMode(gin.TestMode)
	var fromGin, fromCtx string
	router := gin.New()
	router.Use(mw)
	router.GET("/test", func(c *gin.Context) {
		fromGin = GetRequestID(c)
		fromCtx = GetRequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return router, &fromGin, &fromCtx
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	router, fromGin, fromCtx := newRequestIDRouter(RequestID())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	header := w.Header().Get(HeaderXRequestID)
	require.NotEmpty(t, header)
	_, err := uuid.Parse(header)
	assert.NoError(t, err)
	assert.Equal(t, header, *fromGin)
	assert.Equal(t, header, *fromCtx)
}

func TestRequestID_UsesProvidedID(t *testing.T) {
	router, fromGin, _ := newRequestIDRouter(RequestID())

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(HeaderXRequestID, "trip-quote-7")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "trip-quote-7", w.Header().Get(HeaderXRequestID))
	assert.Equal(t, "trip-quote-7", *fromGin)
}

func TestRequestID_ReplacesOversizedID(t *testing.T) {
	router, fromGin, _ := newRequestIDRouter(RequestIDWithGenerator(func() string { return "generated" }))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(HeaderXRequestID, strings.Repeat("x", maxRequestIDLength+1))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "generated", *fromGin)
	assert.Equal(t, "generated", w.Header().Get(HeaderXRequestID))
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	router, _, _ := newRequestIDRouter(RequestID())

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		id := w.Header().Get(HeaderXRequestID)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
