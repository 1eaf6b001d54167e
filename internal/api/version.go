// Package api provides API versioning for travelrisk services
package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/leainsurance/travelrisk/internal/common/errors"
)

const (
	// HeaderAPIVersion carries the API version on requests and responses
	HeaderAPIVersion = "X-API-Version"

	// DefaultAPIVersion is the version served when the client does not ask for one
	DefaultAPIVersion = "1.0"

	versionContextKey = "api_version"
)

// ErrUnsupportedVersion is returned when the client asks for an unknown version
const ErrUnsupportedVersion apperrors.ErrorCode = "UNSUPPORTED_API_VERSION"

// VersionMiddleware adds the X-API-Version header to every response and
// rejects requests that ask for a version outside supported with 406.
func VersionMiddleware(version string, supported []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(HeaderAPIVersion, version)

		requested := c.GetHeader(HeaderAPIVersion)
		if requested == "" {
			c.Set(versionContextKey, version)
			c.Next()
			return
		}

		if !isVersionSupported(requested, supported) {
			appErr := apperrors.New(ErrUnsupportedVersion, "Requested API version is not supported", http.StatusNotAcceptable).
				WithMetadata("supported_versions", supported)
			apperrors.HandleError(c, appErr)
			c.Abort()
			return
		}

		c.Set(versionContextKey, requested)
		c.Next()
	}
}

// isVersionSupported accepts both "1" and "1.0" style versions
func isVersionSupported(version string, supported []string) bool {
	for _, v := range supported {
		if v == version || strings.HasPrefix(v, version+".") {
			return true
		}
	}
	return false
}

// GetVersion extracts the negotiated API version from the gin context
func GetVersion(c *gin.Context) string {
	if v := c.GetString(versionContextKey); v != "" {
		return v
	}
	return DefaultAPIVersion
}

// VersionRouteGroup creates a route group for the major version, e.g.
// "/api/v1" for "1", "v1" and "1.0".
func VersionRouteGroup(router gin.IRouter, version string) *gin.RouterGroup {
	major, _, _ := strings.Cut(strings.TrimPrefix(version, "v"), ".")
	return router.Group("/api/v" + major)
}

// StandardVersionMiddleware returns a middleware for the v1 API
func StandardVersionMiddleware() gin.HandlerFunc {
	return VersionMiddleware(DefaultAPIVersion, []string{"1.0", "1"})
}
