// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/thangka-store-backend/internal/config"
)

// CORS handles cross-origin requests against the configured origin allowlist.
// Credentials are only offered to origins that pass the allowlist.
func CORS(cfg *config.Config) gin.HandlerFunc {
	allowlist := cfg.Security.CORSAllowedOrigins
	allowMethods := strings.Join(cfg.Security.CORSAllowedMethods, ", ")
	allowHeaders := strings.Join(cfg.Security.CORSAllowedHeaders, ", ")

	return func(c *gin.Context) {
		if origin := c.Request.Header.Get("Origin"); originAllowed(allowlist, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		c.Header("Access-Control-Allow-Methods", allowMethods)
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// originAllowed matches an origin against the allowlist. A "*" entry matches
// everything; a "*.example.com" entry matches any subdomain of example.com.
func originAllowed(allowlist []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, entry := range allowlist {
		switch {
		case entry == "*", entry == origin:
			return true
		case strings.HasPrefix(entry, "*."):
			if strings.HasSuffix(origin, strings.TrimPrefix(entry, "*.")) {
				return true
			}
		}
	}
	return false
}
