package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jacob-mennell/fast-insurance-claims/config"
)

// APIKeyHeader is the header carrying the shared API key
const APIKeyHeader = "X-API-Key"

// APIKeyAuth validates the static API key on protected routes
func APIKeyAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Invalid or missing API Key",
			})
			return
		}

		c.Next()
	}
}
