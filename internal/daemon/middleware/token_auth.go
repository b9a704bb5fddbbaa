package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	bearerPrefix = "Bearer "
	authHeader   = "Authorization"
)

// TokenAuthConfig configures static token authentication.
type TokenAuthConfig struct {
	Token string
}

// TokenAuth guards a route group with a static token, accepted either as
// a bearer header or a "token" query parameter (the latter so websocket
// clients without header support can still connect). An empty configured
// token disables the check.
func TokenAuth(config TokenAuthConfig) gin.HandlerFunc {
	if config.Token == "" {
		slog.Info("control plane auth disabled")
		return func(c *gin.Context) {
			c.Next()
		}
	}
	slog.Info("control plane auth enabled")

	return func(c *gin.Context) {
		var token string
		if header := c.GetHeader(authHeader); header != "" {
			if !strings.HasPrefix(header, bearerPrefix) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "unauthorized: authorization header format must be Bearer {token}",
				})
				return
			}
			token = strings.TrimPrefix(header, bearerPrefix)
		} else {
			token = c.Query("token")
		}

		if token != config.Token {
			slog.Debug("invalid auth token", "ip", c.ClientIP(), "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}

		c.Set("authenticated", true)
		c.Next()
	}
}
