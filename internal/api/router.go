// Package api wires the HTTP routes of the Mobbin proxy.
package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/appscout/mobbin-proxy/internal/config"
	"github.com/appscout/mobbin-proxy/internal/mobbin"
	"github.com/appscout/mobbin-proxy/pkg/version"
)

// SetupRouter configures and returns the main API router with all routes and middleware.
func SetupRouter(client *mobbin.Client, cfg *config.Config) *gin.Engine {
	InitializeValidators()

	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	r := gin.Default()

	r.Use(requestIDMiddleware())
	r.Use(corsMiddleware(cfg))

	authHandlers := NewAuthHandlers(client)
	appHandlers := NewAppHandlers(client)

	v1 := r.Group("/api/v1")
	{
		login := v1.Group("/login")
		{
			login.POST("/send-code", authHandlers.SendCode)
			login.POST("/verify", authHandlers.VerifyCode)
			login.POST("/password", authHandlers.PasswordLogin)
		}

		// Data routes require a prior login; the middleware maps a missing
		// session to 403 before the client is ever invoked.
		apps := v1.Group("/apps")
		apps.Use(requireSession(client))
		{
			apps.GET("/search", appHandlers.Search)
			apps.GET("/latest", appHandlers.Latest)
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "mobbin-proxy",
			"version": version.Version,
		})
	})

	return r
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// If no allowed origins are configured, disable CORS (secure by default)
		if cfg.Server.AllowedOrigins == "" {
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Next()
			return
		}

		if isAllowedOrigin(origin, cfg.Server.AllowedOrigins) {
			// Delete any existing CORS headers that might be set by proxies
			c.Writer.Header().Del("Access-Control-Allow-Origin")
			c.Writer.Header().Del("Access-Control-Allow-Credentials")
			c.Writer.Header().Del("Access-Control-Allow-Headers")
			c.Writer.Header().Del("Access-Control-Allow-Methods")

			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isAllowedOrigin checks if the origin is in the comma-separated list of allowed origins
func isAllowedOrigin(origin string, allowedOrigins string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range strings.Split(allowedOrigins, ",") {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}

	return false
}
