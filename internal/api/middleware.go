package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/appscout/mobbin-proxy/internal/mobbin"
	"github.com/appscout/mobbin-proxy/internal/utils"
)

// requestIDMiddleware assigns every request a trace ID, reusing an inbound
// X-Request-ID when a proxy already set one. The ID is echoed back in the
// response headers and attached to problem responses.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("trace_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requireSession rejects data requests with 403 until a login has succeeded.
// The client does not self-check this precondition, so it is enforced here.
func requireSession(client *mobbin.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !client.HasSession() {
			utils.ProblemSessionRequired(c, "Not logged in. Complete a login flow first")
			c.Abort()
			return
		}
		c.Next()
	}
}
