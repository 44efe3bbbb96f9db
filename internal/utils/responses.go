package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MessageResponse represents a simple message response (typed alternative to gin.H).
type MessageResponse struct {
	Message string `json:"message"`
}

// Success responds with HTTP 200 OK status and the provided data.
func Success(c *gin.Context, data any) {
	if c == nil {
		return
	}
	c.JSON(http.StatusOK, data)
}

// Message responds with HTTP 200 OK and a simple message body.
func Message(c *gin.Context, message string) {
	if c == nil {
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: message})
}
