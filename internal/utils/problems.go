// Package utils provides shared helpers for HTTP handlers.
package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ProblemDetail represents an RFC 9457 Problem Details response for HTTP APIs.
// See: https://datatracker.ietf.org/doc/html/rfc9457
type ProblemDetail struct {
	// Type is a URI that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence of the problem.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI that identifies the specific occurrence of the problem.
	Instance string `json:"instance,omitempty"`

	// Timestamp is the time when the problem occurred in ISO 8601 format.
	Timestamp string `json:"timestamp"`

	// Errors contains validation errors for 422 responses.
	Errors []ValidationError `json:"errors,omitempty"`

	// TraceID can be used for request tracing and debugging.
	TraceID string `json:"trace_id,omitempty"`
}

// ValidationError represents a single validation error for a specific field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Problem type URIs for common error types
const (
	ProblemTypeValidationError        = "https://mobbin-proxy.api/problems/validation-error"
	ProblemTypeBadRequest             = "https://mobbin-proxy.api/problems/bad-request"
	ProblemTypeAuthenticationRequired = "https://mobbin-proxy.api/problems/authentication-required"
	ProblemTypeSessionRequired        = "https://mobbin-proxy.api/problems/session-required"
	ProblemTypeUpstreamError          = "https://mobbin-proxy.api/problems/upstream-error"
	ProblemTypeInternalServerError    = "https://mobbin-proxy.api/problems/internal-server-error"
)

// NewProblemDetail creates a new RFC 9457 compliant problem detail response.
func NewProblemDetail(problemType, title string, status int, detail, instance string) *ProblemDetail {
	return &ProblemDetail{
		Type:      problemType,
		Title:     title,
		Status:    status,
		Detail:    detail,
		Instance:  instance,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewValidationProblem creates a 422 response for validation errors.
func NewValidationProblem(detail, instance string, errors []ValidationError) *ProblemDetail {
	problem := NewProblemDetail(
		ProblemTypeValidationError,
		"Validation Error",
		http.StatusUnprocessableEntity,
		detail,
		instance,
	)
	problem.Errors = errors
	return problem
}

// NewAuthenticationProblem creates a 401 response for failed logins.
func NewAuthenticationProblem(detail, instance string) *ProblemDetail {
	return NewProblemDetail(
		ProblemTypeAuthenticationRequired,
		"Authentication Failed",
		http.StatusUnauthorized,
		detail,
		instance,
	)
}

// NewSessionRequiredProblem creates a 403 response for data requests made
// before any login has succeeded.
func NewSessionRequiredProblem(detail, instance string) *ProblemDetail {
	return NewProblemDetail(
		ProblemTypeSessionRequired,
		"Session Required",
		http.StatusForbidden,
		detail,
		instance,
	)
}

// NewUpstreamProblem creates a 502 response for upstream failures.
func NewUpstreamProblem(detail, instance string) *ProblemDetail {
	return NewProblemDetail(
		ProblemTypeUpstreamError,
		"Upstream Error",
		http.StatusBadGateway,
		detail,
		instance,
	)
}

// NewBadRequestProblem creates a 400 response for malformed requests.
func NewBadRequestProblem(detail, instance string) *ProblemDetail {
	return NewProblemDetail(
		ProblemTypeBadRequest,
		"Bad Request",
		http.StatusBadRequest,
		detail,
		instance,
	)
}

// NewInternalServerProblem creates a 500 response for server-side errors.
func NewInternalServerProblem(detail, instance string) *ProblemDetail {
	return NewProblemDetail(
		ProblemTypeInternalServerError,
		"Internal Server Error",
		http.StatusInternalServerError,
		detail,
		instance,
	)
}

// SendProblem sends an RFC 9457 problem details response.
func SendProblem(c *gin.Context, problem *ProblemDetail) {
	// RFC 9457 mandates this content type
	c.Header("Content-Type", "application/problem+json")

	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	if problem.TraceID == "" {
		problem.TraceID = getTraceID(c)
	}

	c.JSON(problem.Status, problem)
}

// ProblemBadRequest sends a 400 problem response.
func ProblemBadRequest(c *gin.Context, detail string) {
	SendProblem(c, NewBadRequestProblem(detail, ""))
}

// ProblemValidation sends a 422 problem response with field errors.
func ProblemValidation(c *gin.Context, detail string, errors []ValidationError) {
	SendProblem(c, NewValidationProblem(detail, "", errors))
}

// ProblemAuthentication sends a 401 problem response.
func ProblemAuthentication(c *gin.Context, detail string) {
	SendProblem(c, NewAuthenticationProblem(detail, ""))
}

// ProblemSessionRequired sends a 403 problem response.
func ProblemSessionRequired(c *gin.Context, detail string) {
	SendProblem(c, NewSessionRequiredProblem(detail, ""))
}

// ProblemUpstream sends a 502 problem response.
func ProblemUpstream(c *gin.Context, detail string) {
	SendProblem(c, NewUpstreamProblem(detail, ""))
}

// ProblemInternalServer sends a 500 problem response.
func ProblemInternalServer(c *gin.Context, detail string) {
	SendProblem(c, NewInternalServerProblem(detail, ""))
}

// getTraceID extracts the trace ID from the Gin context.
func getTraceID(c *gin.Context) string {
	if traceID, exists := c.Get("trace_id"); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}
