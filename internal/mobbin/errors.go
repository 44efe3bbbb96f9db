package mobbin

import (
	"fmt"
	"net/http"
)

// APIError represents an error response from the Mobbin backend with the HTTP status code preserved.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return "Mobbin API key or session token is invalid or expired"
	case http.StatusForbidden:
		return "Mobbin backend denied access to this resource"
	case http.StatusNotFound:
		return "Mobbin backend endpoint not found — check the upstream base URL"
	case http.StatusTooManyRequests:
		return "Mobbin backend rate limit exceeded — try again later"
	case http.StatusUnprocessableEntity:
		return fmt.Sprintf("Mobbin backend rejected the request: %s", e.Body)
	default:
		return fmt.Sprintf("Mobbin backend returned status %d: %s", e.StatusCode, e.Body)
	}
}
