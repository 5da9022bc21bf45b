package llm

import (
	"errors"
	"fmt"
)

// StatusError carries the HTTP status of a failed provider call so
// callers can distinguish overload-class failures from hard errors.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm provider error: status %d, body: %s", e.StatusCode, e.Body)
}

// IsOverloaded reports whether the error is an overload-class failure
// (429 rate limit or 503 model overloaded), the only class worth a
// model-fallback retry.
func IsOverloaded(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == 429 || se.StatusCode == 503
	}
	return false
}
