package orchestrator

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is returned when the orchestration server answers with a
// non-success status.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("orchestrator returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 answer of the orchestration server.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}
