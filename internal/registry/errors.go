package registry

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("package not found")
	ErrUpstreamDown = errors.New("package index unavailable")
)

// HTTPError represents a non-2xx answer from the index.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error represents a 404 response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == 404
}

// Unwrap lets errors.Is(err, ErrNotFound) match 404 answers.
func (e *HTTPError) Unwrap() error {
	if e.IsNotFound() {
		return ErrNotFound
	}
	return nil
}
