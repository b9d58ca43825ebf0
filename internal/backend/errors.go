package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrTimeout          = errors.New("backend request timed out")
	ErrInvalidRequest   = errors.New("invalid prompt or request format")
	ErrEndpointNotFound = errors.New("generation endpoint not found")
	ErrUpstream         = errors.New("backend service error")
)

// StatusError is returned for non-2xx backend responses.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s failed status=%d body=%s", e.Method, e.Path, e.Status, truncate(e.Body, 300))
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// classifyGenerate maps a content generation failure onto the sentinel errors.
func classifyGenerate(err error) error {
	switch {
	case err == nil:
		return nil
	case isTimeout(err):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	switch StatusCode(err) {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrEndpointNotFound, err)
	case http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return fmt.Errorf("generate content: %w", err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
