package bookingapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
)

// RemoteError is a non-2xx response from the booking API.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
}

// IsRetryable reports whether the status suggests a transient failure.
func (e *RemoteError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound reports whether err is a 404 from the booking API.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}

// IsUnavailable reports whether err means the API could not be reached or
// the circuit breaker is open.
func IsUnavailable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.IsRetryable()
	}
	return err != nil
}
