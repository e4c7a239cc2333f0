package gateway

import (
	"errors"
	"fmt"
)

// StatusError is returned for any non-2xx response from the host forum.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed: %s", e.URL, e.Status)
}

// IsClientError reports whether err carries a 4xx status. Client errors are
// permanent: replaying the identical request cannot succeed.
func IsClientError(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 400 && se.StatusCode < 500
	}
	return false
}

// IsServerError reports whether err carries a 5xx status.
func IsServerError(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return false
}

// IsNotFound reports whether err carries a 404 status.
func IsNotFound(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == 404
	}
	return false
}
