package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError indicates a non-success HTTP response from the catalog API.
type StatusError struct {
	Status int
	URL    string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("http status %d from %s", e.Status, e.URL)
}

// ErrTimeout indicates a timeout while issuing a request.
type ErrTimeout struct {
	Err error
}

func (e ErrTimeout) Error() string {
	return fmt.Errorf("timeout: %w", e.Err).Error()
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// ErrConnection indicates a network connectivity failure.
type ErrConnection struct {
	Err error
}

func (e ErrConnection) Error() string {
	return fmt.Errorf("connection: %w", e.Err).Error()
}

func (e ErrConnection) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an HTTP 404 from the remote service.
func IsNotFound(err error) bool {
	var statusErr StatusError
	return errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var timeout ErrTimeout
	if errors.As(err, &timeout) {
		return "timeout"
	}
	var conn ErrConnection
	if errors.As(err, &conn) {
		return "connection"
	}
	var statusErr StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Status {
		case http.StatusForbidden:
			return "forbidden"
		case http.StatusNotFound:
			return "not_found"
		case http.StatusTooManyRequests:
			return "rate_limited"
		}
		if statusErr.Status >= http.StatusInternalServerError {
			return "server_error"
		}
		return "client_error"
	}
	return "other"
}
