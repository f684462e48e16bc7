package api

import (
	"errors"
	"net/http"

	"github.com/akiliapp/lms/pkg/envelope"
)

// ErrUnauthorized matches an *APIError for a 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// Error codes carried by APIError.
const (
	CodeConnection      = "connection_error"
	CodeInvalidResponse = "invalid_response"
	CodeUnauthorized    = "unauthorized"
	CodeNotFound        = "not_found"
	CodeHTTP            = "http_error"
)

// APIError is a transport failure or a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsConnectionError reports whether err is a transport-level failure.
func IsConnectionError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeConnection
}

// MessageOf reduces any error returned by this package, or a rejected
// envelope, to the message shown to the user.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	var rejected *envelope.RejectedError
	if errors.As(err, &rejected) {
		return rejected.Error()
	}
	return err.Error()
}
