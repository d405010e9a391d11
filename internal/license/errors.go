package license

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyDocument = errors.New("license: response has neither data nor errors")

// NetworkError wraps transient network failures distinct from licence semantic errors.
type NetworkError struct{ Err error }

func (e NetworkError) Error() string { return "network: " + e.Err.Error() }
func (e NetworkError) Unwrap() error { return e.Err }

// APIError is returned when the licensing service rejects a request.
type APIError struct {
	StatusCode int
	Errors     []ErrorObject
}

// Details returns one message per error object, in order. An object without a
// detail falls back to its title, then its code; an empty object is skipped.
func (e *APIError) Details() []string {
	details := make([]string, 0, len(e.Errors))
	for _, obj := range e.Errors {
		switch {
		case obj.Detail != "":
			details = append(details, obj.Detail)
		case obj.Title != "":
			details = append(details, obj.Title)
		case obj.Code != "":
			details = append(details, obj.Code)
		}
	}
	return details
}

// Error joins all details with a comma.
func (e *APIError) Error() string {
	details := e.Details()
	if len(details) == 0 {
		if e.StatusCode != 0 {
			return fmt.Sprintf("licensing service rejected the request (status %d)", e.StatusCode)
		}
		return "licensing service rejected the request"
	}
	return strings.Join(details, ",")
}
