package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes understood by HTTPStatus.
const (
	CodeValidation = "ValidationError"
	CodeDataSource = "DataSourceError"
	CodeConfig     = "ConfigError"
	CodeUpstream   = "UpstreamError"
	CodeNotFound   = "NotFoundError"
	CodeInternal   = "InternalError"
)

// StandardError represents a standardized error response.
// Details are kept for server-side logging and never serialized.
type StandardError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Details string `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return e.Message
}

func (e *StandardError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for the error
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeDataSource, CodeConfig, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Body is the JSON payload written to the client.
func (e *StandardError) Body() map[string]interface{} {
	return map[string]interface{}{
		"ok":    false,
		"error": e.Message,
		"code":  e.Code,
	}
}

// NewStandardError creates a new StandardError
func NewStandardError(errorCode, message, details string) *StandardError {
	return &StandardError{
		Code:    errorCode,
		Message: message,
		Details: details,
	}
}

func wrap(code, message string, err error) *StandardError {
	e := NewStandardError(code, message, "")
	if err != nil {
		e.Details = err.Error()
		e.Err = err
	}
	return e
}

// Common error constructors
func NewValidationError(message, field string) *StandardError {
	return NewStandardError(CodeValidation, message, fmt.Sprintf("Field: %s", field))
}

// NewDataSourceError hides the driver message behind a generic one.
func NewDataSourceError(operation string, err error) *StandardError {
	return wrap(CodeDataSource, "database query failed", fmt.Errorf("%s: %w", operation, err))
}

func NewConfigError(message string) *StandardError {
	return NewStandardError(CodeConfig, message, "")
}

func NewUpstreamError(status int) *StandardError {
	return NewStandardError(CodeUpstream, fmt.Sprintf("rate lookup failed: HTTP %d", status), "")
}

func NewUpstreamFailure(err error) *StandardError {
	return wrap(CodeUpstream, "rate lookup failed", err)
}

func NewNotFoundError(message string) *StandardError {
	return NewStandardError(CodeNotFound, message, "")
}

func NewInternalError(message string, err error) *StandardError {
	return wrap(CodeInternal, message, err)
}

// As reports whether err is (or wraps) a StandardError and returns it.
func As(err error) (*StandardError, bool) {
	var se *StandardError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	se, ok := As(err)
	return ok && se.Code == code
}
