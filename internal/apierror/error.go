package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error represents a structured error. It classifies every failure a user
// action can hit: validation before the network, a remote not-found, or
// any other transport/server failure.
type Error struct {
	StatusCode int          `json:"-"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"details,omitempty"`
	Err        error        `json:"-"`
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeBadRequest = "BAD_REQUEST"
	CodeRemote     = "REMOTE_ERROR"
	CodeTransport  = "TRANSPORT_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails adds field-level error details.
func (e *Error) WithDetails(details ...FieldError) *Error {
	e.Details = details
	return e
}

// ToJSON converts the error to JSON bytes.
func (e *Error) ToJSON() []byte {
	response := map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"code":    e.Code,
			"message": e.Message,
		},
	}

	if len(e.Details) > 0 {
		response["error"].(map[string]interface{})["details"] = e.Details
	}

	data, _ := json.Marshal(response)
	return data
}

// Validation creates an error for input rejected before any network call.
func Validation(field, message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeValidation,
		Message:    message,
		Details:    []FieldError{{Field: field, Message: message}},
	}
}

// BadRequest creates a 400 error for a malformed request to the local API.
func BadRequest(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeBadRequest,
		Message:    message,
	}
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       CodeNotFound,
		Message:    message,
	}
}

// Remote creates an error for a non-success answer from the backend.
func Remote(status int, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{
		StatusCode: status,
		Code:       CodeRemote,
		Message:    message,
	}
}

// Transport creates an error for a call that got no usable response.
func Transport(message string, err error) *Error {
	return &Error{
		StatusCode: http.StatusBadGateway,
		Code:       CodeTransport,
		Message:    message,
		Err:        err,
	}
}

// InternalError creates a 500 Internal Server Error.
func InternalError(message string) *Error {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternal,
		Message:    message,
	}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	e, ok := As(err)
	return ok && e.Code == CodeNotFound
}

// IsValidation reports whether err was raised before any network call.
func IsValidation(err error) bool {
	e, ok := As(err)
	return ok && e.Code == CodeValidation
}

// UserMessage returns the message to show for err. Validation errors and
// messages sent by the backend are shown as-is, everything else falls back
// to the generic message.
func UserMessage(err error, fallback string) string {
	e, ok := As(err)
	if !ok {
		return fallback
	}
	switch e.Code {
	case CodeValidation, CodeNotFound, CodeBadRequest:
		return e.Message
	case CodeRemote:
		if e.Message != "" && e.Message != http.StatusText(e.StatusCode) {
			return e.Message
		}
	}
	return fallback
}
