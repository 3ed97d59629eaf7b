// Package apierror defines the error taxonomy shared by the bridge adapters and
// the mapping from each kind to an HTTP status and response body.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind tags a BridgeError with its place in the taxonomy.
type Kind string

// Error kinds.
const (
	KindValidation        Kind = "ValidationError"
	KindMissingCredential Kind = "MissingCredentialError"
	KindExecution         Kind = "ExecutionError"
	KindTransport         Kind = "TransportError"
	KindUpstream          Kind = "UpstreamError"
	KindNotFound          Kind = "NotFoundError"
	KindMethodNotAllowed  Kind = "MethodNotAllowedError"
	KindInternal          Kind = "InternalError"
)

// Reason refines an ExecutionError.
type Reason string

// Execution failure reasons.
const (
	ReasonAuthentication Reason = "authentication"
	ReasonCompilation    Reason = "compilation"
	ReasonTimeout        Reason = "timeout"
	ReasonNetwork        Reason = "network"
	ReasonExecution      Reason = "execution"
)

// SQLState values reported by Snowflake that the classifier cares about.
const (
	SQLStateAuthenticationPrefix = "28"
	SQLStateSyntaxErrorPrefix    = "42"
	SQLStateQueryCanceled        = "57014"
)

// BridgeError is the single error type returned by every adapter.
type BridgeError struct {
	Kind    Kind
	Message string
	// StatusCode is only set for UpstreamError and carries the remote status.
	StatusCode int
	Details    any
	Err        error
}

// Error implements the error interface.
func (e *BridgeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *BridgeError) Unwrap() error {
	return e.Err
}

// Is checks if this error matches another error by kind.
func (e *BridgeError) Is(target error) bool {
	var other *BridgeError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// HTTPStatus maps the error kind to the status code of the response envelope.
func (e *BridgeError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindUpstream:
		if e.StatusCode >= 100 && e.StatusCode <= 599 {
			return e.StatusCode
		}
		return http.StatusBadGateway
	case KindMissingCredential, KindExecution, KindTransport, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body written for every failed invocation.
type ErrorResponse struct {
	Error   string `json:"error"`
	Type    string `json:"type,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ToResponse converts the error to its wire body. Validation errors carry only
// the message; upstream errors carry the remote body instead of a type tag.
func (e *BridgeError) ToResponse() *ErrorResponse {
	resp := &ErrorResponse{Error: e.Message}
	switch e.Kind {
	case KindValidation:
	case KindUpstream:
		resp.Details = e.Details
	default:
		resp.Type = string(e.Kind)
		resp.Details = e.Details
	}
	return resp
}

// NewValidationError creates an error for malformed or missing caller input.
func NewValidationError(message string) *BridgeError {
	return &BridgeError{Kind: KindValidation, Message: message}
}

// NewMissingCredentialError creates an error naming the absent configuration keys.
func NewMissingCredentialError(missing ...string) *BridgeError {
	message := "Missing Snowflake credentials"
	if len(missing) > 0 {
		message = fmt.Sprintf("%s: %s must be set", message, strings.Join(missing, ", "))
	}
	return &BridgeError{
		Kind:    KindMissingCredential,
		Message: message,
		Details: map[string]any{"missing": missing},
	}
}

// ExecutionDetails describes a failed SQL statement.
type ExecutionDetails struct {
	Reason   Reason `json:"reason"`
	Code     string `json:"code,omitempty"`
	SQLState string `json:"sqlState,omitempty"`
	QueryID  string `json:"queryId,omitempty"`
}

// NewExecutionError creates an error for a statement the SQL engine rejected or failed.
func NewExecutionError(message string, details ExecutionDetails, err error) *BridgeError {
	if details.Reason == "" {
		details.Reason = ReasonExecution
	}
	return &BridgeError{
		Kind:    KindExecution,
		Message: message,
		Details: details,
		Err:     err,
	}
}

// NewTransportError creates an error for a remote endpoint that could not be reached.
func NewTransportError(message string, err error) *BridgeError {
	return &BridgeError{Kind: KindTransport, Message: message, Err: err}
}

// NewUpstreamError creates an error for a remote endpoint that answered with a
// non-success status. details is the remote error body.
func NewUpstreamError(statusCode int, message string, details any) *BridgeError {
	return &BridgeError{
		Kind:       KindUpstream,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// NewNotFoundError creates a routing error for an unknown path.
func NewNotFoundError(path string) *BridgeError {
	return &BridgeError{Kind: KindNotFound, Message: fmt.Sprintf("Not found: %s", path)}
}

// NewMethodNotAllowedError creates a routing error for an unsupported method.
func NewMethodNotAllowedError(method, path string) *BridgeError {
	return &BridgeError{
		Kind:    KindMethodNotAllowed,
		Message: fmt.Sprintf("Method %s not allowed for %s", method, path),
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string) *BridgeError {
	return &BridgeError{Kind: KindInternal, Message: message}
}

// WrapError wraps a standard Go error into an internal BridgeError.
func WrapError(message string, err error) *BridgeError {
	return &BridgeError{
		Kind:    KindInternal,
		Message: fmt.Sprintf("%s: %v", message, err),
		Err:     err,
	}
}

// FromError converts a standard error to a BridgeError.
// If the error is already a BridgeError, it returns it as-is.
// If the error is nil, it returns nil.
// Otherwise, it wraps it as an internal error.
func FromError(err error) *BridgeError {
	if err == nil {
		return nil
	}

	var bErr *BridgeError
	if errors.As(err, &bErr) {
		return bErr
	}

	return &BridgeError{
		Kind:    KindInternal,
		Message: err.Error(),
		Err:     err,
	}
}

// IsKind reports whether err is a BridgeError of the given kind.
func IsKind(err error, kind Kind) bool {
	var bErr *BridgeError
	return errors.As(err, &bErr) && bErr.Kind == kind
}
