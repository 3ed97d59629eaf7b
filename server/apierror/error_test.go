package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestBridgeError_Error tests error message formatting.
func TestBridgeError_Error(t *testing.T) {
	err := NewValidationError("No SQL query provided")
	if got, want := err.Error(), "ValidationError: No SQL query provided"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// TestBridgeError_HTTPStatus tests the kind to status mapping.
func TestBridgeError_HTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      *BridgeError
		expected int
	}{
		{"Validation", NewValidationError("bad"), http.StatusBadRequest},
		{"MissingCredential", NewMissingCredentialError("SNOWFLAKE_TOKEN"), http.StatusInternalServerError},
		{"Execution", NewExecutionError("boom", ExecutionDetails{}, nil), http.StatusInternalServerError},
		{"Transport", NewTransportError("unreachable", nil), http.StatusInternalServerError},
		{"Upstream403", NewUpstreamError(403, "Cortex Analyst API error: 403", nil), http.StatusForbidden},
		{"UpstreamInvalidStatus", NewUpstreamError(0, "odd", nil), http.StatusBadGateway},
		{"NotFound", NewNotFoundError("/nope"), http.StatusNotFound},
		{"MethodNotAllowed", NewMethodNotAllowedError("GET", "/chat"), http.StatusMethodNotAllowed},
		{"Internal", NewInternalError("oops"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatus(); got != tt.expected {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.expected)
			}
		})
	}
}

// TestBridgeError_ToResponse tests the wire body of each kind.
func TestBridgeError_ToResponse(t *testing.T) {
	tests := []struct {
		name     string
		err      *BridgeError
		expected string
	}{
		{
			name:     "ValidationCarriesOnlyMessage",
			err:      NewValidationError("No messages provided"),
			expected: `{"error":"No messages provided"}`,
		},
		{
			name:     "UpstreamCarriesDetails",
			err:      NewUpstreamError(403, "Cortex Analyst API error: 403", json.RawMessage(`{"message":"forbidden"}`)),
			expected: `{"error":"Cortex Analyst API error: 403","details":{"message":"forbidden"}}`,
		},
		{
			name:     "MissingCredentialNamesKeys",
			err:      NewMissingCredentialError("SNOWFLAKE_TOKEN"),
			expected: `{"error":"Missing Snowflake credentials: SNOWFLAKE_TOKEN must be set","type":"MissingCredentialError","details":{"missing":["SNOWFLAKE_TOKEN"]}}`,
		},
		{
			name:     "TransportCarriesType",
			err:      NewTransportError("REST API request failed: dial tcp", nil),
			expected: `{"error":"REST API request failed: dial tcp","type":"TransportError"}`,
		},
		{
			name: "ExecutionCarriesReason",
			err: NewExecutionError("SQL compilation error", ExecutionDetails{
				Reason:   ReasonCompilation,
				Code:     "001003",
				SQLState: "42000",
			}, nil),
			expected: `{"error":"SQL compilation error","type":"ExecutionError","details":{"reason":"compilation","code":"001003","sqlState":"42000"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.err.ToResponse())
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if diff := cmp.Diff(tt.expected, string(data)); diff != "" {
				t.Errorf("ToResponse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewMissingCredentialError(t *testing.T) {
	err := NewMissingCredentialError("SNOWFLAKE_ACCOUNT", "SNOWFLAKE_TOKEN")
	if !strings.Contains(err.Message, "Missing Snowflake credentials") {
		t.Errorf("message %q does not mention missing credentials", err.Message)
	}
	if !strings.Contains(err.Message, "SNOWFLAKE_ACCOUNT, SNOWFLAKE_TOKEN") {
		t.Errorf("message %q does not name the missing keys", err.Message)
	}
}

func TestNewExecutionError_DefaultReason(t *testing.T) {
	err := NewExecutionError("failed", ExecutionDetails{}, nil)
	details, ok := err.Details.(ExecutionDetails)
	if !ok {
		t.Fatalf("Details has type %T, want ExecutionDetails", err.Details)
	}
	if details.Reason != ReasonExecution {
		t.Errorf("Reason = %q, want %q", details.Reason, ReasonExecution)
	}
}

// TestFromError tests conversion of arbitrary errors.
func TestFromError(t *testing.T) {
	if FromError(nil) != nil {
		t.Error("FromError(nil) should return nil")
	}

	original := NewTransportError("down", nil)
	wrapped := fmt.Errorf("calling analyst: %w", original)
	if got := FromError(wrapped); got != original {
		t.Errorf("FromError() should unwrap to the original BridgeError, got %v", got)
	}

	plain := errors.New("something odd")
	got := FromError(plain)
	if got.Kind != KindInternal {
		t.Errorf("Kind = %q, want %q", got.Kind, KindInternal)
	}
	if got.Message != "something odd" {
		t.Errorf("Message = %q, want %q", got.Message, "something odd")
	}
	if !errors.Is(got, plain) {
		t.Error("internal error should unwrap to the original error")
	}
}

func TestBridgeError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewValidationError("x"))
	if !errors.Is(err, &BridgeError{Kind: KindValidation}) {
		t.Error("errors.Is should match by kind")
	}
	if errors.Is(err, &BridgeError{Kind: KindTransport}) {
		t.Error("errors.Is should not match a different kind")
	}
	if !IsKind(err, KindValidation) {
		t.Error("IsKind should match by kind")
	}
}

func TestWrapError(t *testing.T) {
	cause := errors.New("encode failed")
	err := WrapError("failed to build response", cause)
	if err.Kind != KindInternal {
		t.Errorf("Kind = %q, want %q", err.Kind, KindInternal)
	}
	if err.Message != "failed to build response: encode failed" {
		t.Errorf("Message = %q", err.Message)
	}
}
