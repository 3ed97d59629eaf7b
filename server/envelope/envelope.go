// Package envelope builds the uniform status/headers/body response returned for
// every invocation.
package envelope

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/nnnkkk7/snowflake-bridge/server/apierror"
)

// Response header names and values.
const (
	HeaderContentType = "Content-Type"
	HeaderAllowOrigin = "Access-Control-Allow-Origin"
	ContentTypeJSON   = "application/json"
	AllowAnyOrigin    = "*"
)

// Envelope is the response of one invocation. Body is already serialized JSON.
type Envelope struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// Build serializes payload once and wraps it with the standard headers.
// A payload that cannot be encoded yields a 500 envelope instead.
func Build(statusCode int, payload any) Envelope {
	body, err := encode(payload)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body, _ = encode(apierror.WrapError("failed to encode response", err).ToResponse())
	}

	return Envelope{
		StatusCode: statusCode,
		Headers: map[string]string{
			HeaderContentType: ContentTypeJSON,
			HeaderAllowOrigin: AllowAnyOrigin,
		},
		Body: body,
	}
}

// FromError builds the envelope for a failed invocation.
func FromError(err error) Envelope {
	bErr := apierror.FromError(err)
	if bErr == nil {
		bErr = apierror.NewInternalError("unknown error")
	}
	return Build(bErr.HTTPStatus(), bErr.ToResponse())
}

func encode(payload any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
