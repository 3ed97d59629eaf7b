// Package invocation converts between API Gateway proxy events, plain HTTP
// requests and the bridge's internal request and response types.
package invocation

import (
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/nnnkkk7/snowflake-bridge/server/apierror"
	"github.com/nnnkkk7/snowflake-bridge/server/envelope"
)

// LocalStage is the stage name of events synthesized by the local proxy.
const LocalStage = "local"

// Request is one inbound invocation. It is not modified after construction.
type Request struct {
	Method string
	// Path is the concrete request path; Resource is the route template, if any.
	Path     string
	Resource string
	Headers  http.Header
	Body     []byte
	Query    map[string]string
	// RequestID comes from the gateway request context.
	RequestID string
	// Event is the original gateway event.
	Event events.APIGatewayProxyRequest
}

// Header returns the first value of the named header, case-insensitively.
func (r *Request) Header(name string) string {
	return r.Headers.Get(name)
}

// FromGatewayEvent builds a Request from an API Gateway proxy event. A body
// flagged as base64 that does not decode is a validation error.
func FromGatewayEvent(ev events.APIGatewayProxyRequest) (*Request, error) {
	headers := make(http.Header, len(ev.Headers)+len(ev.MultiValueHeaders))
	for name, values := range ev.MultiValueHeaders {
		for _, v := range values {
			headers.Add(name, v)
		}
	}
	for name, v := range ev.Headers {
		if headers.Get(name) == "" {
			headers.Set(name, v)
		}
	}

	query := make(map[string]string, len(ev.QueryStringParameters))
	for name, values := range ev.MultiValueQueryStringParameters {
		if len(values) > 0 {
			query[name] = values[0]
		}
	}
	for name, v := range ev.QueryStringParameters {
		query[name] = v
	}

	body := []byte(ev.Body)
	if ev.IsBase64Encoded && ev.Body != "" {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return nil, apierror.NewValidationError(fmt.Sprintf("Invalid base64 body: %v", err))
		}
		body = decoded
	}

	method := ev.HTTPMethod
	if method == "" {
		method = ev.RequestContext.HTTPMethod
	}

	return &Request{
		Method:    strings.ToUpper(method),
		Path:      ev.Path,
		Resource:  ev.Resource,
		Headers:   headers,
		Body:      body,
		Query:     query,
		RequestID: ev.RequestContext.RequestID,
		Event:     ev,
	}, nil
}

// ToGatewayResponse converts an envelope to the proxy response format.
func ToGatewayResponse(env envelope.Envelope) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(env.Headers))
	for k, v := range env.Headers {
		headers[k] = v
	}
	return events.APIGatewayProxyResponse{
		StatusCode: env.StatusCode,
		Headers:    headers,
		Body:       env.Body,
	}
}

// NewGatewayEvent synthesizes the event API Gateway would deliver for r. The
// request body is consumed. Bodies that are not valid UTF-8 are base64 encoded.
func NewGatewayEvent(r *http.Request) (events.APIGatewayProxyRequest, error) {
	var body []byte
	if r.Body != nil {
		var err error
		if body, err = io.ReadAll(r.Body); err != nil {
			return events.APIGatewayProxyRequest{}, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	var query map[string]string
	var multiQuery map[string][]string
	if values := r.URL.Query(); len(values) > 0 {
		query = make(map[string]string, len(values))
		for name := range values {
			query[name] = values.Get(name)
		}
		multiQuery = values
	}

	ev := events.APIGatewayProxyRequest{
		Resource:                        r.URL.Path,
		Path:                            r.URL.Path,
		HTTPMethod:                      r.Method,
		Headers:                         headers,
		MultiValueHeaders:               r.Header.Clone(),
		QueryStringParameters:           query,
		MultiValueQueryStringParameters: multiQuery,
		RequestContext: events.APIGatewayProxyRequestContext{
			Stage:            LocalStage,
			RequestID:        uuid.NewString(),
			ResourcePath:     r.URL.Path,
			Path:             r.URL.Path,
			HTTPMethod:       r.Method,
			APIID:            LocalStage,
			RequestTimeEpoch: time.Now().UnixMilli(),
			Identity: events.APIGatewayRequestIdentity{
				SourceIP:  sourceIP(r.RemoteAddr),
				UserAgent: r.UserAgent(),
			},
		},
	}

	if len(body) > 0 {
		if utf8.Valid(body) {
			ev.Body = string(body)
		} else {
			ev.Body = base64.StdEncoding.EncodeToString(body)
			ev.IsBase64Encoded = true
		}
	}

	return ev, nil
}

// WriteResponse writes env to w.
func WriteResponse(w http.ResponseWriter, env envelope.Envelope) {
	for k, v := range env.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(env.StatusCode)
	_, _ = io.WriteString(w, env.Body)
}

func sourceIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
