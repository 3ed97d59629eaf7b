// Package cortex is a client for the Snowflake Cortex Analyst REST API. It
// forwards a conversation and a semantic model reference and relays the
// answer without interpreting it.
package cortex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nnnkkk7/snowflake-bridge/pkg/config"
	"github.com/nnnkkk7/snowflake-bridge/pkg/logging"
	"github.com/nnnkkk7/snowflake-bridge/server/apierror"
)

// MessagePath is the Cortex Analyst endpoint path.
const MessagePath = "/api/v2/cortex/analyst/message"

// Request headers.
const (
	HeaderTokenType = "X-Snowflake-Authorization-Token-Type"
	HeaderWarehouse = "X-Snowflake-Warehouse"
	HeaderDatabase  = "X-Snowflake-Database"
	HeaderSchema    = "X-Snowflake-Schema"

	TokenTypePAT = "PROGRAMMATIC_ACCESS_TOKEN"
)

// MessageRequest is one conversational analytics call.
type MessageRequest struct {
	// Messages are relayed as-is; at least one is required.
	Messages []json.RawMessage
	// SemanticModel is a stage path. Empty selects the client default.
	SemanticModel string
}

// wireRequest is the body posted to Cortex Analyst.
type wireRequest struct {
	Messages          []json.RawMessage `json:"messages"`
	SemanticModelFile string            `json:"semantic_model_file"`
}

// Client calls Cortex Analyst. It is safe for concurrent use.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	defaultModel string
	logger       *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL replaces the account-derived base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient replaces the HTTP client. Its timeout is used as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithDefaultSemanticModel sets the model used when a request names none.
func WithDefaultSemanticModel(model string) Option {
	return func(c *Client) { c.defaultModel = model }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client whose calls time out after timeout.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = config.DefaultAnalystTimeout
	}
	c := &Client{
		httpClient:   &http.Client{Timeout: timeout},
		defaultModel: config.DefaultSemanticModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)
	return c
}

// Endpoint returns the message URL for the account in params.
func (c *Client) Endpoint(params config.ConnectionParameters) string {
	base := c.baseURL
	if base == "" {
		base = "https://" + params.AccountURL + config.AccountDomainSuffix
	}
	return base + MessagePath
}

// SemanticModelFile returns the stage reference for model, prefixed with "@"
// unless it already is.
func SemanticModelFile(model string) string {
	model = strings.TrimSpace(model)
	if strings.HasPrefix(model, "@") {
		return model
	}
	return "@" + model
}

// Message sends req and returns the remote JSON body on HTTP 200. A non-200
// answer becomes an UpstreamError carrying the remote status and error body;
// a request that never completes becomes a TransportError.
func (c *Client) Message(ctx context.Context, req MessageRequest, params config.ConnectionParameters) (json.RawMessage, error) {
	if len(req.Messages) == 0 {
		return nil, apierror.NewValidationError("No messages provided")
	}
	if missing := missingCredentials(params); len(missing) > 0 {
		return nil, apierror.NewMissingCredentialError(missing...)
	}

	model := req.SemanticModel
	if strings.TrimSpace(model) == "" {
		model = c.defaultModel
	}

	payload, err := json.Marshal(wireRequest{
		Messages:          req.Messages,
		SemanticModelFile: SemanticModelFile(model),
	})
	if err != nil {
		return nil, apierror.WrapError("failed to encode Cortex Analyst request", err)
	}

	endpoint := c.Endpoint(params)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apierror.WrapError("failed to create Cortex Analyst request", err)
	}
	setHeaders(httpReq, params)

	c.logger.Debug("calling Cortex Analyst", "endpoint", endpoint, "messages", len(req.Messages))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(err, params)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(err, params)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Cortex Analyst returned an error", "status", resp.StatusCode)
		return nil, apierror.NewUpstreamError(
			resp.StatusCode,
			fmt.Sprintf("Cortex Analyst API error: %d", resp.StatusCode),
			errorDetails(body),
		)
	}

	if !json.Valid(body) {
		return nil, apierror.NewInternalError("Cortex Analyst returned a response that is not valid JSON")
	}
	return json.RawMessage(body), nil
}

func setHeaders(req *http.Request, params config.ConnectionParameters) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+params.Token)
	req.Header.Set(HeaderTokenType, TokenTypePAT)

	optional := map[string]string{
		HeaderWarehouse: params.Warehouse,
		HeaderDatabase:  params.Database,
		HeaderSchema:    params.Schema,
	}
	for name, value := range optional {
		if value != "" {
			req.Header.Set(name, value)
		}
	}
}

// errorDetails returns the remote error body, or the raw text wrapped in a
// message object when it is not JSON.
func errorDetails(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	return map[string]string{"message": string(body)}
}

func (c *Client) transportError(err error, params config.ConnectionParameters) error {
	message := logging.MaskSecret(logging.Mask(err.Error()), params.Token)
	c.logger.Error("Cortex Analyst request failed", "err", message)
	return apierror.NewTransportError("REST API request failed: "+message, err)
}

func missingCredentials(params config.ConnectionParameters) []string {
	var missing []string
	if strings.TrimSpace(params.Account) == "" && strings.TrimSpace(params.AccountURL) == "" {
		missing = append(missing, string(config.EnvAccount))
	}
	if strings.TrimSpace(params.Token) == "" {
		missing = append(missing, string(config.EnvToken))
	}
	return missing
}
