// Package handlers implements the bridge routes and the router that dispatches
// invocations to them.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/nnnkkk7/snowflake-bridge/pkg/config"
	"github.com/nnnkkk7/snowflake-bridge/pkg/cortex"
	"github.com/nnnkkk7/snowflake-bridge/pkg/logging"
	"github.com/nnnkkk7/snowflake-bridge/pkg/query"
	"github.com/nnnkkk7/snowflake-bridge/server/apierror"
	"github.com/nnnkkk7/snowflake-bridge/server/invocation"
	"github.com/nnnkkk7/snowflake-bridge/server/types"
)

// Response messages.
const (
	HelloMessage          = "Hello from Lambda!"
	ConnectionTestMessage = "Successfully connected to Snowflake!"
)

// AnalystClient sends a conversation to Cortex Analyst.
type AnalystClient interface {
	Message(ctx context.Context, req cortex.MessageRequest, params config.ConnectionParameters) (json.RawMessage, error)
}

var _ AnalystClient = (*cortex.Client)(nil)

// Operation handles one route. The returned payload is sent with status 200.
type Operation func(ctx context.Context, req *invocation.Request) (any, error)

// BridgeHandler holds the bridge operations.
type BridgeHandler struct {
	settings *config.Settings
	executor query.SQLExecutor
	analyst  AnalystClient
	logger   *logging.Logger
}

// NewBridgeHandler creates a new bridge handler. settings is read-only afterwards.
func NewBridgeHandler(settings *config.Settings, executor query.SQLExecutor, analyst AnalystClient, logger *logging.Logger) *BridgeHandler {
	return &BridgeHandler{
		settings: settings,
		executor: executor,
		analyst:  analyst,
		logger:   logging.OrNop(logger),
	}
}

// ExecuteSQL runs the statement in the body and returns the normalized rows.
func (h *BridgeHandler) ExecuteSQL(ctx context.Context, req *invocation.Request) (any, error) {
	var body types.ExecuteSQLRequest
	if err := decodeBody(req.Body, &body); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body.SQL) == "" {
		return nil, apierror.NewValidationError("No SQL query provided")
	}

	params, err := h.settings.ResolveSQL()
	if err != nil {
		return nil, err
	}

	rs, err := h.executor.Execute(ctx, body.SQL, params)
	if err != nil {
		return nil, err
	}

	normalized := query.Normalize(rs)
	h.logger.Debug("statement executed", "request_id", req.RequestID, "rows", len(normalized.Rows))

	return types.ExecuteSQLResponse{
		Columns:  normalized.Columns,
		Data:     normalized.Rows,
		RowCount: len(normalized.Rows),
	}, nil
}

// Chat forwards the conversation to Cortex Analyst and relays its answer.
func (h *BridgeHandler) Chat(ctx context.Context, req *invocation.Request) (any, error) {
	var body types.ChatRequest
	if err := decodeBody(req.Body, &body); err != nil {
		return nil, err
	}
	if len(body.Messages) == 0 {
		return nil, apierror.NewValidationError("No messages provided")
	}

	params, err := h.settings.ResolveAnalyst()
	if err != nil {
		return nil, err
	}

	model := body.SemanticModel
	if strings.TrimSpace(model) == "" {
		model = h.settings.DefaultSemanticModelPath()
	}

	answer, err := h.analyst.Message(ctx, cortex.MessageRequest{
		Messages:      body.Messages,
		SemanticModel: model,
	}, params)
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// TestConnection opens a session and reports the server version and context.
func (h *BridgeHandler) TestConnection(ctx context.Context, _ *invocation.Request) (any, error) {
	params, err := h.settings.ResolveSQL()
	if err != nil {
		return nil, err
	}

	probe, err := h.executor.Probe(ctx, params)
	if err != nil {
		return nil, err
	}

	return types.ConnectionTestResponse{
		Message:          ConnectionTestMessage,
		SnowflakeVersion: probe.Version,
		Warehouse:        probe.Warehouse,
		Database:         probe.Database,
		Schema:           probe.Schema,
	}, nil
}

// Hello echoes the inbound gateway event.
func (h *BridgeHandler) Hello(_ context.Context, req *invocation.Request) (any, error) {
	return types.HelloResponse{Message: HelloMessage, Event: req.Event}, nil
}

// decodeBody decodes a JSON body into dst. An empty body decodes as {}.
func decodeBody(body []byte, dst any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apierror.NewValidationError("Invalid JSON body: " + err.Error())
	}
	return nil
}
