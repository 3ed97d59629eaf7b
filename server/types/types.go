// Package types holds the JSON request and response bodies of the bridge routes.
package types

import "encoding/json"

// ExecuteSQLRequest is the body of POST /execute-sql.
type ExecuteSQLRequest struct {
	SQL string `json:"sql"`
}

// ExecuteSQLResponse is the successful result of POST /execute-sql.
type ExecuteSQLResponse struct {
	Columns  []string         `json:"columns"`
	Data     []map[string]any `json:"data"`
	RowCount int              `json:"row_count"`
}

// ChatRequest is the body of POST /chat. Messages are relayed without
// inspection; SemanticModel falls back to the configured default.
type ChatRequest struct {
	Messages      []json.RawMessage `json:"messages"`
	SemanticModel string            `json:"semantic_model,omitempty"`
}

// ConnectionTestResponse is the successful result of /test-snowflake.
type ConnectionTestResponse struct {
	Message          string `json:"message"`
	SnowflakeVersion string `json:"snowflake_version"`
	Warehouse        string `json:"warehouse"`
	Database         string `json:"database"`
	Schema           string `json:"schema"`
}

// HelloResponse is the result of /hello. Event echoes the inbound gateway event.
type HelloResponse struct {
	Message string `json:"message"`
	Event   any    `json:"event"`
}
