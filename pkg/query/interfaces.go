package query

import (
	"context"

	"github.com/nnnkkk7/snowflake-bridge/pkg/config"
)

// SQLExecutor defines the interface for SQL execution.
// Handlers depend on it so that tests can substitute the remote engine.
type SQLExecutor interface {
	// Execute runs a statement and returns its rows.
	Execute(ctx context.Context, statement string, params config.ConnectionParameters) (*ResultSet, error)

	// Probe checks connectivity and returns the session context.
	Probe(ctx context.Context, params config.ConnectionParameters) (*ProbeResult, error)
}

// SQLTranslator defines the interface for SQL translation.
type SQLTranslator interface {
	// Translate converts Snowflake SQL to DuckDB-compatible SQL.
	Translate(sql string) (string, error)
}

// StatementClassifier defines the interface for SQL classification.
type StatementClassifier interface {
	// Classify analyzes a SQL statement and returns its category.
	Classify(sql string) StatementType
}

var (
	_ SQLExecutor         = (*Executor)(nil)
	_ SQLTranslator       = (*Translator)(nil)
	_ StatementClassifier = (*Classifier)(nil)
)
