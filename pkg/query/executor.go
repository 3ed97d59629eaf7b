package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/nnnkkk7/snowflake-bridge/pkg/config"
	"github.com/nnnkkk7/snowflake-bridge/pkg/connection"
	"github.com/nnnkkk7/snowflake-bridge/pkg/logging"
	"github.com/nnnkkk7/snowflake-bridge/server/apierror"
)

// Probe statements per engine. Each returns version, warehouse, database and schema.
const (
	SnowflakeProbeStatement = "SELECT CURRENT_VERSION(), CURRENT_WAREHOUSE(), CURRENT_DATABASE(), CURRENT_SCHEMA()"
	DuckDBProbeStatement    = "SELECT version(), 'LOCAL', current_database(), current_schema()"
)

// Executor runs one statement per call on a fresh session from its dialer.
type Executor struct {
	dialer     connection.Dialer
	translator *Translator
	classifier *Classifier
	mapper     *TypeMapper
	logger     *logging.Logger
}

// NewExecutor creates a new query executor.
func NewExecutor(dialer connection.Dialer, logger *logging.Logger) *Executor {
	return &Executor{
		dialer:     dialer,
		translator: NewTranslator(),
		classifier: NewClassifier(),
		mapper:     NewTypeMapper(),
		logger:     logging.OrNop(logger),
	}
}

// Execute runs statement with params and returns every row it produced. The
// session is released on every path. Failures are returned as
// ExecutionError, with credentials scrubbed from the message.
func (e *Executor) Execute(ctx context.Context, statement string, params config.ConnectionParameters) (*ResultSet, error) {
	if strings.TrimSpace(statement) == "" {
		return nil, apierror.NewValidationError("No SQL query provided")
	}

	if params.StatementTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.StatementTimeout)
		defer cancel()
	}

	session, err := e.dialer.Open(ctx, params)
	if err != nil {
		return nil, e.classifyError(err, params)
	}
	defer e.closeSession(session)

	sqlText := statement
	if session.Engine() == config.EngineDuckDB {
		if sqlText, err = e.translator.Translate(statement); err != nil {
			return nil, e.classifyError(err, params)
		}
	}

	e.logger.Debug("executing statement",
		"engine", session.Engine(),
		"category", e.classifier.Classify(statement),
		"sql", logging.Mask(sqlText))

	rows, err := session.Query(ctx, sqlText)
	if err != nil {
		return nil, e.classifyError(err, params)
	}
	defer func() { _ = rows.Close() }()

	result, err := e.readRows(rows)
	if err != nil {
		return nil, e.classifyError(err, params)
	}

	e.logger.Debug("statement finished", "columns", len(result.Columns), "rows", len(result.Rows))
	return result, nil
}

// readRows scans every row into a ResultSet.
func (e *Executor) readRows(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	// Some drivers cannot describe every column; fall back to KindOther.
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		columnTypes = nil
	}

	result := &ResultSet{
		Columns: e.mapper.InferColumns(columns, columnTypes),
		Rows:    make([][]any, 0),
	}

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// Probe opens a session and reports the engine version and session context.
func (e *Executor) Probe(ctx context.Context, params config.ConnectionParameters) (*ProbeResult, error) {
	session, err := e.dialer.Open(ctx, params)
	if err != nil {
		return nil, e.classifyError(err, params)
	}
	defer e.closeSession(session)

	statement := SnowflakeProbeStatement
	if session.Engine() == config.EngineDuckDB {
		statement = DuckDBProbeStatement
	}

	var version, warehouse, database, schema sql.NullString
	if err := session.QueryRow(ctx, statement).Scan(&version, &warehouse, &database, &schema); err != nil {
		return nil, e.classifyError(err, params)
	}

	return &ProbeResult{
		Version:   version.String,
		Warehouse: warehouse.String,
		Database:  database.String,
		Schema:    schema.String,
	}, nil
}

func (e *Executor) closeSession(session *connection.Session) {
	if err := session.Close(); err != nil {
		e.logger.Warn("failed to close session", "err", logging.Mask(err.Error()))
	}
}

// classifyError maps a driver failure to an ExecutionError. Errors that are
// already classified pass through.
func (e *Executor) classifyError(err error, params config.ConnectionParameters) error {
	var bErr *apierror.BridgeError
	if errors.As(err, &bErr) {
		return bErr
	}

	details := ClassifyDriverError(err)
	message := logging.MaskSecret(logging.Mask(err.Error()), params.Token)

	e.logger.Error("statement failed", "reason", details.Reason, "code", details.Code, "err", message)
	return apierror.NewExecutionError(message, details, err)
}

// ClassifyDriverError derives the failure reason and Snowflake identifiers from err.
func ClassifyDriverError(err error) apierror.ExecutionDetails {
	details := apierror.ExecutionDetails{Reason: apierror.ReasonExecution}

	var sfErr *sf.SnowflakeError
	if errors.As(err, &sfErr) {
		details.Code = strconv.Itoa(sfErr.Number)
		details.SQLState = sfErr.SQLState
		details.QueryID = sfErr.QueryID

		switch {
		case strings.HasPrefix(sfErr.SQLState, apierror.SQLStateAuthenticationPrefix):
			details.Reason = apierror.ReasonAuthentication
		case strings.HasPrefix(sfErr.SQLState, apierror.SQLStateSyntaxErrorPrefix):
			details.Reason = apierror.ReasonCompilation
		case sfErr.SQLState == apierror.SQLStateQueryCanceled:
			details.Reason = apierror.ReasonTimeout
		}
		return details
	}

	if errors.Is(err, context.DeadlineExceeded) {
		details.Reason = apierror.ReasonTimeout
		return details
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			details.Reason = apierror.ReasonTimeout
		} else {
			details.Reason = apierror.ReasonNetwork
		}
	}

	return details
}
