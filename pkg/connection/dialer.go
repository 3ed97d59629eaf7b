// Package connection opens per-invocation sessions against the SQL engine the
// bridge is configured for.
package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nnnkkk7/snowflake-bridge/pkg/config"
)

// Dialer opens a Session for one invocation.
type Dialer interface {
	// Open connects with params. The caller must Close the returned Session.
	Open(ctx context.Context, params config.ConnectionParameters) (*Session, error)
	// Engine reports which SQL dialect sessions speak.
	Engine() config.SQLEngine
}

// NewDialer returns the dialer for engine. duckDBPath is only used by the
// DuckDB engine; empty means an in-memory database.
func NewDialer(engine config.SQLEngine, duckDBPath string) (Dialer, error) {
	switch engine {
	case config.EngineSnowflake, "":
		return NewSnowflakeDialer(), nil
	case config.EngineDuckDB:
		return NewDuckDBDialer(duckDBPath), nil
	default:
		return nil, fmt.Errorf("unsupported SQL engine %q", engine)
	}
}

// Session is a single connection checked out for one invocation.
type Session struct {
	engine config.SQLEngine
	conn   *sql.Conn
	// db is closed together with the session when the session owns it.
	db *sql.DB
}

// NewSession wraps conn for engine. When db is non-nil the session owns it and
// closes it together with conn.
func NewSession(engine config.SQLEngine, conn *sql.Conn, db *sql.DB) *Session {
	return &Session{engine: engine, conn: conn, db: db}
}

// Engine reports the dialect of the session.
func (s *Session) Engine() config.SQLEngine {
	return s.engine
}

// Query runs a statement that returns rows.
func (s *Session) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.conn.QueryContext(ctx, query, args...)
}

// QueryRow runs a statement that is expected to return at most one row.
func (s *Session) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.conn.QueryRowContext(ctx, query, args...)
}

// Close releases the connection, and the pool behind it if the session owns one.
func (s *Session) Close() error {
	var errs []error
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
