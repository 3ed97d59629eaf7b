package connection

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/nnnkkk7/snowflake-bridge/pkg/config"
)

// DuckDBDialer serves sessions from one local DuckDB database, so that data
// created by one invocation is visible to the next. It backs offline
// development and tests.
//
// Sessions share the database:
//   - Queries from different sessions can run concurrently
//   - Exec operations are serialized using a mutex (writes)
type DuckDBDialer struct {
	path string

	once    sync.Once
	db      *sql.DB
	openErr error
	writeMu sync.Mutex
}

// NewDuckDBDialer creates a dialer for the database at path. An empty path
// means an in-memory database. The database is opened on first use.
func NewDuckDBDialer(path string) *DuckDBDialer {
	return &DuckDBDialer{path: path}
}

// Engine implements Dialer.
func (d *DuckDBDialer) Engine() config.SQLEngine {
	return config.EngineDuckDB
}

// Open implements Dialer. Credentials are not used by the local engine.
func (d *DuckDBDialer) Open(ctx context.Context, _ config.ConnectionParameters) (*Session, error) {
	db, err := d.DB()
	if err != nil {
		return nil, err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return NewSession(config.EngineDuckDB, conn, nil), nil
}

// DB returns the shared database, opening it if needed.
func (d *DuckDBDialer) DB() (*sql.DB, error) {
	d.once.Do(func() {
		db, err := sql.Open("duckdb", d.path)
		if err != nil {
			d.openErr = fmt.Errorf("failed to open DuckDB: %w", err)
			return
		}
		d.db = db
	})
	return d.db, d.openErr
}

// Exec executes a write operation (serialized). It is used to seed the local
// database outside of any invocation.
func (d *DuckDBDialer) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db, err := d.DB()
	if err != nil {
		return nil, err
	}

	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	return db.ExecContext(ctx, query, args...)
}

// Close closes the shared database.
func (d *DuckDBDialer) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
