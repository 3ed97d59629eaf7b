package connection

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nnnkkk7/snowflake-bridge/pkg/config"
)

// setupTestDialer creates an in-memory DuckDB dialer for testing.
func setupTestDialer(t *testing.T) *DuckDBDialer {
	t.Helper()

	d := NewDuckDBDialer("")
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("failed to close DB: %v", err)
		}
	})
	return d
}

func TestNewDialer(t *testing.T) {
	tests := []struct {
		engine  config.SQLEngine
		want    config.SQLEngine
		wantErr bool
	}{
		{engine: config.EngineSnowflake, want: config.EngineSnowflake},
		{engine: "", want: config.EngineSnowflake},
		{engine: config.EngineDuckDB, want: config.EngineDuckDB},
		{engine: "postgres", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.engine), func(t *testing.T) {
			d, err := NewDialer(tt.engine, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewDialer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if d.Engine() != tt.want {
				t.Errorf("Engine() = %q, want %q", d.Engine(), tt.want)
			}
		})
	}
}

func TestSnowflakeConfig(t *testing.T) {
	params := config.ConnectionParameters{
		Account:          "ABC123",
		AccountURL:       "ABC123",
		User:             "analyst",
		Token:            "pat-secret",
		Warehouse:        "COMPUTE_WH",
		Database:         "SALES",
		Schema:           "PUBLIC",
		Role:             "READER",
		LoginTimeout:     5 * time.Second,
		NetworkTimeout:   7 * time.Second,
		StatementTimeout: 30 * time.Second,
	}

	cfg := SnowflakeConfig(params)

	got := []string{cfg.Account, cfg.User, cfg.Password, cfg.Warehouse, cfg.Database, cfg.Schema, cfg.Role}
	want := []string{"ABC123", "analyst", "pat-secret", "COMPUTE_WH", "SALES", "PUBLIC", "READER"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.LoginTimeout != 5*time.Second || cfg.RequestTimeout != 7*time.Second {
		t.Errorf("timeouts = %v/%v, want 5s/7s", cfg.LoginTimeout, cfg.RequestTimeout)
	}
	v, ok := cfg.Params[statementTimeoutParam]
	if !ok || v == nil || *v != "30" {
		t.Errorf("statement timeout param = %v, want 30", v)
	}

	params.StatementTimeout = 0
	if cfg := SnowflakeConfig(params); cfg.Params != nil {
		t.Errorf("Params = %v, want nil without statement timeout", cfg.Params)
	}
}

func TestDuckDBDialer_SessionQuery(t *testing.T) {
	d := setupTestDialer(t)
	ctx := context.Background()

	if _, err := d.Exec(ctx, "CREATE TABLE test_table (id INTEGER, value INTEGER)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := d.Exec(ctx, "INSERT INTO test_table VALUES (1, 100), (2, 200), (3, 300)"); err != nil {
		t.Fatalf("failed to insert data: %v", err)
	}

	session, err := d.Open(ctx, config.ConnectionParameters{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	if session.Engine() != config.EngineDuckDB {
		t.Errorf("Engine() = %q", session.Engine())
	}

	var sum int
	if err := session.QueryRow(ctx, "SELECT CAST(SUM(value) AS INTEGER) FROM test_table").Scan(&sum); err != nil {
		t.Fatalf("QueryRow() error = %v", err)
	}
	if sum != 600 {
		t.Errorf("sum = %d, want 600", sum)
	}
}

// Sessions opened one after another see the same database.
func TestDuckDBDialer_SharedAcrossSessions(t *testing.T) {
	d := setupTestDialer(t)
	ctx := context.Background()

	first, err := d.Open(ctx, config.ConnectionParameters{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	rows, err := first.Query(ctx, "CREATE TABLE shared (id INTEGER)")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	_ = rows.Close()
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := d.Open(ctx, config.ConnectionParameters{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = second.Close() }()

	var count int
	if err := second.QueryRow(ctx, "SELECT COUNT(*) FROM shared").Scan(&count); err != nil {
		t.Fatalf("table created by the first session is missing: %v", err)
	}
}

func TestDuckDBDialer_ConcurrentSessions(t *testing.T) {
	d := setupTestDialer(t)
	ctx := context.Background()

	if _, err := d.Exec(ctx, "CREATE TABLE test_table (id INTEGER, value INTEGER)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := d.Exec(ctx, "INSERT INTO test_table VALUES (1, 100), (2, 200), (3, 300)"); err != nil {
		t.Fatalf("failed to insert data: %v", err)
	}

	const goroutines = 10
	errs := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			session, err := d.Open(ctx, config.ConnectionParameters{})
			if err != nil {
				errs <- fmt.Errorf("goroutine %d: open failed: %w", id, err)
				return
			}
			defer func() { _ = session.Close() }()

			var val int
			if err := session.QueryRow(ctx, "SELECT value FROM test_table WHERE id = ?", id%3+1).Scan(&val); err != nil {
				errs <- fmt.Errorf("goroutine %d: scan failed: %w", id, err)
				return
			}
			if val != (id%3+1)*100 {
				errs <- fmt.Errorf("goroutine %d: got %d", id, val)
				return
			}
			errs <- nil
		}(i)
	}

	for i := 0; i < goroutines; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}

func TestDuckDBDialer_OpenWithCanceledContext(t *testing.T) {
	d := setupTestDialer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Open(ctx, config.ConnectionParameters{}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestSession_CloseReleasesOwnedDB(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn() error = %v", err)
	}

	session := NewSession(config.EngineSnowflake, conn, db)
	if session.Engine() != config.EngineSnowflake {
		t.Errorf("Engine() = %q", session.Engine())
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := db.PingContext(ctx); err == nil || !strings.Contains(err.Error(), "database is closed") {
		t.Errorf("PingContext() error = %v, want closed database", err)
	}
}

func TestSession_CloseKeepsSharedDB(t *testing.T) {
	d := setupTestDialer(t)
	ctx := context.Background()

	session, err := d.Open(ctx, config.ConnectionParameters{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	db, err := d.DB()
	if err != nil {
		t.Fatalf("DB() error = %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		t.Errorf("shared database closed with the session: %v", err)
	}
	if inUse := db.Stats().InUse; inUse != 0 {
		t.Errorf("InUse = %d, want 0", inUse)
	}
}
