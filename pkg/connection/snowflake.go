package connection

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/nnnkkk7/snowflake-bridge/pkg/config"
)

// statementTimeoutParam is the session parameter bounding statement runtime.
const statementTimeoutParam = "STATEMENT_TIMEOUT_IN_SECONDS"

// SnowflakeDialer connects to a Snowflake account with gosnowflake. Each
// session owns a dedicated pool of one connection, torn down on Close.
type SnowflakeDialer struct{}

// NewSnowflakeDialer creates a Snowflake dialer.
func NewSnowflakeDialer() *SnowflakeDialer {
	return &SnowflakeDialer{}
}

// Engine implements Dialer.
func (d *SnowflakeDialer) Engine() config.SQLEngine {
	return config.EngineSnowflake
}

// Open implements Dialer. The access token is presented as the password.
func (d *SnowflakeDialer) Open(ctx context.Context, params config.ConnectionParameters) (*Session, error) {
	dsn, err := sf.DSN(SnowflakeConfig(params))
	if err != nil {
		return nil, fmt.Errorf("failed to build DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewSession(config.EngineSnowflake, conn, db), nil
}

// SnowflakeConfig maps resolved parameters to a driver configuration.
func SnowflakeConfig(params config.ConnectionParameters) *sf.Config {
	cfg := &sf.Config{
		Account:        params.Account,
		User:           params.User,
		Password:       params.Token,
		Warehouse:      params.Warehouse,
		Database:       params.Database,
		Schema:         params.Schema,
		Role:           params.Role,
		LoginTimeout:   params.LoginTimeout,
		RequestTimeout: params.NetworkTimeout,
	}

	if params.StatementTimeout > 0 {
		seconds := strconv.Itoa(int(params.StatementTimeout.Seconds()))
		cfg.Params = map[string]*string{statementTimeoutParam: &seconds}
	}

	return cfg
}
