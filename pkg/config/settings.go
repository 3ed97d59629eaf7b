package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Settings holds everything the bridge reads from its environment. It is built
// once at process start and passed by pointer into the handlers, which treat
// it as read-only.
type Settings struct {
	Account       string `env:"SNOWFLAKE_ACCOUNT"`
	User          string `env:"SNOWFLAKE_USER"`
	Token         string `env:"SNOWFLAKE_TOKEN"`
	Warehouse     string `env:"SNOWFLAKE_WAREHOUSE,default=COMPUTE_WH"`
	Database      string `env:"SNOWFLAKE_DATABASE"`
	Schema        string `env:"SNOWFLAKE_SCHEMA,default=PUBLIC"`
	Role          string `env:"SNOWFLAKE_ROLE"`
	APIBaseURL    string `env:"SNOWFLAKE_API_BASE_URL"`
	SemanticModel string `env:"CORTEX_SEMANTIC_MODEL,default=DAMPIERMIKE.REVENUE_TIMESERIES.RAW_DATA/revenue_timeseries.yaml"`

	Engine     string `env:"BRIDGE_SQL_ENGINE,default=snowflake"`
	DuckDBPath string `env:"BRIDGE_DUCKDB_PATH"`

	LoginTimeoutSec     int `env:"SNOWFLAKE_LOGIN_TIMEOUT,default=10"`
	NetworkTimeoutSec   int `env:"SNOWFLAKE_NETWORK_TIMEOUT,default=10"`
	StatementTimeoutSec int `env:"SNOWFLAKE_STATEMENT_TIMEOUT,default=0"`
	AnalystTimeoutSec   int `env:"CORTEX_ANALYST_TIMEOUT,default=120"`

	Port  string `env:"PORT,default=3000"`
	Debug bool   `env:"DEBUG"`
}

// Load reads Settings from the process environment.
func Load() (*Settings, error) {
	settings := &Settings{}
	if _, err := env.UnmarshalFromEnviron(settings); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// LoadDotEnv loads variables from a .env file without overriding variables
// already present. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Validate checks values that cannot be fixed by defaults.
func (s *Settings) Validate() error {
	switch s.SQLEngine() {
	case EngineSnowflake, EngineDuckDB:
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvSQLEngine, EngineSnowflake, EngineDuckDB, s.Engine)
	}

	timeouts := map[EnvKey]int{
		EnvLoginTimeout:     s.LoginTimeoutSec,
		EnvNetworkTimeout:   s.NetworkTimeoutSec,
		EnvStatementTimeout: s.StatementTimeoutSec,
		EnvAnalystTimeout:   s.AnalystTimeoutSec,
	}
	for key, v := range timeouts {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", key, v)
		}
	}
	return nil
}

// SQLEngine returns the configured SQL engine, defaulting to Snowflake.
func (s *Settings) SQLEngine() SQLEngine {
	engine := strings.ToLower(strings.TrimSpace(s.Engine))
	if engine == "" {
		return EngineSnowflake
	}
	return SQLEngine(engine)
}

// AnalystTimeout returns the Cortex Analyst client timeout.
func (s *Settings) AnalystTimeout() time.Duration {
	return secondsOr(s.AnalystTimeoutSec, DefaultAnalystTimeout)
}

// DefaultSemanticModelPath returns the semantic model used when a chat request omits one.
func (s *Settings) DefaultSemanticModelPath() string {
	if m := strings.TrimSpace(s.SemanticModel); m != "" {
		return m
	}
	return DefaultSemanticModel
}

func secondsOr(sec int, fallback time.Duration) time.Duration {
	if sec <= 0 {
		return fallback
	}
	return time.Duration(sec) * time.Second
}
