// Package config loads the bridge settings from the environment and resolves
// per-operation Snowflake connection parameters.
package config

import "time"

// Default connection settings.
const (
	DefaultWarehouse     = "COMPUTE_WH"
	DefaultSchema        = "PUBLIC"
	DefaultSemanticModel = "DAMPIERMIKE.REVENUE_TIMESERIES.RAW_DATA/revenue_timeseries.yaml"
	DefaultPort          = "3000"
)

// Default timeouts.
const (
	DefaultLoginTimeout   = 10 * time.Second
	DefaultNetworkTimeout = 10 * time.Second
	DefaultAnalystTimeout = 120 * time.Second
)

// AccountDomainSuffix is the transport-domain suffix stripped from account identifiers.
const AccountDomainSuffix = ".snowflakecomputing.com"

// SQLEngine selects the backend the SQL execution adapter dials.
type SQLEngine string

// Supported SQL engines.
const (
	EngineSnowflake SQLEngine = "snowflake"
	EngineDuckDB    SQLEngine = "duckdb"
)

// EnvKey is the name of an environment variable read by Load.
type EnvKey string

// Environment variable names.
const (
	EnvAccount          EnvKey = "SNOWFLAKE_ACCOUNT"
	EnvUser             EnvKey = "SNOWFLAKE_USER"
	EnvToken            EnvKey = "SNOWFLAKE_TOKEN"
	EnvWarehouse        EnvKey = "SNOWFLAKE_WAREHOUSE"
	EnvDatabase         EnvKey = "SNOWFLAKE_DATABASE"
	EnvSchema           EnvKey = "SNOWFLAKE_SCHEMA"
	EnvRole             EnvKey = "SNOWFLAKE_ROLE"
	EnvAPIBaseURL       EnvKey = "SNOWFLAKE_API_BASE_URL"
	EnvSemanticModel    EnvKey = "CORTEX_SEMANTIC_MODEL"
	EnvSQLEngine        EnvKey = "BRIDGE_SQL_ENGINE"
	EnvDuckDBPath       EnvKey = "BRIDGE_DUCKDB_PATH"
	EnvLoginTimeout     EnvKey = "SNOWFLAKE_LOGIN_TIMEOUT"
	EnvNetworkTimeout   EnvKey = "SNOWFLAKE_NETWORK_TIMEOUT"
	EnvStatementTimeout EnvKey = "SNOWFLAKE_STATEMENT_TIMEOUT"
	EnvAnalystTimeout   EnvKey = "CORTEX_ANALYST_TIMEOUT"
)
