package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nnnkkk7/snowflake-bridge/server/apierror"
)

func TestNormalizeAccount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ABC123.snowflakecomputing.com", "ABC123"},
		{"ABC123.us-east-1.snowflakecomputing.com", "ABC123.us-east-1"},
		{"abc123.SnowflakeComputing.com/", "abc123"},
		{"  ABC123  ", "ABC123"},
		{"ABC_123", "ABC_123"},
		{"ȺB.snowflakecomputing.com", "ȺB"},
		{"İX.SNOWFLAKECOMPUTING.COM", "İX"},
		{"ȺB", "ȺB"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if diff := cmp.Diff(tc.expected, NormalizeAccount(tc.input)); diff != "" {
				t.Errorf("NormalizeAccount(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestURLSafeAccount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ABC_123", "ABC-123"},
		{"MY_ORG-MY_ACCOUNT.snowflakecomputing.com", "MY-ORG-MY-ACCOUNT"},
		{"ABC123", "ABC123"},
		{"ȺB_1.snowflakecomputing.com", "ȺB-1"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if diff := cmp.Diff(tc.expected, URLSafeAccount(tc.input)); diff != "" {
				t.Errorf("URLSafeAccount(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestSettings_ResolveSQL(t *testing.T) {
	settings := &Settings{
		Account:             "MY_ACCT.snowflakecomputing.com",
		User:                "analyst",
		Token:               "pat",
		Database:            "SALES",
		LoginTimeoutSec:     5,
		StatementTimeoutSec: 30,
	}

	params, err := settings.ResolveSQL()
	if err != nil {
		t.Fatalf("ResolveSQL() error = %v", err)
	}

	expected := ConnectionParameters{
		Account:          "MY_ACCT",
		AccountURL:       "MY-ACCT",
		User:             "analyst",
		Token:            "pat",
		Warehouse:        DefaultWarehouse,
		Database:         "SALES",
		Schema:           DefaultSchema,
		LoginTimeout:     5 * time.Second,
		NetworkTimeout:   DefaultNetworkTimeout,
		StatementTimeout: 30 * time.Second,
	}
	if diff := cmp.Diff(expected, params); diff != "" {
		t.Errorf("ResolveSQL() mismatch (-want +got):\n%s", diff)
	}
}

func TestSettings_ResolveMissingCredentials(t *testing.T) {
	tests := []struct {
		name        string
		settings    Settings
		resolve     func(*Settings) (ConnectionParameters, error)
		wantMissing string
	}{
		{
			name:        "SQLWithoutToken",
			settings:    Settings{Account: "A", User: "U"},
			resolve:     (*Settings).ResolveSQL,
			wantMissing: "SNOWFLAKE_TOKEN",
		},
		{
			name:        "SQLWithoutUser",
			settings:    Settings{Account: "A", Token: "T"},
			resolve:     (*Settings).ResolveSQL,
			wantMissing: "SNOWFLAKE_USER",
		},
		{
			name:        "SQLBlankAccount",
			settings:    Settings{Account: "   ", User: "U", Token: "T"},
			resolve:     (*Settings).ResolveSQL,
			wantMissing: "SNOWFLAKE_ACCOUNT",
		},
		{
			name:        "AnalystWithoutToken",
			settings:    Settings{Account: "A"},
			resolve:     (*Settings).ResolveAnalyst,
			wantMissing: "SNOWFLAKE_TOKEN",
		},
		{
			name:        "AnalystWithoutAnything",
			settings:    Settings{},
			resolve:     (*Settings).ResolveAnalyst,
			wantMissing: "SNOWFLAKE_ACCOUNT, SNOWFLAKE_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.resolve(&tt.settings)
			if !apierror.IsKind(err, apierror.KindMissingCredential) {
				t.Fatalf("expected MissingCredentialError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMissing) {
				t.Errorf("error %q does not name %q", err.Error(), tt.wantMissing)
			}
		})
	}
}

func TestSettings_ResolveAnalystWithoutUser(t *testing.T) {
	settings := &Settings{Account: "ABC_123", Token: "pat"}
	params, err := settings.ResolveAnalyst()
	if err != nil {
		t.Fatalf("ResolveAnalyst() error = %v", err)
	}
	if params.AccountURL != "ABC-123" {
		t.Errorf("AccountURL = %q, want ABC-123", params.AccountURL)
	}
	if params.Account != "ABC_123" {
		t.Errorf("Account = %q, want ABC_123", params.Account)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("SNOWFLAKE_ACCOUNT", "ABC123.snowflakecomputing.com")
	t.Setenv("SNOWFLAKE_USER", "analyst")
	t.Setenv("SNOWFLAKE_TOKEN", "pat")
	t.Setenv("SNOWFLAKE_WAREHOUSE", "")
	t.Setenv("SNOWFLAKE_SCHEMA", "")
	t.Setenv("CORTEX_SEMANTIC_MODEL", "")
	t.Setenv("BRIDGE_SQL_ENGINE", "")
	t.Setenv("CORTEX_ANALYST_TIMEOUT", "45")

	settings, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if settings.Account != "ABC123.snowflakecomputing.com" {
		t.Errorf("Account = %q", settings.Account)
	}
	if settings.SQLEngine() != EngineSnowflake {
		t.Errorf("SQLEngine() = %q, want %q", settings.SQLEngine(), EngineSnowflake)
	}
	if got := settings.AnalystTimeout(); got != 45*time.Second {
		t.Errorf("AnalystTimeout() = %v, want 45s", got)
	}
	if got := settings.DefaultSemanticModelPath(); got != DefaultSemanticModel {
		t.Errorf("DefaultSemanticModelPath() = %q", got)
	}

	params, err := settings.ResolveSQL()
	if err != nil {
		t.Fatalf("ResolveSQL() error = %v", err)
	}
	if params.Warehouse != DefaultWarehouse || params.Schema != DefaultSchema {
		t.Errorf("defaults not applied: warehouse=%q schema=%q", params.Warehouse, params.Schema)
	}
}

func TestLoad_InvalidEngine(t *testing.T) {
	t.Setenv("BRIDGE_SQL_ENGINE", "postgres")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown engine")
	}
}

func TestSettings_Validate_NegativeTimeout(t *testing.T) {
	settings := &Settings{StatementTimeoutSec: -1}
	if err := settings.Validate(); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("BRIDGE_TEST_DOTENV_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("BRIDGE_TEST_DOTENV_VALUE") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("BRIDGE_TEST_DOTENV_VALUE"); got != "from-file" {
		t.Errorf("BRIDGE_TEST_DOTENV_VALUE = %q, want from-file", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing file should not be an error, got %v", err)
	}
	if err := LoadDotEnv(""); err != nil {
		t.Errorf("empty path should not be an error, got %v", err)
	}
}
