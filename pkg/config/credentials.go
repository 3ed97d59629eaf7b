package config

import (
	"strings"
	"time"

	"github.com/nnnkkk7/snowflake-bridge/server/apierror"
)

// ConnectionParameters are the resolved inputs of one downstream call.
type ConnectionParameters struct {
	// Account has the transport-domain suffix removed.
	Account string
	// AccountURL is Account made safe for use as a host segment.
	AccountURL string
	User       string
	Token      string
	Warehouse  string
	Database   string
	Schema     string
	Role       string

	LoginTimeout   time.Duration
	NetworkTimeout time.Duration
	// StatementTimeout is zero when statements are not bounded separately.
	StatementTimeout time.Duration
}

// NormalizeAccount strips the transport-domain suffix and anything after it.
func NormalizeAccount(account string) string {
	account = strings.TrimSpace(account)
	if i := strings.Index(asciiLower(account), AccountDomainSuffix); i >= 0 {
		account = account[:i]
	}
	return account
}

// asciiLower lowers A-Z only, so byte offsets into s stay valid.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// URLSafeAccount normalizes account and replaces underscores with hyphens.
func URLSafeAccount(account string) string {
	return strings.ReplaceAll(NormalizeAccount(account), "_", "-")
}

// ResolveSQL returns the parameters for a SQL connection. Account, user and
// token are required.
func (s *Settings) ResolveSQL() (ConnectionParameters, error) {
	return s.resolve(EnvAccount, EnvUser, EnvToken)
}

// ResolveAnalyst returns the parameters for a Cortex Analyst call. Account and
// token are required.
func (s *Settings) ResolveAnalyst() (ConnectionParameters, error) {
	return s.resolve(EnvAccount, EnvToken)
}

func (s *Settings) resolve(required ...EnvKey) (ConnectionParameters, error) {
	params := ConnectionParameters{
		Account:          NormalizeAccount(s.Account),
		AccountURL:       URLSafeAccount(s.Account),
		User:             strings.TrimSpace(s.User),
		Token:            strings.TrimSpace(s.Token),
		Warehouse:        orDefault(s.Warehouse, DefaultWarehouse),
		Database:         strings.TrimSpace(s.Database),
		Schema:           orDefault(s.Schema, DefaultSchema),
		Role:             strings.TrimSpace(s.Role),
		LoginTimeout:     secondsOr(s.LoginTimeoutSec, DefaultLoginTimeout),
		NetworkTimeout:   secondsOr(s.NetworkTimeoutSec, DefaultNetworkTimeout),
		StatementTimeout: time.Duration(max(s.StatementTimeoutSec, 0)) * time.Second,
	}

	values := map[EnvKey]string{
		EnvAccount: params.Account,
		EnvUser:    params.User,
		EnvToken:   params.Token,
	}

	var missing []string
	for _, key := range required {
		if values[key] == "" {
			missing = append(missing, string(key))
		}
	}
	if len(missing) > 0 {
		return ConnectionParameters{}, apierror.NewMissingCredentialError(missing...)
	}

	return params, nil
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
