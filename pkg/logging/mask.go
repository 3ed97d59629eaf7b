package logging

import (
	"regexp"
	"strings"
)

var (
	rePassword = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reToken    = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._\-+/=]+)`)
	reDSNPass  = regexp.MustCompile(`(://|^)([^:/@\s]+):([^@\s]+)(@)`) // user:pass@account
)

// Mask replaces credentials in s with "***".
// For DSN strings only the password part is masked.
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reDSNPass.ReplaceAllString(out, "$1$2:***$4")
	return out
}

// MaskSecret removes every literal occurrence of secret from s.
func MaskSecret(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "***")
}
