// Package secrets resolves security-sensitive configuration values from an
// ordered chain of providers: process environment, mounted secret files
// (Docker/Kubernetes), and cloud secret managers (AWS, GCP).
//
// Providers never return errors. Every failure mode (missing file,
// missing cloud credentials, "not found" responses) is logged and
// reported as absent, pushing all required/optional decisions up to the
// configuration layer. Secret values themselves are never logged.
package secrets

import (
	"context"
	"os"
)

// Provider answers "does key K have a value" for configuration secrets.
// Implementations must not return partial values: a lookup either yields a
// non-empty value and true, or "" and false.
type Provider interface {
	// Name identifies the provider in log output.
	Name() string

	// GetSecret returns the value for key, or false if the provider cannot
	// supply it. It never fails loudly: errors are logged internally.
	GetSecret(ctx context.Context, key string) (string, bool)
}

// EnvProvider reads secrets from process environment variables.
// Highest priority in the standard chain.
type EnvProvider struct{}

// Name implements Provider.
func (EnvProvider) Name() string { return "env" }

// GetSecret implements Provider. Empty environment values are absent.
func (EnvProvider) GetSecret(_ context.Context, key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
