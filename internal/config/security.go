package config

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// Finding levels, ordered by severity.
const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
	LevelInfo     = "INFO"
)

// minSessionSecretLength is the recommended minimum for the session
// secret; shorter values draw a WARNING finding in production.
const minSessionSecretLength = 32

// Finding is one result of the production security self-check.
type Finding struct {
	Level   string
	Message string
}

func (f Finding) String() string {
	return f.Level + ": " + f.Message
}

// CheckSecurity audits the resolved secrets for deployment mistakes. It
// runs only when production is detected and returns an empty list
// otherwise. Finding messages never contain secret values.
func (c *Config) CheckSecurity(ctx context.Context) []Finding {
	if !c.Production() {
		return nil
	}

	var findings []Finding

	sessionSecret := c.SessionSecret(ctx)
	switch {
	case isInsecureDefault(KeySessionSecret, sessionSecret):
		findings = append(findings, Finding{
			Level:   LevelCritical,
			Message: "using default session secret in production; set " + KeySessionSecret + " to a strong random value",
		})
	case utf8.RuneCountInString(sessionSecret) < minSessionSecretLength:
		findings = append(findings, Finding{
			Level:   LevelWarning,
			Message: fmt.Sprintf("session secret is shorter than %d characters", minSessionSecretLength),
		})
	}

	if apiKey, ok := c.Secret(ctx, KeyAIAPIKey); ok && !c.ValidateAPIKey(KeyAIAPIKey, apiKey) {
		findings = append(findings, Finding{
			Level:   LevelWarning,
			Message: KeyAIAPIKey + " appears to be invalid or a placeholder",
		})
	}

	if !c.ForceHTTPS {
		findings = append(findings, Finding{
			Level:   LevelInfo,
			Message: "consider setting FORCE_HTTPS=true for production",
		})
	}

	return findings
}

// Validate runs the security self-check and logs each finding at its
// level. A CRITICAL finding in production is fatal: the process must
// refuse to start rather than serve with a known insecure secret.
func (c *Config) Validate(ctx context.Context) error {
	for _, f := range c.CheckSecurity(ctx) {
		switch f.Level {
		case LevelCritical:
			slog.Error(f.Message)
			if c.Production() {
				return fmt.Errorf("%w: %s", ErrInsecureSecret, f.Message)
			}
		case LevelWarning:
			slog.Warn(f.Message)
		default:
			slog.Info(f.Message)
		}
	}
	return nil
}

func isInsecureDefault(keyName, value string) bool {
	for _, placeholder := range insecureDefaults[keyName] {
		if value == placeholder {
			return true
		}
	}
	return false
}
