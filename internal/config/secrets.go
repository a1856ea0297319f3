package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/bookshelfd/bookshelf/internal/secrets"
)

// insecureDefaults lists known placeholder values per secret key. A
// resolved secret matching one of these is treated as unset for API keys
// and as a fatal misconfiguration for the session secret in production.
var insecureDefaults = map[string][]string{
	KeySessionSecret: {DefaultSessionSecret, "dev-secret-key"},
	KeyAIAPIKey:      {"your_api_key_here", "test_key", "test_api_key"},
}

// apiKeyPatterns holds format patterns for keys that have one registered.
var apiKeyPatterns = map[string]*regexp.Regexp{
	KeyAIAPIKey: regexp.MustCompile(`^[A-Za-z0-9_-]{20,}$`),
}

// minAPIKeyLength is the floor applied to every API key regardless of
// whether a format pattern is registered.
const minAPIKeyLength = 10

// platformEnvVars identify managed platforms that imply production.
var platformEnvVars = []string{
	"RENDER",            // Render.com
	"HEROKU_APP_NAME",   // Heroku
	"AWS_EXECUTION_ENV", // AWS Lambda / ECS
	"K_SERVICE",         // Google Cloud Run
}

// resolver owns the secret provider chain and a per-instance cache of
// resolved values. Safe for concurrent use.
type resolver struct {
	providers  []secrets.Provider
	production bool

	mu    sync.RWMutex
	cache map[string]string
}

// newResolver builds the chain in priority order: environment, then file
// provider when the secrets directory exists, then a cloud provider when
// one is configured.
func newResolver(secretsDir, cloudKind, environment string) *resolver {
	r := &resolver{
		cache:      make(map[string]string),
		production: detectProduction(environment),
	}

	r.providers = append(r.providers, secrets.EnvProvider{})

	if secretsDir == "" {
		secretsDir = secrets.DefaultSecretsDir
	}
	if info, err := os.Stat(secretsDir); err == nil && info.IsDir() {
		r.providers = append(r.providers, secrets.NewFileProvider(secretsDir, slog.Default()))
	}

	switch cloudKind {
	case secrets.CloudAWS, secrets.CloudGCP:
		r.providers = append(r.providers, secrets.NewCloudProvider(cloudKind, slog.Default()))
	case "":
	default:
		slog.Warn("unknown cloud secret provider, cloud tier disabled", "provider", cloudKind)
	}

	return r
}

// detectProduction reports whether the process runs in a production
// environment: either the environment name says so, or a well-known
// platform-identifying variable is present.
func detectProduction(environment string) bool {
	switch strings.ToLower(environment) {
	case "production", "prod":
		return true
	}
	for _, v := range platformEnvVars {
		if _, ok := os.LookupEnv(v); ok {
			return true
		}
	}
	return false
}

func (r *resolver) get(ctx context.Context, key string) (string, bool) {
	r.mu.RLock()
	if v, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return v, true
	}
	r.mu.RUnlock()

	for _, p := range r.providers {
		if v, ok := p.GetSecret(ctx, key); ok {
			r.mu.Lock()
			r.cache[key] = v
			r.mu.Unlock()
			return v, true
		}
	}
	return "", false
}

func (r *resolver) reset() {
	r.mu.Lock()
	r.cache = make(map[string]string)
	r.mu.Unlock()
}

// Production reports whether the configuration detected a production
// environment at load time.
func (c *Config) Production() bool {
	return c.resolver.production
}

// Secret resolves key through the provider chain, returning the first
// non-empty value. Resolved values are cached per Config instance.
func (c *Config) Secret(ctx context.Context, key string) (string, bool) {
	return c.resolver.get(ctx, key)
}

// SecretDefault resolves key, falling back to def when no provider
// yields a value.
func (c *Config) SecretDefault(ctx context.Context, key, def string) string {
	if v, ok := c.resolver.get(ctx, key); ok {
		return v
	}
	return def
}

// RequiredSecret resolves key and fails with ErrSecretRequired when no
// provider yields a value. In production the error omits the key name so
// error output cannot reveal which secrets a deployment expects.
func (c *Config) RequiredSecret(ctx context.Context, key string) (string, error) {
	if v, ok := c.resolver.get(ctx, key); ok {
		return v, nil
	}
	if c.resolver.production {
		return "", ErrSecretRequired
	}
	return "", fmt.Errorf("%w: %s", ErrSecretRequired, key)
}

// ResetCache drops all cached secret values. Subsequent lookups hit the
// provider chain again; use after secret rotation.
func (c *Config) ResetCache() {
	c.resolver.reset()
}

// ValidateAPIKey reports whether value is a plausible API key for
// keyName: non-empty, not a known placeholder, at least 10 characters,
// and matching the key's format pattern when one is registered.
func (c *Config) ValidateAPIKey(keyName, value string) bool {
	if value == "" {
		return false
	}
	for _, placeholder := range insecureDefaults[keyName] {
		if value == placeholder {
			return false
		}
	}
	if pattern, ok := apiKeyPatterns[keyName]; ok && !pattern.MatchString(value) {
		return false
	}
	return len(value) >= minAPIKeyLength
}

// APIKey resolves the AI service API key. Placeholder values resolve to
// absent. A key failing format validation is an error in production and
// a logged warning (resolving to absent) otherwise.
func (c *Config) APIKey(ctx context.Context) (string, error) {
	key, ok := c.Secret(ctx, KeyAIAPIKey)
	if !ok {
		return "", nil
	}
	for _, placeholder := range insecureDefaults[KeyAIAPIKey] {
		if key == placeholder {
			return "", nil
		}
	}
	if !c.ValidateAPIKey(KeyAIAPIKey, key) {
		if c.Production() {
			return "", ErrInvalidAPIKey
		}
		slog.Warn("AI API key failed format validation", "key", KeyAIAPIKey)
		return "", nil
	}
	return key, nil
}

// SessionSecret resolves the cookie-signing secret, falling back to the
// development default. CheckSecurity flags the default as CRITICAL in
// production.
func (c *Config) SessionSecret(ctx context.Context) string {
	return c.SecretDefault(ctx, KeySessionSecret, DefaultSessionSecret)
}
