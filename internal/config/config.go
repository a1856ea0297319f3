// Package config provides application configuration management with
// multi-source priority.
//
// Plain settings (paths, listen address, model name) come from, highest to
// lowest priority:
//  1. Environment variables (runtime override)
//  2. Config file (~/.bookshelf/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Secrets are resolved separately through an ordered provider chain (see
// secrets.go): environment variables, mounted secret files, then a cloud
// secret manager if one is configured. Secret values never pass through
// Viper and are never logged.
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrSecretRequired indicates a required secret could not be resolved
	// by any provider.
	ErrSecretRequired = errors.New("required configuration value not found")

	// ErrInsecureSecret indicates a production deployment is running with a
	// known insecure default secret.
	ErrInsecureSecret = errors.New("insecure default secret in production")

	// ErrInvalidAPIKey indicates an API key failed format validation.
	ErrInvalidAPIKey = errors.New("invalid API key format")
)

// Secret key names resolved through the provider chain.
const (
	// KeySessionSecret signs browser session cookies.
	KeySessionSecret = "SECRET_KEY"

	// KeyAIAPIKey authenticates against the AI summarization service.
	KeyAIAPIKey = "GOOGLE_AI_API_KEY"
)

// DefaultSessionSecret is the development fallback for KeySessionSecret.
// Using it in production is fatal; see Validate.
const DefaultSessionSecret = "dev-secret-key-change-in-production"

// Config stores application configuration plus the secret provider chain.
// SECURITY: Secrets are resolved lazily and cached outside the struct's
// marshaled fields; MarshalJSON never sees a secret value.
type Config struct {
	// Deployment environment name ("development", "production", ...).
	Environment string `mapstructure:"environment" json:"environment"`

	// Storage configuration
	DBPath string `mapstructure:"db_path" json:"db_path"`

	// Upload configuration
	UploadDir string `mapstructure:"upload_dir" json:"upload_dir"`

	// HTTP server configuration (serve mode only)
	ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
	ForceHTTPS bool   `mapstructure:"force_https" json:"force_https"`

	// AI summarization configuration
	AIModel string `mapstructure:"ai_model" json:"ai_model"`

	// Secret chain configuration
	SecretsDir          string `mapstructure:"secrets_dir" json:"secrets_dir"`
	CloudSecretProvider string `mapstructure:"cloud_secret_provider" json:"cloud_secret_provider"`

	resolver *resolver
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	// Configuration directory: ~/.bookshelf/
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".bookshelf")

	// Ensure directory exists (use 0750 permission for better security)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	// Configure Viper
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	setDefaults(configDir)
	bindEnvVariables()

	// Read configuration file (if exists)
	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	cfg.resolver = newResolver(cfg.SecretsDir, cfg.CloudSecretProvider, cfg.Environment)
	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(configDir string) {
	viper.SetDefault("environment", "development")

	// Storage defaults
	viper.SetDefault("db_path", filepath.Join(configDir, "books.db"))

	// Upload defaults
	viper.SetDefault("upload_dir", filepath.Join(configDir, "uploads"))

	// HTTP defaults
	viper.SetDefault("listen_addr", ":8000")
	viper.SetDefault("force_https", false)

	// AI defaults
	viper.SetDefault("ai_model", "gemini-2.5-flash")

	// Secret chain defaults; empty cloud provider disables the cloud tier
	viper.SetDefault("secrets_dir", "/run/secrets")
	viper.SetDefault("cloud_secret_provider", "")
}

// bindEnvVariables binds environment variables explicitly.
// Secrets (SECRET_KEY, GOOGLE_AI_API_KEY) are NOT bound here: they flow
// through the provider chain in secrets.go, never through Viper.
func bindEnvVariables() {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail)
	// If this panics, it's a BUG in our code, not a runtime error
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("environment", "ENVIRONMENT")
	mustBind("db_path", "BOOKSHELF_DB_PATH")
	mustBind("upload_dir", "BOOKSHELF_UPLOAD_DIR")
	mustBind("listen_addr", "BOOKSHELF_LISTEN_ADDR")
	mustBind("force_https", "FORCE_HTTPS")
	mustBind("ai_model", "BOOKSHELF_AI_MODEL")
	mustBind("secrets_dir", "SECRETS_DIR")
	mustBind("cloud_secret_provider", "CLOUD_SECRET_PROVIDER")
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks (U+2588) cannot collide with real secret substrings.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Secrets of 8 characters or fewer are fully masked; longer secrets keep
// their first and last 2 characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler. Secret values are not struct
// fields, so nothing sensitive can appear here; the alias type exists so
// future sensitive fields get an explicit masking site.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	data, err := json.Marshal(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
