package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

// Config holds all configuration for ekaya-migrate.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3443"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// TLS configuration (optional - if both provided, server uses HTTPS)
	TLSCertPath string `yaml:"tls_cert_path" env:"TLS_CERT_PATH" env-default:""`
	TLSKeyPath  string `yaml:"tls_key_path" env:"TLS_KEY_PATH" env-default:""`

	Upload     UploadConfig     `yaml:"upload"`
	Sample     SampleConfig     `yaml:"sample"`
	Profiler   ProfilerConfig   `yaml:"profiler"`
	Validation ValidationConfig `yaml:"validation"`
}

// UploadConfig limits file uploads.
type UploadConfig struct {
	// MaxBytes is the largest accepted upload body. Larger requests get 413.
	MaxBytes int64 `yaml:"max_bytes" env:"UPLOAD_MAX_BYTES" env-default:"52428800"`
}

// SampleConfig points at the bundled demonstration dataset.
type SampleConfig struct {
	Path string `yaml:"path" env:"SAMPLE_DATA_PATH" env-default:"sample_data/baltimore_incidents.csv"`
}

// ProfilerConfig holds dataset profiling settings.
type ProfilerConfig struct {
	// KeyPolicy is "loose" (names containing "id" or "key") or "strict"
	// ("id", "*_id", or names containing "key").
	KeyPolicy models.KeyPolicy `yaml:"key_policy" env:"PROFILER_KEY_POLICY" env-default:"loose"`
}

// ValidationConfig holds validation rule settings.
type ValidationConfig struct {
	// RulesPath is an optional YAML rule file. Built-in rules are used when empty.
	RulesPath string `yaml:"rules_path" env:"VALIDATION_RULES_PATH" env-default:""`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	// Load config from YAML file with environment variable overrides
	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Validate TLS configuration
	if err := cfg.validateTLS(); err != nil {
		return nil, fmt.Errorf("invalid TLS configuration: %w", err)
	}

	// Auto-derive BaseURL from Port if not explicitly set
	// Use HTTPS scheme if TLS is configured
	if cfg.BaseURL == "" {
		scheme := "http"
		if cfg.TLSCertPath != "" {
			scheme = "https"
		}
		cfg.BaseURL = (&url.URL{
			Scheme: scheme,
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// validate checks enumerated and numeric settings.
func (c *Config) validate() error {
	policy, err := models.ParseKeyPolicy(string(c.Profiler.KeyPolicy))
	if err != nil {
		return err
	}
	c.Profiler.KeyPolicy = policy

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	return nil
}

// validateTLS ensures TLS configuration is valid if provided.
// Both cert and key must be provided together, and files must exist and be readable.
func (c *Config) validateTLS() error {
	certSet := c.TLSCertPath != ""
	keySet := c.TLSKeyPath != ""

	// Both must be provided together or both empty
	if certSet != keySet {
		return fmt.Errorf("both tls_cert_path and tls_key_path must be provided together")
	}

	// If both provided, verify files exist (actual readability checked by tls.LoadX509KeyPair at startup)
	if certSet {
		if _, err := os.Stat(c.TLSCertPath); err != nil {
			return fmt.Errorf("TLS cert file does not exist: %w", err)
		}
		if _, err := os.Stat(c.TLSKeyPath); err != nil {
			return fmt.Errorf("TLS key file does not exist: %w", err)
		}
	}

	return nil
}

// ListenAddr returns the host:port the server binds to.
func (c *Config) ListenAddr() string {
	return ResolveBindAddrForDocker(c.BindAddr) + ":" + c.Port
}

// IsLocal reports whether the server runs in a local development environment.
func (c *Config) IsLocal() bool {
	return c.Env == "" || c.Env == "local"
}
