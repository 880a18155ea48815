// ABOUTME: Configuration loading and parsing for the bearound admin dashboard
// ABOUTME: YAML files with ${VAR} expansion, env overrides, and duration parsing

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is used when neither the file nor the environment names a backend.
const DefaultAPIURL = "http://localhost:5001/api/v1"

// Config represents the complete dashboard server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database"`
	API       APIConfig       `yaml:"api"`
	WebAdmin  WebAdminConfig  `yaml:"webadmin"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds the HTTP listen address
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
	// HTTPS serves on :443 with the node's auto-provisioned certificate.
	HTTPS     bool   `yaml:"https"`
}

// DatabaseConfig holds the sqlite path for sessions and notices
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// APIConfig describes the remote REST backend
type APIConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"-"`

	TimeoutRaw string `yaml:"timeout"`
}

// WebAdminConfig holds dashboard behaviour knobs
type WebAdminConfig struct {
	StaleTime     time.Duration `yaml:"-"`
	CacheSize     int           `yaml:"cache_size"`
	SessionTTL    time.Duration `yaml:"-"`
	SecureCookies bool          `yaml:"secure_cookies"`

	StaleTimeRaw  string `yaml:"stale_time"`
	SessionTTLRaw string `yaml:"session_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// envOverrides lists the variables that win over file values when set.
type envOverrides struct {
	APIURL       string `env:"BEAROUND_API_URL"`
	PublicAPIURL string `env:"NEXT_PUBLIC_API_URL"`
	HTTPAddr     string `env:"BEAROUND_HTTP_ADDR"`
	DBPath       string `env:"BEAROUND_DB_PATH"`
	LogLevel     string `env:"BEAROUND_LOG_LEVEL"`
}

// Default returns a config usable without any file.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{HTTPAddr: "127.0.0.1:3000"},
		Database: DatabaseConfig{Path: "bearound-admin.db"},
		API:      APIConfig{URL: DefaultAPIURL},
		WebAdmin: WebAdminConfig{
			StaleTime:  30 * time.Second,
			CacheSize:  1000,
			SessionTTL: 7 * 24 * time.Hour,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// DefaultPath resolves the config file location: BEAROUND_ADMIN_CONFIG, then
// $XDG_CONFIG_HOME/bearound/admin-web.yaml, then ~/.config/bearound/admin-web.yaml.
func DefaultPath() string {
	if p := os.Getenv("BEAROUND_ADMIN_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(configDir(), "admin-web.yaml")
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bearound")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "bearound")
}

// Load reads a configuration file from the given path on top of Default.
// A missing file is not an error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays the BEAROUND_* variables onto c.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if u := firstNonEmpty(o.APIURL, o.PublicAPIURL); u != "" {
		c.API.URL = u
	}
	if o.HTTPAddr != "" {
		c.Server.HTTPAddr = o.HTTPAddr
	}
	if o.DBPath != "" {
		c.Database.Path = o.DBPath
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if err := validateAPIURL(c.API.URL); err != nil {
		return err
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.WebAdmin.StaleTime < 0 {
		return fmt.Errorf("webadmin.stale_time must not be negative")
	}
	if c.WebAdmin.CacheSize < 0 {
		return fmt.Errorf("webadmin.cache_size must not be negative")
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func validateAPIURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("api.url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("api.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.url must use http or https scheme")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"api.timeout", cfg.API.TimeoutRaw, &cfg.API.Timeout},
		{"webadmin.stale_time", cfg.WebAdmin.StaleTimeRaw, &cfg.WebAdmin.StaleTime},
		{"webadmin.session_ttl", cfg.WebAdmin.SessionTTLRaw, &cfg.WebAdmin.SessionTTL},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
