// ABOUTME: Operator CLI configuration loaded from TOML under the XDG config dir
// ABOUTME: Shares env overrides and URL validation with the server config

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// CLIConfig is the bearound-admin configuration.
type CLIConfig struct {
	APIURL   string        `toml:"api_url"`
	Timeout  time.Duration `toml:"-"`
	LogLevel string        `toml:"log_level"`

	TimeoutRaw string `toml:"timeout"`

	// Dir holds admin.toml and auth-storage.json.
	Dir string `toml:"-"`
}

// CLIDir returns the directory the CLI keeps its files in.
func CLIDir() string {
	return configDir()
}

// LoadCLI reads dir/admin.toml. A missing file yields defaults.
func LoadCLI(dir string) (*CLIConfig, error) {
	cfg := &CLIConfig{
		APIURL:   DefaultAPIURL,
		LogLevel: "warn",
		Dir:      dir,
	}

	data, err := os.ReadFile(filepath.Join(dir, "admin.toml"))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if _, err := toml.Decode(expandEnvVars(string(data)), cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if cfg.TimeoutRaw != "" {
		cfg.Timeout, err = time.ParseDuration(cfg.TimeoutRaw)
		if err != nil {
			return nil, fmt.Errorf("parsing timeout %q: %w", cfg.TimeoutRaw, err)
		}
	}

	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if u := firstNonEmpty(o.APIURL, o.PublicAPIURL); u != "" {
		cfg.APIURL = u
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}

	if err := validateAPIURL(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("validating config: timeout must not be negative")
	}
	return cfg, nil
}
