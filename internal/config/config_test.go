// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env overrides, validation, and the CLI TOML file

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BEAROUND_API_URL", "NEXT_PUBLIC_API_URL", "BEAROUND_HTTP_ADDR",
		"BEAROUND_DB_PATH", "BEAROUND_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_TS_KEY", "tskey-123")

	path := writeFile(t, t.TempDir(), "admin-web.yaml", `
server:
  http_addr: "0.0.0.0:8080"
database:
  path: "./admin.db"
api:
  url: "https://api.bearound.app/api/v1"
  timeout: "15s"
webadmin:
  stale_time: "1m"
  cache_size: 50
tailscale:
  enabled: true
  hostname: "bearound-admin"
  auth_key: "${TEST_TS_KEY}"
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("Server.HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.API.URL != "https://api.bearound.app/api/v1" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Errorf("API.Timeout = %v, want 15s", cfg.API.Timeout)
	}
	if cfg.WebAdmin.StaleTime != time.Minute {
		t.Errorf("WebAdmin.StaleTime = %v, want 1m", cfg.WebAdmin.StaleTime)
	}
	if cfg.WebAdmin.CacheSize != 50 {
		t.Errorf("WebAdmin.CacheSize = %d, want 50", cfg.WebAdmin.CacheSize)
	}
	if cfg.WebAdmin.SessionTTL != 7*24*time.Hour {
		t.Errorf("WebAdmin.SessionTTL = %v, want default", cfg.WebAdmin.SessionTTL)
	}
	if cfg.Tailscale.AuthKey != "tskey-123" {
		t.Errorf("Tailscale.AuthKey = %q, want expanded value", cfg.Tailscale.AuthKey)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q", cfg.Logging.Format)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.URL != DefaultAPIURL {
		t.Errorf("API.URL = %q, want %q", cfg.API.URL, DefaultAPIURL)
	}
	if cfg.API.Timeout != 0 {
		t.Errorf("API.Timeout = %v, want none", cfg.API.Timeout)
	}
	if cfg.WebAdmin.StaleTime != 30*time.Second {
		t.Errorf("WebAdmin.StaleTime = %v, want 30s", cfg.WebAdmin.StaleTime)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEXT_PUBLIC_API_URL", "http://legacy:5001/api/v1")
	t.Setenv("BEAROUND_DB_PATH", "/tmp/x.db")
	t.Setenv("BEAROUND_LOG_LEVEL", "error")

	path := writeFile(t, t.TempDir(), "c.yaml", "api:\n  url: \"http://file:1/api\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.URL != "http://legacy:5001/api/v1" {
		t.Errorf("API.URL = %q, want NEXT_PUBLIC_API_URL value", cfg.API.URL)
	}
	if cfg.Database.Path != "/tmp/x.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}

	t.Setenv("BEAROUND_API_URL", "http://primary:1/api/v1")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.URL != "http://primary:1/api/v1" {
		t.Errorf("API.URL = %q, want BEAROUND_API_URL to win", cfg.API.URL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad duration", "api:\n  timeout: \"soon\"\n", "api.timeout"},
		{"bad scheme", "api:\n  url: \"ftp://x\"\n", "http or https"},
		{"tailscale without hostname", "tailscale:\n  enabled: true\n", "tailscale.hostname"},
		{"no addr", "server:\n  http_addr: \"\"\n", "server.http_addr"},
		{"bad format", "logging:\n  format: \"xml\"\n", "logging.format"},
		{"bad yaml", "server: [", "parsing config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := writeFile(t, t.TempDir(), "c.yaml", tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("BEAROUND_ADMIN_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultPath(); got != filepath.Join("/xdg", "bearound", "admin-web.yaml") {
		t.Errorf("DefaultPath() = %q", got)
	}

	t.Setenv("BEAROUND_ADMIN_CONFIG", "/etc/bearound.yaml")
	if got := DefaultPath(); got != "/etc/bearound.yaml" {
		t.Errorf("DefaultPath() = %q", got)
	}
}

func TestLoadCLI(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := LoadCLI(dir)
	if err != nil {
		t.Fatalf("LoadCLI() error = %v", err)
	}
	if cfg.APIURL != DefaultAPIURL || cfg.Dir != dir {
		t.Errorf("defaults = %+v", cfg)
	}

	writeFile(t, dir, "admin.toml", "api_url = \"https://api.example.com/api/v1\"\ntimeout = \"5s\"\nlog_level = \"debug\"\n")
	cfg, err = LoadCLI(dir)
	if err != nil {
		t.Fatalf("LoadCLI() error = %v", err)
	}
	if cfg.APIURL != "https://api.example.com/api/v1" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}

	writeFile(t, dir, "admin.toml", "api_url = \"nope\"\n")
	if _, err := LoadCLI(dir); err == nil {
		t.Error("expected error for URL without scheme")
	}
}
