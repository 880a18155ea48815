// ABOUTME: Entry point for the bearound admin web dashboard
// ABOUTME: serve runs the dashboard; init writes a starter config; health probes a running server

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/bearound/bearound-admin/internal/config"
	"github.com/bearound/bearound-admin/internal/logging"
	"github.com/bearound/bearound-admin/internal/server"
)

// Version is set at build time.
var version = "dev"

const banner = `
  _                                         _               _           _
 | |__   ___  __ _ _ __ ___  _   _ _ __   __| |   __ _  __| |_ __ ___ (_)_ __
 | '_ \ / _ \/ _' | '__/ _ \| | | | '_ \ / _' |  / _' |/ _' | '_ ' _ \| | '_ \
 | |_) |  __/ (_| | | | (_) | |_| | | | | (_| | | (_| | (_| | | | | | | | | | |
 |_.__/ \___|\__,_|_|  \___/ \__,_|_| |_|\__,_|  \__,_|\__,_|_| |_| |_|_|_| |_|
`

const starterConfig = `# bearound admin dashboard
server:
  http_addr: "127.0.0.1:3000"

api:
  url: "${BEAROUND_API_URL}"
  timeout: "15s"

database:
  path: "%s"

webadmin:
  stale_time: "30s"
  cache_size: 1000
  session_ttl: "168h"
  secure_cookies: false

tailscale:
  enabled: false
  hostname: "bearound-admin"
  auth_key: "${TS_AUTHKEY}"
  ephemeral: false
  https: false

logging:
  level: "info"
  format: "text"
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: bearound-admin-web <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the dashboard")
		fmt.Println("  init     Write a starter config file")
		fmt.Println("  health   Check a running dashboard")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := config.DefaultPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("API:       %s\n", cfg.API.URL)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Print("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	} else {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	}
	fmt.Println()

	logger.Info("starting bearound-admin-web",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"api_url", cfg.API.URL,
	)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return srv.Run(ctx)
}

// dataPath returns XDG_DATA_HOME/bearound or ~/.local/share/bearound.
func dataPath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "data"
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "bearound")
}

func runInit() error {
	configPath := config.DefaultPath()
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists at %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	dbPath := filepath.Join(dataPath(), "admin-web.db")
	if err := os.WriteFile(configPath, fmt.Appendf(nil, starterConfig, dbPath), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	color.New(color.FgGreen).Print("✓ ")
	fmt.Printf("Wrote %s\n", configPath)
	fmt.Println("  Set BEAROUND_API_URL or edit api.url, then run: bearound-admin-web serve")
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health/ready", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	fmt.Println("healthy")
	return nil
}
