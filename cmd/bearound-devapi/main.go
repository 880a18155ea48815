// ABOUTME: In-memory stand-in for the bearound admin API, for local development and e2e runs
// ABOUTME: Usage: bearound-devapi [-addr 127.0.0.1:5001] [-secret s] [-log-level debug]
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/bearound/bearound-admin/internal/devapi"
	"github.com/bearound/bearound-admin/internal/logging"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:5001", "listen address")
	secret := flag.String("secret", os.Getenv("BEAROUND_DEVAPI_SECRET"), "token signing secret (random when empty)")
	ttl := flag.Duration("token-ttl", devapi.DefaultTokenTTL, "access token lifetime")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	if err := run(*addr, *secret, *ttl, *level); err != nil {
		log.Fatal(err)
	}
}

func run(addr, secret string, ttl time.Duration, level string) error {
	logger := logging.Setup(os.Stderr, level, "text")

	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("generating secret: %w", err)
		}
	}

	api, err := devapi.New(devapi.Config{Secret: key, TokenTTL: ttl})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	color.New(color.FgCyan).Fprintf(os.Stderr, "dev API on http://%s%s\n", addr, devapi.BasePath)
	fmt.Fprintf(os.Stderr, "  admin:  %s / %s\n", devapi.SeedAdminEmail, devapi.SeedAdminPassword)
	fmt.Fprintf(os.Stderr, "  member: %s / %s\n", devapi.SeedMemberEmail, devapi.SeedMemberPassword)
	logger.Info("dev api listening", "addr", addr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}
