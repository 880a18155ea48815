// ABOUTME: Key/value store interface shared by the SQLite and mock backends
// ABOUTME: Holds per-browser session and notice state for the web dashboard

package store

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrEmptyKey is returned when an operation is given an empty key.
var ErrEmptyKey = errors.New("empty key")

// KVStore is durable key/value storage with optional per-entry expiry.
type KVStore interface {
	// Get returns the value for key. ok is false if the key is absent
	// or expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put stores value under key. A zero expiresAt never expires.
	Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error

	// Take returns the value for key and removes it in one step.
	Take(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteExpired removes every expired entry and reports how many.
	DeleteExpired(ctx context.Context) (int64, error)

	Close() error
}

// StartJanitor runs DeleteExpired every interval until ctx is done.
func StartJanitor(ctx context.Context, kv KVStore, interval time.Duration) {
	logger := slog.Default().With("component", "store")
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := kv.DeleteExpired(ctx)
				if err != nil {
					if ctx.Err() == nil {
						logger.Warn("failed to sweep expired entries", "error", err)
					}
					continue
				}
				if n > 0 {
					logger.Debug("swept expired entries", "count", n)
				}
			}
		}
	}()
}

func expired(expiresAt time.Time, now time.Time) bool {
	return !expiresAt.IsZero() && !now.Before(expiresAt)
}
