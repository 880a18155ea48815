// ABOUTME: Persisted auth store applying session transitions atomically
// ABOUTME: SetAuth persists before swapping state in; Logout always resets

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Store is the single source of truth for who is logged in.
// It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	state     Session
	persister Persister
	logger    *slog.Logger
}

// NewStore creates an anonymous store backed by p. A nil p keeps the
// session in memory only.
func NewStore(p Persister) *Store {
	if p == nil {
		p = NewMemoryPersister()
	}
	return &Store{
		persister: p,
		logger:    slog.Default().With("component", "session"),
	}
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Rehydrate restores the session from durable storage. A missing entry
// leaves the store anonymous. A corrupt entry is cleared and reported.
func (s *Store) Rehydrate(ctx context.Context) error {
	data, err := s.persister.Load(ctx)
	if errors.Is(err, ErrNotPersisted) {
		s.swap(Anonymous())
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	restored, err := Decode(data)
	if err != nil {
		s.logger.Warn("discarding unreadable session", "error", err)
		s.swap(Anonymous())
		if clearErr := s.persister.Clear(ctx); clearErr != nil {
			return fmt.Errorf("clearing corrupt session: %w", clearErr)
		}
		return err
	}

	s.swap(restored)
	return nil
}

// SetAuth records user and token as the current session. The durable
// copy is written first; on failure the in-memory state is untouched.
func (s *Store) SetAuth(ctx context.Context, user User, token string) error {
	next := Authenticated(user, token)

	data, err := Encode(next)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.persister.Save(ctx, data); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	s.swap(next)
	s.logger.Debug("session authenticated", "user_id", user.ID, "role", user.Role)
	return nil
}

// Logout clears the durable copy and resets to anonymous. The reset
// happens even if clearing storage fails; that error is still returned.
func (s *Store) Logout(ctx context.Context) error {
	clearErr := s.persister.Clear(ctx)
	s.swap(Anonymous())
	if clearErr != nil {
		return fmt.Errorf("clearing session: %w", clearErr)
	}
	return nil
}

// Token returns the current bearer token, or "" when anonymous.
func (s *Store) Token(_ context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Expire ends the session after the server rejected its token.
func (s *Store) Expire(ctx context.Context) error {
	return s.Logout(ctx)
}

func (s *Store) swap(next Session) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}
