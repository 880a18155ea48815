// ABOUTME: Mock KVStore implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sync"
	"time"
)

type mockEntry struct {
	value     []byte
	expiresAt time.Time
}

// MockStore is an in-memory KVStore implementation for testing.
type MockStore struct {
	mu      sync.RWMutex
	entries map[string]mockEntry
	now     func() time.Time
}

var _ KVStore = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		entries: make(map[string]mockEntry),
		now:     time.Now,
	}
}

// SetClock overrides the time source used for expiry checks.
func (m *MockStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Get returns a copy of the value for key.
func (m *MockStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || expired(e.expiresAt, m.now()) {
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Put stores a copy of value.
func (m *MockStore) Put(_ context.Context, key string, value []byte, expiresAt time.Time) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = mockEntry{value: append([]byte(nil), value...), expiresAt: expiresAt}
	return nil
}

// Take returns the value for key and removes it.
func (m *MockStore) Take(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	delete(m.entries, key)
	if !ok || expired(e.expiresAt, m.now()) {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Delete removes key.
func (m *MockStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// DeleteExpired removes expired entries.
func (m *MockStore) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var n int64
	for k, e := range m.entries {
		if expired(e.expiresAt, now) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

// Len reports how many entries are held, expired or not.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}
