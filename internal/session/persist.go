// ABOUTME: Durable storage port for the serialized session and its adapters
// ABOUTME: File (CLI), KV-backed (web dashboard) and in-memory (tests)

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNotPersisted is returned by Persister.Load when nothing is stored.
var ErrNotPersisted = errors.New("no persisted session")

// Persister is durable storage for one serialized session.
// Clear on an empty store is not an error.
type Persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// FilePersister stores the session in a single file with owner-only
// permissions.
type FilePersister struct {
	path string
}

// NewFilePersister stores the session at path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// NewDirPersister stores the session as <StorageKey>.json inside dir.
func NewDirPersister(dir string) *FilePersister {
	return NewFilePersister(filepath.Join(dir, StorageKey+".json"))
}

// Path returns the file the session is stored in.
func (p *FilePersister) Path() string {
	return p.path
}

func (p *FilePersister) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotPersisted
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p.path, err)
	}
	return data, nil
}

// Save writes through a temp file and rename so readers never see a
// half-written session.
func (p *FilePersister) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".auth-storage-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing session: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting session permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing session file: %w", err)
	}
	if err := os.Rename(tmpName, p.path); err != nil {
		return fmt.Errorf("replacing session file: %w", err)
	}
	return nil
}

func (p *FilePersister) Clear(_ context.Context) error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", p.path, err)
	}
	return nil
}

// KV is the subset of a key/value backend the session needs.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error
	Delete(ctx context.Context, key string) error
}

// KVPersister stores the session under StorageKey/<scope> in a KV backend.
type KVPersister struct {
	kv  KV
	key string
	ttl time.Duration
}

// NewKVPersister scopes the session to scope (a browser id). Entries
// expire after ttl; zero means never.
func NewKVPersister(kv KV, scope string, ttl time.Duration) *KVPersister {
	return &KVPersister{kv: kv, key: StorageKey + "/" + scope, ttl: ttl}
}

// Key returns the storage key this persister writes.
func (p *KVPersister) Key() string {
	return p.key
}

func (p *KVPersister) Load(ctx context.Context) ([]byte, error) {
	data, ok, err := p.kv.Get(ctx, p.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotPersisted
	}
	return data, nil
}

func (p *KVPersister) Save(ctx context.Context, data []byte) error {
	var expiresAt time.Time
	if p.ttl > 0 {
		expiresAt = time.Now().Add(p.ttl)
	}
	return p.kv.Put(ctx, p.key, data, expiresAt)
}

func (p *KVPersister) Clear(ctx context.Context) error {
	return p.kv.Delete(ctx, p.key)
}

// MemoryPersister keeps the session in process memory.
type MemoryPersister struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryPersister returns an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (p *MemoryPersister) Load(_ context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return nil, ErrNotPersisted
	}
	return append([]byte(nil), p.data...), nil
}

func (p *MemoryPersister) Save(_ context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = append([]byte(nil), data...)
	p.saves++
	return nil
}

func (p *MemoryPersister) Clear(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = nil
	return nil
}

// Saves reports how many times Save was called.
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}
