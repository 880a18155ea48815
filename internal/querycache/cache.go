// ABOUTME: TTL and size-bounded cache for API query results
// ABOUTME: Coalesces concurrent fetches per key and invalidates by key prefix

package querycache

import (
	"container/list"
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies a cached query.
type Key struct {
	Scope string
	Parts []string
}

// K builds a key.
func K(scope string, parts ...string) Key {
	return Key{Scope: scope, Parts: parts}
}

func (k Key) String() string {
	return k.Scope + "\x1f" + strings.Join(k.Parts, "\x1f")
}

func (k Key) hasPrefix(prefix []string) bool {
	if len(prefix) > len(k.Parts) {
		return false
	}
	for i, p := range prefix {
		if k.Parts[i] != p {
			return false
		}
	}
	return true
}

// cacheEntry stores a value and its position in the eviction order.
type cacheEntry struct {
	key      Key
	value    any
	storedAt time.Time
	element  *list.Element
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   *list.List // keys, least recently used at front
	ttl     time.Duration
	maxSize int
	gen     uint64
	group   singleflight.Group
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New creates a cache. A background goroutine periodically drops expired
// entries until Close.
func New(ttl time.Duration, maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	c := &Cache{
		entries: make(map[string]*cacheEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Fetch returns the cached value for key or runs fn to produce it.
// Errors are never cached. A value stored before the latest Invalidate
// started is not reused.
//
// Concurrent callers for one key share a single run of fn. It runs with the
// values of the first caller's context but not its cancellation, so a
// caller that gives up does not fail the others. Side effects tied to
// context values (API error notices, login redirects) happen once, for the
// first caller; the others only receive the error.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := c.lookup(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	gen := c.generation()
	flight := key.String() + "\x1e" + strconv.FormatUint(gen, 10)

	runCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flight, func() (any, error) {
		v, err := fn(runCtx)
		if err != nil {
			return nil, err
		}
		c.store(key, v, gen)
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		typed, _ := res.Val.(T)
		return typed, nil
	}
}

func (c *Cache) lookup(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key.String()]
	if !ok {
		return nil, false
	}
	if c.ttl <= 0 || c.now().Sub(entry.storedAt) >= c.ttl {
		c.removeLocked(entry)
		return nil, false
	}
	c.order.MoveToBack(entry.element)
	return entry.value, true
}

func (c *Cache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// store writes v unless an invalidation happened since gen was read.
func (c *Cache) store(key Key, v any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.ttl <= 0 {
		return
	}

	k := key.String()
	if entry, ok := c.entries[k]; ok {
		entry.value = v
		entry.storedAt = c.now()
		c.order.MoveToBack(entry.element)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(k)
	c.entries[k] = &cacheEntry{key: key, value: v, storedAt: c.now(), element: elem}
}

// Invalidate drops every key, in every scope, whose parts start with prefix.
// It returns the number of entries dropped.
func (c *Cache) Invalidate(prefix ...string) int {
	return c.drop(func(k Key) bool { return k.hasPrefix(prefix) })
}

// DropScope drops every key of one scope.
func (c *Cache) DropScope(scope string) int {
	return c.drop(func(k Key) bool { return k.Scope == scope })
}

func (c *Cache) drop(match func(Key) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	n := 0
	for _, entry := range c.entries {
		if match(entry.key) {
			c.removeLocked(entry)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, including expired ones not
// yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// removeLocked must be called with mu held.
func (c *Cache) removeLocked(entry *cacheEntry) {
	c.order.Remove(entry.element)
	delete(c.entries, entry.key.String())
}

// evictOldest must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	k, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.entries, k)
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runCleanup()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) runCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, entry := range c.entries {
		if now.Sub(entry.storedAt) >= c.ttl {
			c.removeLocked(entry)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
