// ABOUTME: Unit tests for MockStore clock control and bookkeeping
// ABOUTME: The shared KVStore contract lives in store_test.go

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_ClockDrivesExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMockStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return now })

	require.NoError(t, m.Put(ctx, "notice", []byte("hi"), now.Add(10*time.Minute)))
	require.NoError(t, m.Put(ctx, "session", []byte("s"), now.Add(10*time.Minute)))

	_, ok, err := m.Get(ctx, "notice")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(11 * time.Minute)
	_, ok, err = m.Take(ctx, "notice")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries are invisible to Take")
	assert.Equal(t, 1, m.Len(), "Take removes the key even when expired")

	_, ok, err = m.Get(ctx, "session")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries are invisible to Get")
	assert.Equal(t, 1, m.Len(), "Get leaves expired entries for the sweeper")

	n, err := m.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Zero(t, m.Len())
}

func TestMockStore_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMockStore()

	v := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", v, time.Time{}))
	v[0] = 'X'

	got, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
