// ABOUTME: Contract tests run against both KVStore implementations
// ABOUTME: Covers get/put/take/delete, expiry and session persistence through KV

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bearound/bearound-admin/internal/session"
)

func backends(t *testing.T) map[string]KVStore {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "admin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]KVStore{
		"sqlite": sqlite,
		"mock":   NewMockStore(),
	}
}

func TestKVStore_PutGetDelete(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := kv.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Put(ctx, "k", []byte("v1"), time.Time{}))
			require.NoError(t, kv.Put(ctx, "k", []byte("v2"), time.Time{}))

			got, ok, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("v2"), got)

			require.NoError(t, kv.Delete(ctx, "k"))
			require.NoError(t, kv.Delete(ctx, "k"))

			_, ok, err = kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestKVStore_Take(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, kv.Put(ctx, "notices/b1", []byte("[1]"), time.Time{}))

			got, ok, err := kv.Take(ctx, "notices/b1")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("[1]"), got)

			_, ok, err = kv.Take(ctx, "notices/b1")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestKVStore_Expiry(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			past := time.Now().Add(-time.Minute)
			future := time.Now().Add(time.Hour)

			require.NoError(t, kv.Put(ctx, "old", []byte("x"), past))
			require.NoError(t, kv.Put(ctx, "new", []byte("y"), future))
			require.NoError(t, kv.Put(ctx, "forever", []byte("z"), time.Time{}))

			_, ok, err := kv.Get(ctx, "old")
			require.NoError(t, err)
			assert.False(t, ok, "expired entry must be invisible")

			n, err := kv.DeleteExpired(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			for _, key := range []string{"new", "forever"} {
				_, ok, err := kv.Get(ctx, key)
				require.NoError(t, err)
				assert.True(t, ok, key)
			}
		})
	}
}

func TestKVStore_EmptyKey(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.ErrorIs(t, kv.Put(ctx, "", nil, time.Time{}), ErrEmptyKey)
			_, _, err := kv.Get(ctx, "")
			assert.ErrorIs(t, err, ErrEmptyKey)
		})
	}
}

func TestKVStore_BacksSessionPersister(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := session.NewKVPersister(kv, "browser-1", time.Hour)
			assert.Equal(t, "auth-storage/browser-1", p.Key())

			st := session.NewStore(p)
			user := session.User{ID: "u1", Email: "a@b.c", Username: "a", Role: session.AdminRole}
			require.NoError(t, st.SetAuth(ctx, user, "tok"))

			again := session.NewStore(session.NewKVPersister(kv, "browser-1", time.Hour))
			require.NoError(t, again.Rehydrate(ctx))
			assert.True(t, again.Snapshot().IsAdmin())

			other := session.NewStore(session.NewKVPersister(kv, "browser-2", time.Hour))
			require.NoError(t, other.Rehydrate(ctx))
			assert.False(t, other.Snapshot().IsAuthenticated)

			require.NoError(t, again.Logout(ctx))
			_, ok, err := kv.Get(ctx, p.Key())
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStartJanitor_SweepsUntilCancelled(t *testing.T) {
	kv := NewMockStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, kv.Put(ctx, "old", []byte("x"), time.Now().Add(-time.Second)))
	StartJanitor(ctx, kv, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return kv.Len() == 0 }, time.Second, 10*time.Millisecond)
}
