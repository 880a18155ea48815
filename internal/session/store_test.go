// ABOUTME: Tests for the persisted auth store transitions
// ABOUTME: Covers atomic SetAuth/Logout, rehydration and persistence failures

package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAdmin = User{ID: "u1", Email: "admin@bearound.app", Username: "admin", Role: AdminRole}

type failingPersister struct {
	MemoryPersister
	saveErr  error
	clearErr error
}

func (p *failingPersister) Save(ctx context.Context, data []byte) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	return p.MemoryPersister.Save(ctx, data)
}

func (p *failingPersister) Clear(ctx context.Context) error {
	if p.clearErr != nil {
		return p.clearErr
	}
	return p.MemoryPersister.Clear(ctx)
}

func TestSetAuth_ThenSnapshot(t *testing.T) {
	ctx := context.Background()
	st := NewStore(NewMemoryPersister())

	require.NoError(t, st.SetAuth(ctx, testAdmin, "tok-1"))

	got := st.Snapshot()
	assert.True(t, got.IsAuthenticated)
	assert.Equal(t, "tok-1", got.Token)
	require.NotNil(t, got.User)
	assert.Equal(t, testAdmin, *got.User)
	assert.True(t, got.IsAdmin())
}

func TestSetAuthThenLogout_RestoresInitialState(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	st := NewStore(p)
	initial := st.Snapshot()

	require.NoError(t, st.SetAuth(ctx, testAdmin, "tok-1"))
	require.NoError(t, st.SetAuth(ctx, testAdmin, "tok-2"))
	require.NoError(t, st.Logout(ctx))

	assert.Equal(t, initial, st.Snapshot())
	_, err := p.Load(ctx)
	assert.ErrorIs(t, err, ErrNotPersisted)
	assert.Empty(t, st.Token(ctx))
}

func TestLogout_Idempotent(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	st := NewStore(p)
	require.NoError(t, st.SetAuth(ctx, testAdmin, "tok"))

	require.NoError(t, st.Logout(ctx))
	once := st.Snapshot()
	require.NoError(t, st.Logout(ctx))

	assert.Equal(t, once, st.Snapshot())
	assert.Equal(t, Anonymous(), st.Snapshot())
}

func TestSetAuth_PersistFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	p := &failingPersister{saveErr: errors.New("disk full")}
	st := NewStore(p)

	err := st.SetAuth(ctx, testAdmin, "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, Anonymous(), st.Snapshot())
}

func TestLogout_ClearFailureStillResets(t *testing.T) {
	ctx := context.Background()
	p := &failingPersister{}
	st := NewStore(p)
	require.NoError(t, st.SetAuth(ctx, testAdmin, "tok"))

	p.clearErr = errors.New("read-only")
	err := st.Logout(ctx)
	require.Error(t, err)
	assert.Equal(t, Anonymous(), st.Snapshot())
}

func TestSnapshot_IsACopy(t *testing.T) {
	ctx := context.Background()
	st := NewStore(nil)
	require.NoError(t, st.SetAuth(ctx, testAdmin, "tok"))

	snap := st.Snapshot()
	snap.User.Role = "member"

	assert.Equal(t, AdminRole, st.Snapshot().User.Role)
}

func TestSnapshot_NeverObservesPartialState(t *testing.T) {
	ctx := context.Background()
	st := NewStore(nil)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	bad := make(chan Session, 1)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if s := st.Snapshot(); !s.Valid() {
					select {
					case bad <- s:
					default:
					}
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		require.NoError(t, st.SetAuth(ctx, testAdmin, "tok"))
		require.NoError(t, st.Logout(ctx))
	}
	close(stop)
	wg.Wait()

	select {
	case s := <-bad:
		t.Fatalf("observed partial session: %+v", s)
	default:
	}
}

func TestRehydrate_RestoresPersistedSession(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	require.NoError(t, NewStore(p).SetAuth(ctx, testAdmin, "tok-9"))

	restored := NewStore(p)
	require.NoError(t, restored.Rehydrate(ctx))

	got := restored.Snapshot()
	assert.True(t, got.IsAdmin())
	assert.Equal(t, "tok-9", got.Token)
}

func TestRehydrate_EmptyStorageIsAnonymous(t *testing.T) {
	st := NewStore(NewMemoryPersister())
	require.NoError(t, st.Rehydrate(context.Background()))
	assert.Equal(t, Anonymous(), st.Snapshot())
}

func TestRehydrate_CorruptEntryIsDiscarded(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "{nope"},
		{name: "user without token", data: `{"state":{"user":{"_id":"u1","role":"admin"},"token":null,"isAuthenticated":true},"version":0}`},
		{name: "token without flag", data: `{"state":{"user":null,"token":"t","isAuthenticated":false},"version":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewMemoryPersister()
			require.NoError(t, p.Save(ctx, []byte(tt.data)))

			st := NewStore(p)
			err := st.Rehydrate(ctx)
			assert.ErrorIs(t, err, ErrCorruptSession)
			assert.Equal(t, Anonymous(), st.Snapshot())

			_, loadErr := p.Load(ctx)
			assert.ErrorIs(t, loadErr, ErrNotPersisted)
		})
	}
}

func TestEncode_AnonymousTokenIsNull(t *testing.T) {
	data, err := Encode(Anonymous())
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":{"user":null,"token":null,"isAuthenticated":false},"version":0}`, string(data))
}

func TestUser_AcceptsPlainID(t *testing.T) {
	s, err := Decode([]byte(`{"state":{"user":{"id":"abc","email":"a@b.c","username":"a","role":"admin"},"token":"t","isAuthenticated":true}}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", s.User.ID)
}

func TestFilePersister_RoundTripAndPermissions(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "bearound")
	p := NewDirPersister(dir)
	assert.Equal(t, filepath.Join(dir, "auth-storage.json"), p.Path())

	_, err := p.Load(ctx)
	require.ErrorIs(t, err, ErrNotPersisted)

	st := NewStore(p)
	require.NoError(t, st.SetAuth(ctx, testAdmin, "tok"))

	info, err := os.Stat(p.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	again := NewStore(p)
	require.NoError(t, again.Rehydrate(ctx))
	assert.Equal(t, "tok", again.Token(ctx))

	require.NoError(t, again.Logout(ctx))
	require.NoError(t, again.Logout(ctx))
	_, err = os.Stat(p.Path())
	assert.True(t, os.IsNotExist(err))
}
