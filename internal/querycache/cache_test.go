// ABOUTME: Tests for the query cache used by dashboard pages.
// ABOUTME: Validates hits, TTL, eviction, invalidation, and fetch coalescing.

package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(val string, n *atomic.Int32) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		n.Add(1)
		return val, nil
	}
}

func TestFetch_HitsCache(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	var calls atomic.Int32
	ctx := context.Background()
	key := K("b1", "reports", "page=1")

	v, err := Fetch(ctx, c, key, counter("first", &calls))
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	v, err = Fetch(ctx, c, key, counter("second", &calls))
	require.NoError(t, err)
	assert.Equal(t, "first", v)
	assert.EqualValues(t, 1, calls.Load())
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	var calls atomic.Int32
	ctx := context.Background()

	_, _ = Fetch(ctx, c, K("b1", "reports", "page=1"), counter("a", &calls))
	_, _ = Fetch(ctx, c, K("b2", "reports", "page=2"), counter("a", &calls))
	_, _ = Fetch(ctx, c, K("b1", "report", "r1"), counter("a", &calls))
	_, _ = Fetch(ctx, c, K("b1", "users"), counter("a", &calls))

	assert.Equal(t, 2, c.Invalidate("reports"))
	assert.Equal(t, 2, c.Len())

	v, err := Fetch(ctx, c, K("b1", "reports", "page=1"), counter("fresh", &calls))
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)

	assert.Equal(t, 1, c.Invalidate("report", "r1"))
	assert.Equal(t, 0, c.Invalidate("report", "r2"))
}

func TestDropScope(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	var calls atomic.Int32
	ctx := context.Background()
	_, _ = Fetch(ctx, c, K("b1", "users"), counter("a", &calls))
	_, _ = Fetch(ctx, c, K("b1", "blocks"), counter("a", &calls))
	_, _ = Fetch(ctx, c, K("b2", "users"), counter("a", &calls))

	assert.Equal(t, 2, c.DropScope("b1"))
	assert.Equal(t, 1, c.Len())
}

func TestFetch_TTL(t *testing.T) {
	c := New(30*time.Second, 10)
	defer c.Close()

	now := time.Unix(1_700_000_000, 0)
	var mu sync.Mutex
	c.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	var calls atomic.Int32
	ctx := context.Background()
	key := K("b1", "dashboard")

	_, _ = Fetch(ctx, c, key, counter("a", &calls))
	mu.Lock()
	now = now.Add(29 * time.Second)
	mu.Unlock()
	_, _ = Fetch(ctx, c, key, counter("a", &calls))
	assert.EqualValues(t, 1, calls.Load())

	mu.Lock()
	now = now.Add(2 * time.Second)
	mu.Unlock()
	_, _ = Fetch(ctx, c, key, counter("a", &calls))
	assert.EqualValues(t, 2, calls.Load())
}

func TestFetch_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New(time.Minute, 2)
	defer c.Close()

	var calls atomic.Int32
	ctx := context.Background()

	_, _ = Fetch(ctx, c, K("b", "1"), counter("1", &calls))
	_, _ = Fetch(ctx, c, K("b", "2"), counter("2", &calls))
	_, _ = Fetch(ctx, c, K("b", "1"), counter("1", &calls)) // touch 1
	_, _ = Fetch(ctx, c, K("b", "3"), counter("3", &calls)) // evicts 2
	assert.EqualValues(t, 3, calls.Load())

	_, _ = Fetch(ctx, c, K("b", "1"), counter("1", &calls))
	assert.EqualValues(t, 3, calls.Load())

	_, _ = Fetch(ctx, c, K("b", "2"), counter("2", &calls))
	assert.EqualValues(t, 4, calls.Load())
}

func TestFetch_ErrorsNotCached(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	boom := errors.New("boom")
	ctx := context.Background()
	_, err := Fetch(ctx, c, K("b", "x"), func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := Fetch(ctx, c, K("b", "x"), func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFetch_CoalescesConcurrentCalls(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := Fetch(context.Background(), c, K("b1", "analytics", "days=30"), fn)
			assert.NoError(t, err)
			results[i] = v
		}()
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

func TestFetch_InvalidateDuringFlightDropsResult(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Fetch(context.Background(), c, K("b1", "users"), func(context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()

	<-started
	c.Invalidate("users")
	close(release)
	<-done

	assert.Equal(t, 0, c.Len())
}

func TestFetch_ContextCancelled(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Fetch(ctx, c, K("b1", "slow"), func(context.Context) (string, error) {
		<-release
		return "late", nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetch_FirstCallerCancelDoesNotFailWaiters(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	key := K("b1", "dashboard")
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	var runErr error
	fn := func(ctx context.Context) (string, error) {
		calls.Add(1)
		close(started)
		<-release
		runErr = ctx.Err()
		return "stats", nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := Fetch(firstCtx, c, key, fn)
		firstDone <- err
	}()
	<-started

	type result struct {
		v   string
		err error
	}
	waiter := make(chan result, 1)
	go func() {
		v, err := Fetch(context.Background(), c, key, fn)
		waiter <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstDone, context.Canceled)

	close(release)
	got := <-waiter
	require.NoError(t, got.err)
	assert.Equal(t, "stats", got.v)
	assert.NoError(t, runErr, "the shared run outlives the first caller")
	assert.EqualValues(t, 1, calls.Load())
}

func TestClose_Idempotent(t *testing.T) {
	c := New(time.Minute, 10)
	c.Close()
	c.Close()
}
