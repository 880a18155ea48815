// ABOUTME: Request-scoped page state and the API client collaborators that read it
// ABOUTME: Tokens, notices, and login redirects are resolved per browser request

package webadmin

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/bearound/bearound-admin/internal/apiclient"
	"github.com/bearound/bearound-admin/internal/session"
)

type pageStateKey struct{}

// pageState is what one request knows about its browser.
type pageState struct {
	browserID string
	view      string
	csrfToken string
	sessions  *session.Store

	mu      sync.Mutex
	notices []apiclient.Notice
	toLogin bool
}

func withPageState(ctx context.Context, st *pageState) context.Context {
	return context.WithValue(ctx, pageStateKey{}, st)
}

func stateFrom(ctx context.Context) *pageState {
	st, _ := ctx.Value(pageStateKey{}).(*pageState)
	return st
}

func (st *pageState) notify(n apiclient.Notice) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, existing := range st.notices {
		if existing == n {
			return
		}
	}
	st.notices = append(st.notices, n)
}

func (st *pageState) drainNotices() []apiclient.Notice {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := st.notices
	st.notices = nil
	return out
}

func (st *pageState) redirectedToLogin() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.toLogin
}

// requestSession is the client's TokenSource.
type requestSession struct{}

func (requestSession) Token(ctx context.Context) string {
	if st := stateFrom(ctx); st != nil {
		return st.sessions.Token(ctx)
	}
	return ""
}

func (requestSession) Expire(ctx context.Context) error {
	if st := stateFrom(ctx); st != nil {
		return st.sessions.Expire(ctx)
	}
	return nil
}

// requestNotifier is the client's Notifier.
type requestNotifier struct{}

func (requestNotifier) Notify(ctx context.Context, n apiclient.Notice) {
	if st := stateFrom(ctx); st != nil {
		st.notify(n)
	}
}

// requestNavigator is the client's Navigator.
type requestNavigator struct {
	admin *Admin
}

func (requestNavigator) OnLoginView(ctx context.Context) bool {
	st := stateFrom(ctx)
	return st != nil && st.view == LoginPath
}

func (n requestNavigator) RedirectToLogin(ctx context.Context) {
	st := stateFrom(ctx)
	if st == nil {
		return
	}
	st.mu.Lock()
	already := st.toLogin
	st.toLogin = true
	st.mu.Unlock()
	if !already {
		n.admin.cache.DropScope(st.browserID)
	}
}

func noticeKey(bid string) string {
	return "notices/" + bid
}

// queueNotices stores the request's notices for the next render. The
// read and the write are separate store calls, so two mutations finishing
// at the same moment in one browser can drop each other's notices; the
// last writer wins.
func (a *Admin) queueNotices(ctx context.Context, st *pageState) {
	pending := st.drainNotices()
	if len(pending) == 0 {
		return
	}

	existing, ok, err := a.kv.Take(ctx, noticeKey(st.browserID))
	if err != nil {
		a.logger.Warn("failed to read queued notices", "error", err)
	}
	var queued []apiclient.Notice
	if ok {
		_ = json.Unmarshal(existing, &queued)
	}
	queued = append(queued, pending...)

	data, err := json.Marshal(queued)
	if err != nil {
		a.logger.Error("failed to encode notices", "error", err)
		return
	}
	if err := a.kv.Put(ctx, noticeKey(st.browserID), data, time.Now().Add(noticeTTL)); err != nil {
		a.logger.Warn("failed to queue notices", "error", err)
	}
}

// takeNotices returns queued notices followed by this request's own.
func (a *Admin) takeNotices(ctx context.Context, st *pageState) []apiclient.Notice {
	var out []apiclient.Notice
	data, ok, err := a.kv.Take(ctx, noticeKey(st.browserID))
	if err != nil {
		a.logger.Warn("failed to read queued notices", "error", err)
	}
	if ok {
		if err := json.Unmarshal(data, &out); err != nil {
			a.logger.Warn("dropping unreadable notices", "error", err)
			out = nil
		}
	}

	for _, n := range st.drainNotices() {
		dup := false
		for _, o := range out {
			if o == n {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, n)
		}
	}
	return out
}
