// ABOUTME: Route guard deciding whether a session may see admin pages
// ABOUTME: Pure state evaluation plus the redirecting HTTP middleware

package guard

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/bearound/bearound-admin/internal/session"
)

// State is where a request stands in the guard's check.
type State int

const (
	Unchecked State = iota
	Checking
	Authorized
	Unauthorized
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	default:
		return "unchecked"
	}
}

// Evaluate is Authorized iff the session is authenticated and its user
// has the admin role.
func Evaluate(s session.Session) State {
	if s.IsAdmin() {
		return Authorized
	}
	return Unauthorized
}

// SessionLoader returns the rehydrated session for a request.
type SessionLoader interface {
	LoadSession(r *http.Request) (session.Session, error)
}

// SessionLoaderFunc adapts a function to SessionLoader.
type SessionLoaderFunc func(r *http.Request) (session.Session, error)

func (f SessionLoaderFunc) LoadSession(r *http.Request) (session.Session, error) { return f(r) }

type contextKey struct{}

// FromContext returns the authorized session stored by the middleware.
func FromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(contextKey{}).(session.Session)
	return s, ok
}

// Guard wraps protected handlers.
type Guard struct {
	loader    SessionLoader
	loginPath string
	logger    *slog.Logger
}

// New builds a guard redirecting to loginPath.
func New(loader SessionLoader, loginPath string) *Guard {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Guard{
		loader:    loader,
		loginPath: loginPath,
		logger:    slog.Default().With("component", "guard"),
	}
}

// Check runs the guard for one request and returns the final state.
func (g *Guard) Check(r *http.Request) (State, session.Session) {
	g.logger.Debug("guard decision", "path", r.URL.Path, "state", Checking)
	sess, err := g.loader.LoadSession(r)
	if err != nil {
		g.logger.Warn("session rehydrate failed", "error", err, "path", r.URL.Path)
		return Unauthorized, session.Anonymous()
	}
	state := Evaluate(sess)
	g.logger.Debug("guard decision", "path", r.URL.Path, "state", state)
	return state, sess
}

var placeholder = template.Must(template.New("redirect").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><meta http-equiv="refresh" content="0; url={{.}}"><title>Loading</title></head>
<body><div class="loading" role="status">Loading...</div></body></html>
`))

// Require renders next only for authorized sessions. Everyone else gets a
// 303 to the login page with a loading placeholder body.
func (g *Guard) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, sess := g.Check(r)
		if state != Authorized {
			w.Header().Set("Location", g.loginPath)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Cache-Control", "no-store")
			w.WriteHeader(http.StatusSeeOther)
			if r.Method != http.MethodHead {
				_ = placeholder.Execute(w, g.loginPath)
			}
			return
		}
		ctx := context.WithValue(r.Context(), contextKey{}, sess)
		next(w, r.WithContext(ctx))
	}
}
