// ABOUTME: Web dashboard for bearound moderators
// ABOUTME: Browser cookies, CSRF, per-request page state, and route registration

package webadmin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bearound/bearound-admin/internal/adminapi"
	"github.com/bearound/bearound-admin/internal/apiclient"
	"github.com/bearound/bearound-admin/internal/assets"
	"github.com/bearound/bearound-admin/internal/guard"
	"github.com/bearound/bearound-admin/internal/querycache"
	"github.com/bearound/bearound-admin/internal/session"
	"github.com/bearound/bearound-admin/internal/store"
)

const (
	// BrowserCookieName identifies a browser and scopes its session
	BrowserCookieName = "bearound_admin_bid"

	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "bearound_admin_csrf"

	// LoginPath is the login view
	LoginPath = "/login"

	// DefaultSessionTTL is how long a persisted session lasts
	DefaultSessionTTL = 7 * 24 * time.Hour

	// noticeTTL bounds how long an undelivered notice is kept
	noticeTTL = 10 * time.Minute
)

// Config holds dashboard configuration
type Config struct {
	APIURL        string
	APITimeout    time.Duration
	HTTPClient    *http.Client
	StaleTime     time.Duration
	CacheSize     int
	SessionTTL    time.Duration
	SecureCookies bool
}

// Admin serves the dashboard pages.
type Admin struct {
	kv        store.KVStore
	api       *adminapi.API
	client    *apiclient.Client
	cache     *querycache.Cache
	guard     *guard.Guard
	templates map[string]*template.Template
	config    Config
	logger    *slog.Logger
}

// New builds the dashboard. One API client is shared by every request;
// its collaborators read the request's page state from the context.
func New(kv store.KVStore, cfg Config) (*Admin, error) {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}

	a := &Admin{
		kv:     kv,
		cache:  querycache.New(cfg.StaleTime, cfg.CacheSize),
		config: cfg,
		logger: slog.Default().With("component", "webadmin"),
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL:    cfg.APIURL,
		Timeout:    cfg.APITimeout,
		HTTPClient: cfg.HTTPClient,
	}, requestSession{}, requestNotifier{}, requestNavigator{admin: a})
	if err != nil {
		a.cache.Close()
		return nil, fmt.Errorf("creating api client: %w", err)
	}
	a.client = client
	a.api = adminapi.New(client)
	a.guard = guard.New(guard.SessionLoaderFunc(a.loadSession), LoginPath)

	a.templates, err = parseTemplates()
	if err != nil {
		a.cache.Close()
		return nil, err
	}

	return a, nil
}

// Close releases the query cache.
func (a *Admin) Close() {
	a.cache.Close()
}

// RegisterRoutes registers all dashboard routes on the given mux
func (a *Admin) RegisterRoutes(mux *http.ServeMux) {
	// Public routes
	mux.Handle("GET /static/", http.StripPrefix("/static", assets.FileServer()))
	mux.HandleFunc("GET /login", a.withState(a.handleLoginPage))
	mux.HandleFunc("POST /login", a.withState(a.handleLogin))
	mux.HandleFunc("POST /logout", a.withState(a.handleLogout))

	// Read views
	mux.HandleFunc("GET /{$}", a.protected(a.handleRoot))
	mux.HandleFunc("GET /dashboard", a.protected(a.handleDashboard))
	mux.HandleFunc("GET /users", a.protected(a.handleUsers))
	mux.HandleFunc("GET /users/{id}", a.protected(a.handleUserDetail))
	mux.HandleFunc("GET /reports", a.protected(a.handleReports))
	mux.HandleFunc("GET /reports/{id}", a.protected(a.handleReportDetail))
	mux.HandleFunc("GET /blocks", a.protected(a.handleBlocks))
	mux.HandleFunc("GET /blocks/{id}", a.protected(a.handleBlockDetail))
	mux.HandleFunc("GET /feedback", a.protected(a.handleFeedback))
	mux.HandleFunc("GET /feedback/{id}", a.protected(a.handleFeedbackDetail))
	mux.HandleFunc("GET /analytics", a.protected(a.handleAnalytics))
	mux.HandleFunc("GET /activity-logs", a.protected(a.handleActivityLogs))
	mux.HandleFunc("GET /features", a.protected(a.handleFeatures))
	mux.HandleFunc("GET /limits", a.protected(a.handleLimits))
	mux.HandleFunc("GET /settings", a.protected(a.handleSettings))
	mux.HandleFunc("GET /content", a.protected(a.handleContent))
	mux.HandleFunc("GET /premium", a.protected(a.handlePremium))

	// Mutations
	mux.HandleFunc("POST /users/{id}/status", a.protected(a.handleUserStatus))
	mux.HandleFunc("POST /reports/{id}/resolve", a.protected(a.handleResolveReport))
	mux.HandleFunc("POST /blocks/{id}/remove", a.protected(a.handleRemoveBlock))
	mux.HandleFunc("POST /feedback/{id}", a.protected(a.handleUpdateFeedback))
	mux.HandleFunc("POST /features/{key}", a.protected(a.handleToggleFlag))
	mux.HandleFunc("POST /limits", a.protected(a.handleUpdateLimits))
	mux.HandleFunc("POST /limits/chat-payment", a.protected(a.handleUpdateChatPayment))
	mux.HandleFunc("POST /settings", a.protected(a.handleUpdateSettings))
	mux.HandleFunc("POST /content/support", a.protected(a.handleUpdateSupportContent))
	mux.HandleFunc("POST /content/legal", a.protected(a.handleUpdateLegalContent))
	mux.HandleFunc("POST /premium/mode", a.protected(a.handlePremiumMode))
	mux.HandleFunc("POST /premium/features/{id}/toggle", a.protected(a.handleTogglePremiumFeature))
	mux.HandleFunc("POST /premium/features/{id}", a.protected(a.handleUpdatePremiumFeature))
	mux.HandleFunc("POST /premium/plans/{id}", a.protected(a.handleUpdatePremiumPlan))

	a.logger.Info("dashboard routes registered", "api_url", a.client.BaseURL())
}

// protected wraps a page with page state and the route guard
func (a *Admin) protected(next http.HandlerFunc) http.HandlerFunc {
	return a.withState(a.guard.Require(next))
}

// withState attaches the browser id, CSRF token, and page state
func (a *Admin) withState(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bid := a.ensureBrowserID(w, r)
		csrfToken := a.ensureCSRFToken(w, r)

		st := &pageState{
			browserID: bid,
			view:      r.URL.Path,
			csrfToken: csrfToken,
			sessions:  a.sessionStore(bid),
		}
		next(w, r.WithContext(withPageState(r.Context(), st)))
	}
}

func (a *Admin) sessionStore(bid string) *session.Store {
	return session.NewStore(session.NewKVPersister(a.kv, bid, a.config.SessionTTL))
}

// loadSession rehydrates the browser's session for the guard
func (a *Admin) loadSession(r *http.Request) (session.Session, error) {
	st := stateFrom(r.Context())
	if st == nil {
		return session.Anonymous(), fmt.Errorf("no page state")
	}
	if err := st.sessions.Rehydrate(r.Context()); err != nil {
		return session.Anonymous(), err
	}
	return st.sessions.Snapshot(), nil
}

// ensureBrowserID returns the browser cookie, issuing one when missing
func (a *Admin) ensureBrowserID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(BrowserCookieName); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}
	bid := uuid.NewString()
	a.setBrowserCookie(w, r, bid)
	return bid
}

func (a *Admin) setBrowserCookie(w http.ResponseWriter, r *http.Request, bid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     BrowserCookieName,
		Value:    bid,
		Path:     "/",
		Expires:  time.Now().Add(a.config.SessionTTL),
		HttpOnly: true,
		Secure:   a.config.SecureCookies || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ensureCSRFToken generates a CSRF token if not present and returns it
func (a *Admin) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		a.logger.Error("failed to generate CSRF token", "error", err)
		token = ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.config.SecureCookies || r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	return token
}

// validateCSRF checks the CSRF token from form against cookie
func (a *Admin) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	formToken := r.FormValue("csrf_token")
	if formToken == "" {
		formToken = r.Header.Get("X-CSRF-Token")
	}

	return formToken != "" && formToken == cookie.Value
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// key scopes a cache key to the requesting browser
func key(ctx context.Context, parts ...string) querycache.Key {
	var bid string
	if st := stateFrom(ctx); st != nil {
		bid = st.browserID
	}
	return querycache.K(bid, parts...)
}
