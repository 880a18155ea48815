// ABOUTME: Tests for the dashboard handlers against a fake admin API
// ABOUTME: Drives login, the route guard, notices, caching, and mutations through real cookies

package webadmin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bearound/bearound-admin/internal/apiclient"
	"github.com/bearound/bearound-admin/internal/store"
)

const testToken = "tok-1"

// fakeAPI is a scripted stand-in for the remote admin API.
type fakeAPI struct {
	mu     sync.Mutex
	role   string
	calls  map[string]int
	fail   map[string]int
	bodies map[string]json.RawMessage
	flags  map[string]bool
	srv    *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{
		role:   "admin",
		calls:  map[string]int{},
		fail:   map[string]int{},
		bodies: map[string]json.RawMessage{},
		flags:  map[string]bool{"enableSearch": true, "enableDiscovery": false},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		f.mu.Lock()
		role := f.role
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"user":   map[string]any{"_id": "admin-1", "email": creds.Email, "username": "mod", "role": role},
				"tokens": map[string]any{"accessToken": testToken},
			},
		})
	})
	mux.HandleFunc("GET /api/v1/admin/dashboard", func(w http.ResponseWriter, r *http.Request) {
		ok(w, map[string]any{"overview": map[string]any{"totalUsers": 1234, "pendingReports": 2}})
	})
	mux.HandleFunc("GET /api/v1/admin/reports", func(w http.ResponseWriter, r *http.Request) {
		ok(w, []any{})
	})
	mux.HandleFunc("GET /api/v1/admin/feedback", func(w http.ResponseWriter, r *http.Request) {
		ok(w, []any{})
	})
	mux.HandleFunc("GET /api/v1/admin/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []any{
				map[string]any{"_id": "u2", "email": "bear@example.com", "username": "bear", "accountStatus": "active", "profile": map[string]any{"name": "Bear"}},
			},
			"pagination": map[string]any{"currentPage": 1, "totalPages": 3, "total": 41},
		})
	})
	mux.HandleFunc("PUT /api/v1/admin/users/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		ok(w, nil)
	})
	mux.HandleFunc("DELETE /api/v1/admin/blocks/{id}", func(w http.ResponseWriter, r *http.Request) {
		ok(w, nil)
	})
	mux.HandleFunc("GET /api/v1/admin/features", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		ok(w, map[string]any{"featureFlags": f.flags})
	})
	mux.HandleFunc("PUT /api/v1/admin/features", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			FeatureFlags map[string]bool `json:"featureFlags"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.flags = body.FeatureFlags
		f.mu.Unlock()
		ok(w, nil)
	})

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path

		f.mu.Lock()
		f.calls[route]++
		status, failing := f.fail[route]
		if r.Body != nil && r.Method != http.MethodGet {
			data, _ := io.ReadAll(r.Body)
			f.bodies[route] = data
			r.Body = io.NopCloser(strings.NewReader(string(data)))
		}
		f.mu.Unlock()

		if failing {
			writeJSON(w, status, map[string]any{"success": false, "message": "scripted failure"})
			return
		}
		if r.URL.Path != "/api/v1/auth/login" && r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired"})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func (f *fakeAPI) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

func (f *fakeAPI) failWith(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[route] = status
}

func (f *fakeAPI) body(route string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.bodies[route])
}

// harness runs the dashboard behind a real server with a cookie jar.
type harness struct {
	t      *testing.T
	api    *fakeAPI
	kv     *store.MockStore
	admin  *Admin
	srv    *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := newFakeAPI(t)
	kv := store.NewMockStore()

	admin, err := New(kv, Config{APIURL: api.srv.URL + "/api/v1", StaleTime: time.Minute})
	require.NoError(t, err)
	t.Cleanup(admin.Close)

	mux := http.NewServeMux()
	admin.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &harness{t: t, api: api, kv: kv, admin: admin, srv: srv, client: client}
}

func (h *harness) cookie(name string) string {
	u, _ := url.Parse(h.srv.URL)
	for _, c := range h.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (h *harness) do(req *http.Request) (*http.Response, string) {
	h.t.Helper()
	resp, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, string(body)
}

func (h *harness) get(path string) (*http.Response, string) {
	h.t.Helper()
	req, err := http.NewRequest(http.MethodGet, h.srv.URL+path, nil)
	require.NoError(h.t, err)
	return h.do(req)
}

// post submits a form, adding the CSRF token from the jar unless one is set.
func (h *harness) post(path string, form url.Values) (*http.Response, string) {
	h.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if _, set := form["csrf_token"]; !set {
		form.Set("csrf_token", h.cookie(CSRFCookieName))
	}
	req, err := http.NewRequest(http.MethodPost, h.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *harness) login() {
	h.t.Helper()
	h.get("/login")
	resp, _ := h.post("/login", url.Values{"email": {"mod@example.com"}, "password": {"secret"}})
	require.Equal(h.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(h.t, "/dashboard", resp.Header.Get("Location"))
}

func TestTemplatesParse(t *testing.T) {
	tmpls, err := parseTemplates()
	require.NoError(t, err)

	for _, name := range []string{
		"login.html", "dashboard.html", "users.html", "user_detail.html",
		"reports.html", "report_detail.html", "blocks.html", "block_detail.html",
		"feedback.html", "feedback_detail.html", "analytics.html", "activity.html",
		"features.html", "limits.html", "settings.html", "content.html", "premium.html",
	} {
		assert.Contains(t, tmpls, name)
	}
	assert.NotContains(t, tmpls, "base.html")
}

func TestProtected_RedirectsAnonymous(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.get("/users")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, LoginPath, resp.Header.Get("Location"))
	assert.Equal(t, 0, h.api.count("GET /api/v1/admin/users"))
}

func TestLogin_AdminSucceeds(t *testing.T) {
	h := newHarness(t)

	h.get("/login")
	before := h.cookie(BrowserCookieName)
	require.NotEmpty(t, before)

	h.login()
	after := h.cookie(BrowserCookieName)
	assert.NotEqual(t, before, after, "login must issue a new browser id")

	resp, body := h.get("/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Login successful!")
	assert.Contains(t, body, "1,234")
	assert.Contains(t, body, "Signed in as mod")
}

func TestLogin_NonAdminRejected(t *testing.T) {
	h := newHarness(t)
	h.api.mu.Lock()
	h.api.role = "user"
	h.api.mu.Unlock()

	h.get("/login")
	resp, body := h.post("/login", url.Values{"email": {"member@example.com"}, "password": {"secret"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "You do not have admin access")

	resp, _ = h.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLogin_BadCredentialsShowServerMessage(t *testing.T) {
	h := newHarness(t)

	h.get("/login")
	resp, body := h.post("/login", url.Values{"email": {"mod@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Invalid credentials")
	assert.NotContains(t, body, "Session expired")
	assert.Contains(t, body, `value="mod@example.com"`)
}

func TestLogin_MissingFields(t *testing.T) {
	h := newHarness(t)

	h.get("/login")
	_, body := h.post("/login", url.Values{"email": {""}, "password": {""}})
	assert.Contains(t, body, "Email and password are required")
	assert.Equal(t, 0, h.api.count("POST /api/v1/auth/login"))
}

func TestLogin_RequiresCSRF(t *testing.T) {
	h := newHarness(t)

	h.get("/login")
	resp, _ := h.post("/login", url.Values{"csrf_token": {"forged"}, "email": {"mod@example.com"}, "password": {"secret"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, h.api.count("POST /api/v1/auth/login"))
}

func TestLoginPage_RedirectsWhenLoggedIn(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, _ := h.get("/login")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestExpiredToken_ClearsSessionAndRedirects(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.get("/dashboard")

	h.api.failWith("GET /api/v1/admin/users", http.StatusUnauthorized)

	resp, _ := h.get("/users")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, LoginPath, resp.Header.Get("Location"))

	_, body := h.get("/login")
	assert.Contains(t, body, "Session expired. Please login again.")

	resp, _ = h.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "session must be gone")
}

func TestForbidden_RendersNotice(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.failWith("GET /api/v1/admin/users", http.StatusForbidden)

	resp, body := h.get("/users")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "You do not have permission to perform this action")
	assert.Contains(t, body, "Failed to load data.")
}

func TestServerError_RendersNotice(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.failWith("GET /api/v1/admin/users", http.StatusBadGateway)

	_, body := h.get("/users")
	assert.Contains(t, body, "Server error. Please try again later.")
}

func TestUsers_RendersListAndPager(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, body := h.get("/users?status=active&search=bear")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "bear@example.com")
	assert.Contains(t, body, "Page 1 of 3")
	assert.Contains(t, body, "41 total")
	assert.Contains(t, body, "page=2")
}

func TestMutation_InvalidatesCachedQueries(t *testing.T) {
	h := newHarness(t)
	h.login()

	h.get("/users")
	h.get("/users")
	require.Equal(t, 1, h.api.count("GET /api/v1/admin/users"), "second read should be cached")

	resp, _ := h.post("/users/u2/status", url.Values{"status": {"suspended"}, "return": {"/users"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/users", resp.Header.Get("Location"))
	assert.Contains(t, h.api.body("PUT /api/v1/admin/users/u2/status"), "Status changed to suspended by admin")

	_, body := h.get("/users")
	assert.Equal(t, 2, h.api.count("GET /api/v1/admin/users"))
	assert.Contains(t, body, "User status updated")
}

func TestMutation_RejectsBadCSRF(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, _ := h.post("/users/u2/status", url.Values{"csrf_token": {"nope"}, "status": {"suspended"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, h.api.count("PUT /api/v1/admin/users/u2/status"))
}

func TestRemoveBlock_RequiresReason(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, _ := h.post("/blocks/b1/remove", url.Values{"reason": {"  "}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/blocks/b1", resp.Header.Get("Location"))
	assert.Equal(t, 0, h.api.count("DELETE /api/v1/admin/blocks/b1"))

	h.api.failWith("GET /api/v1/admin/blocks/b1", http.StatusNotFound)
	_, body := h.get("/blocks/b1")
	assert.Contains(t, body, "Please provide a reason for removing this block")
}

func TestRemoveBlock_FailureNotice(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.failWith("DELETE /api/v1/admin/blocks/b1", http.StatusInternalServerError)

	resp, _ := h.post("/blocks/b1/remove", url.Values{"reason": {"mistake"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	h.api.failWith("GET /api/v1/admin/blocks", http.StatusServiceUnavailable)
	_, body := h.get("/blocks")
	assert.Contains(t, body, "Failed to remove block")
	assert.Contains(t, body, "Server error. Please try again later.")
}

func TestToggleFlag_SendsWholeSet(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, body := h.get("/features")
	assert.Contains(t, body, "Discovery")

	resp, _ := h.post("/features/enableDiscovery", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	sent := h.api.body("PUT /api/v1/admin/features")
	assert.Contains(t, sent, `"enableDiscovery":true`)
	assert.Contains(t, sent, `"enableSearch":true`)

	_, body = h.get("/features")
	assert.Contains(t, body, "Feature flags updated")
	// Page load, the fresh read inside the toggle, then the refetch.
	assert.Equal(t, 3, h.api.count("GET /api/v1/admin/features"))
}

func TestLogout_ClearsSession(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, _ := h.post("/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, LoginPath, resp.Header.Get("Location"))

	resp, _ = h.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestFlagLabel(t *testing.T) {
	tests := map[string]string{
		"enableGoogleAuth":         "Google Auth",
		"enableSearch":             "Search",
		"enableAnonymousMessaging": "Anonymous Messaging",
		"darkMode":                 "Dark Mode",
	}
	for in, want := range tests {
		assert.Equal(t, want, flagLabel(in), in)
	}
}

func TestReturnTo(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"/users?page=2", "/users?page=2"},
		{"", "/fallback"},
		{"https://evil.example", "/fallback"},
		{"//evil.example", "/fallback"},
		{"/\\evil.example", "/fallback"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(url.Values{"return": {tt.value}}.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		assert.Equal(t, tt.want, returnTo(r, "/fallback"), tt.value)
	}
}

func TestFormPaisa(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"99", 9900, false},
		{"99.5", 9950, false},
		{"0.1", 10, false},
		{"-1", 0, true},
		{"abc", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"1e300", 0, true},
		{"21474836", 2147483600, false},
		{"21474837", 0, true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodPost, "/?price="+url.QueryEscape(tt.value), nil)
		got, err := formPaisa(r, "price", "Price")
		if tt.wantErr {
			assert.Error(t, err, tt.value)
			continue
		}
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, got, tt.value)
	}
}

func TestQueueNotices_AppendsUntilTaken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := &pageState{browserID: "b-1"}
	first.notify(successNotice("User status updated"))
	h.admin.queueNotices(ctx, first)

	second := &pageState{browserID: "b-1"}
	second.notify(errorNotice("Failed to remove block"))
	h.admin.queueNotices(ctx, second)

	render := &pageState{browserID: "b-1"}
	got := h.admin.takeNotices(ctx, render)
	assert.Equal(t, []apiclient.Notice{
		successNotice("User status updated"),
		errorNotice("Failed to remove block"),
	}, got)

	assert.Empty(t, h.admin.takeNotices(ctx, render), "notices are shown once")
}
