package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu      sync.Mutex
	token   string
	expired int
}

func (f *fakeSession) Token(context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSession) Expire(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.expired++
	return nil
}

type recorder struct {
	mu        sync.Mutex
	notices   []Notice
	onLogin   bool
	redirects int
}

func (r *recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) OnLoginView(context.Context) bool { return r.onLogin }

func (r *recorder) RedirectToLogin(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects++
}

func (r *recorder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Text)
	}
	return out
}

func respond(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func newTestClient(t *testing.T, h http.Handler, sess *fakeSession, rec *recorder) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/api/v1/"}, sess, rec, rec)
	require.NoError(t, err)
	return c
}

func TestDo_AttachesHeadersAndDecodesEnvelope(t *testing.T) {
	var got *http.Request
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		respond(200, map[string]any{"success": true, "data": map[string]any{"n": 3}})(w, r)
	})
	sess := &fakeSession{token: "tok-1"}
	c := newTestClient(t, h, sess, &recorder{})

	env, err := c.Get(context.Background(), "/admin/users", url.Values{"page": {"2"}})
	require.NoError(t, err)
	assert.True(t, env.Success)

	var data struct{ N int }
	require.NoError(t, env.Decode(&data))
	assert.Equal(t, 3, data.N)

	assert.Equal(t, "/api/v1/admin/users", got.URL.Path)
	assert.Equal(t, "2", got.URL.Query().Get("page"))
	assert.Equal(t, "Bearer tok-1", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
}

func TestDo_NoTokenNoAuthorization(t *testing.T) {
	var auth string
	var sawHeader bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, sawHeader = r.Header["Authorization"]
		respond(200, map[string]any{"success": true})(w, r)
	})
	c := newTestClient(t, h, &fakeSession{}, &recorder{})

	_, err := c.Get(context.Background(), "/admin/dashboard", nil)
	require.NoError(t, err)
	assert.Empty(t, auth)
	assert.False(t, sawHeader)
}

func TestDo_SendsJSONBody(t *testing.T) {
	var body map[string]any
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		_ = json.NewDecoder(r.Body).Decode(&body)
		respond(200, map[string]any{"success": true})(w, r)
	})
	c := newTestClient(t, h, &fakeSession{}, &recorder{})

	_, err := c.Delete(context.Background(), "/admin/blocks/b1", map[string]string{"reason": "appeal"})
	require.NoError(t, err)
	assert.Equal(t, "appeal", body["reason"])
}

func TestUnauthorized_ExpiresAndRedirectsOnce(t *testing.T) {
	sess := &fakeSession{token: "stale"}
	rec := &recorder{}
	c := newTestClient(t, respond(401, map[string]any{"success": false, "message": "jwt expired"}), sess, rec)

	_, err := c.Get(context.Background(), "/admin/users", nil)

	var re *ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 401, re.StatusCode)
	assert.Equal(t, "jwt expired", re.Message)
	assert.Equal(t, AuthExpired, Classify(err))

	assert.Empty(t, sess.Token(context.Background()))
	assert.Equal(t, 1, sess.expired)
	assert.Equal(t, 1, rec.redirects)
	assert.Equal(t, []string{MsgSessionExpired}, rec.texts())
}

func TestUnauthorized_SuppressedOnLoginView(t *testing.T) {
	sess := &fakeSession{token: "keep"}
	rec := &recorder{onLogin: true}
	c := newTestClient(t, respond(401, map[string]any{"success": false, "message": "Invalid credentials"}), sess, rec)

	_, err := c.Post(context.Background(), "/auth/login", map[string]string{"email": "a@b.c"})

	require.Error(t, err)
	assert.Equal(t, 0, sess.expired)
	assert.Equal(t, "keep", sess.Token(context.Background()))
	assert.Equal(t, 0, rec.redirects)
	assert.Empty(t, rec.texts())
}

func TestBadRequest_JoinsFieldErrors(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, respond(400, map[string]any{
		"success": false,
		"message": "Validation failed",
		"errors":  []map[string]string{{"message": "A"}, {"msg": "B"}, {"field": "x"}},
	}), &fakeSession{}, rec)

	_, err := c.Put(context.Background(), "/admin/config", map[string]any{})

	var re *ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ValidationFailed, Classify(err))
	assert.Len(t, re.Errors, 3)
	assert.Equal(t, []string{"A, B"}, rec.texts())
}

func TestBadRequest_FallsBackToMessage(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"message only", map[string]any{"success": false, "message": "Reason is required"}, "Reason is required"},
		{"empty errors list", map[string]any{"success": false, "message": "Bad", "errors": []any{}}, "Bad"},
		{"nothing", map[string]any{"success": false}, MsgValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			c := newTestClient(t, respond(400, tt.body), &fakeSession{}, rec)
			_, err := c.Get(context.Background(), "/x", nil)
			require.Error(t, err)
			assert.Equal(t, []string{tt.want}, rec.texts())
		})
	}
}

func TestBadRequest_SuppressedOnLoginView(t *testing.T) {
	rec := &recorder{onLogin: true}
	c := newTestClient(t, respond(400, map[string]any{
		"errors": []map[string]string{{"message": "Email is invalid"}},
	}), &fakeSession{}, rec)

	_, err := c.Post(context.Background(), "/auth/login", nil)

	re, ok := AsResponse(err)
	require.True(t, ok)
	assert.Equal(t, "Email is invalid", re.Summary("Login failed"))
	assert.Empty(t, rec.texts())
}

func TestStatusNotices(t *testing.T) {
	tests := []struct {
		status int
		class  Class
		want   []string
	}{
		{403, Forbidden, []string{MsgForbidden}},
		{500, ServerFault, []string{MsgServerError}},
		{503, ServerFault, []string{MsgServerError}},
		{404, Unreported, nil},
		{409, Unreported, nil},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			rec := &recorder{onLogin: true}
			c := newTestClient(t, respond(tt.status, map[string]any{"success": false}), &fakeSession{}, rec)
			_, err := c.Get(context.Background(), "/admin/reports", nil)
			require.Error(t, err)
			assert.Equal(t, tt.class, Classify(err))
			if tt.want == nil {
				assert.Empty(t, rec.texts())
			} else {
				assert.Equal(t, tt.want, rec.texts())
			}
		})
	}
}

func TestNonJSONErrorBodyKept(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(502)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	c := newTestClient(t, h, &fakeSession{}, &recorder{})

	_, err := c.Get(context.Background(), "/admin/dashboard", nil)
	re, ok := AsResponse(err)
	require.True(t, ok)
	assert.Equal(t, "<html>bad gateway</html>", string(re.Body))
	assert.Empty(t, re.Message)
}

func TestNetworkFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	rec := &recorder{}
	c, err := New(Config{BaseURL: "http://" + addr + "/api/v1"}, nil, rec, rec)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/admin/dashboard", nil)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, NetworkUnreachable, Classify(err))
	assert.Equal(t, []string{MsgNetwork}, rec.texts())
}

func TestCancelledRequestIsNotReported(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, respond(200, map[string]any{"success": true}), &fakeSession{}, rec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx, "/admin/dashboard", nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, rec.texts())
}

func TestUnclassifiedFailure(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, respond(200, map[string]any{"success": true}), &fakeSession{}, rec)

	_, err := c.Post(context.Background(), "/admin/config", map[string]any{"bad": make(chan int)})

	require.Error(t, err)
	assert.Equal(t, Unclassified, Classify(err))
	assert.Equal(t, []string{MsgUnexpected}, rec.texts())
}

func TestSuccessFalseIsNotAnError(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, respond(200, map[string]any{"success": false, "message": "nope"}), &fakeSession{}, rec)

	env, err := c.Post(context.Background(), "/auth/login", nil)
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Empty(t, rec.texts())
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "localhost:5001"}, nil, nil, nil)
	assert.Error(t, err)
}
