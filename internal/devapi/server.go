// ABOUTME: chi router for the development stand-in of the bearound admin API
// ABOUTME: Serves /api/v1/auth/login and every /admin endpoint from the in-memory fixture

package devapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/bearound/bearound-admin/internal/adminapi"
	"github.com/bearound/bearound-admin/internal/session"
)

// BasePath is where the API is mounted, matching the real backend.
const BasePath = "/api/v1"

// DefaultTokenTTL is how long issued access tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Config holds dev API configuration
type Config struct {
	// Secret signs access tokens. Required.
	Secret []byte
	// TokenTTL defaults to DefaultTokenTTL.
	TokenTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost. Tests use bcrypt.MinCost.
	BcryptCost int
	Now        func() time.Time
}

// Server is the dev API.
type Server struct {
	data     *fixture
	tokens   *Tokens
	tokenTTL time.Duration
	router   chi.Router
	logger   *slog.Logger
}

// New builds a Server over a freshly seeded fixture.
func New(cfg Config) (*Server, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("devapi: secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	data, err := newFixture(cfg.Now, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	tokens := NewTokens(cfg.Secret)
	tokens.now = cfg.Now

	s := &Server{
		data:     data,
		tokens:   tokens,
		tokenTTL: cfg.TokenTTL,
		logger:   slog.Default().With("component", "devapi"),
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route(BasePath, func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Get("/dashboard", s.handleDashboard)
			r.Get("/config", s.handleGetConfig)
			r.Put("/config", s.handleUpdateConfig)
			r.Get("/features", s.handleGetFlags)
			r.Put("/features", s.handleUpdateFlags)
			r.Get("/limits", s.handleGetLimits)
			r.Put("/limits", s.handleUpdateLimits)
			r.Get("/unrevealed-chat-payment", s.handleGetChatPayment)
			r.Put("/unrevealed-chat-payment", s.handleUpdateChatPayment)

			r.Get("/users", s.handleListUsers)
			r.Get("/users/{id}", s.handleUserDetails)
			r.Put("/users/{id}/status", s.handleUpdateUserStatus)

			r.Get("/reports", s.handleListReports)
			r.Get("/reports/{id}", s.handleReportDetails)
			r.Post("/reports/{id}/resolve", s.handleResolveReport)

			r.Get("/feedback", s.handleListFeedback)
			r.Get("/feedback/{id}", s.handleFeedbackDetails)
			r.Put("/feedback/{id}", s.handleUpdateFeedback)

			r.Get("/analytics", s.handleAnalytics)
			r.Get("/activity-logs", s.handleActivityLogs)

			r.Get("/blocks", s.handleListBlocks)
			r.Get("/blocks/stats", s.handleBlockStats)
			r.Get("/blocks/{id}", s.handleBlockDetails)
			r.Delete("/blocks/{id}", s.handleRemoveBlock)

			r.Get("/premium/status", s.handlePremiumStatus)
			r.Get("/premium/features", s.handlePremiumFeatures)
			r.Get("/premium/plans", s.handlePremiumPlans)
			r.Put("/premium/mode", s.handlePremiumMode)
			r.Post("/premium/features/{id}/toggle", s.handleTogglePremiumFeature)
			r.Put("/premium/features/{id}", s.handleUpdatePremiumFeature)
			r.Put("/premium/plans/{id}", s.handleUpdatePremiumPlan)
		})
	})
	return r
}

// logRequests logs each request at debug level with its chi request id.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

// decodeBody reads a JSON body. On failure it has already answered 400.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	var errs []FieldError
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "Email is required"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	}
	if len(errs) > 0 {
		respondInvalid(w, errs)
		return
	}

	user, ok := s.data.authenticate(strings.TrimSpace(req.Email), req.Password)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if user.AccountStatus != adminapi.StatusActive {
		respondError(w, http.StatusForbidden, "Account is "+user.AccountStatus)
		return
	}

	token, err := s.tokens.Generate(user.ID, user.Role, s.tokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token", "error", err)
		respondError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	s.logger.Info("login", "user_id", user.ID, "role", user.Role)
	respondOK(w, map[string]any{
		"user": session.User{ID: user.ID, Email: user.Email, Username: user.Username, Role: user.Role},
		"tokens": map[string]string{
			"accessToken":  token,
			"refreshToken": "",
		},
	})
}

// paging reads page and limit with the real backend's defaults.
func paging(r *http.Request, defLimit int) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defLimit
	}
	return page, limit
}

// paginate slices items for one page.
func paginate[T any](items []T, page, limit int) ([]T, *pagination) {
	total := len(items)
	pages := (total + limit - 1) / limit
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, &pagination{
		CurrentPage: page,
		TotalPages:  pages,
		Total:       total,
		Limit:       limit,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}

// respondPage answers {data: {data: [...], pagination}}.
func respondPage[T any](w http.ResponseWriter, items []T, p *pagination) {
	respondOK(w, map[string]any{"data": items, "pagination": p})
}

func actor(r *http.Request) string {
	c, _ := claimsFrom(r.Context())
	return c.UserID
}

func notFound(w http.ResponseWriter, what string) {
	respondError(w, http.StatusNotFound, fmt.Sprintf("%s not found", what))
}
