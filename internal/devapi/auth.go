// ABOUTME: Bearer authentication middleware for the dev API
// ABOUTME: Extracts the JWT from Authorization and requires the admin role

package devapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "Authentication required"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "Invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "Empty token"
	}
	return token, ""
}

type claimsKey struct{}

func withClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// claimsFrom returns the verified caller, if any.
func claimsFrom(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(Claims)
	return c, ok
}

// requireAdmin rejects requests without a valid token (401) or without the
// admin role (403).
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
		if errMsg != "" {
			respondError(w, http.StatusUnauthorized, errMsg)
			return
		}

		claims, err := s.tokens.Verify(token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, ErrExpiredToken) {
				msg = "Token expired"
			}
			respondError(w, http.StatusUnauthorized, msg)
			return
		}

		if _, ok := s.data.account(claims.UserID); !ok {
			respondError(w, http.StatusUnauthorized, "User not found")
			return
		}

		if claims.Role != adminRole {
			respondError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}
