// Package middleware provides HTTP middleware for the admin session gate.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/portfolio-admin/internal/auth"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// claimsKey is the context key for the authenticated session claims.
const claimsKey ContextKey = "sessionClaims"

// SessionValidator validates session tokens.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*auth.Claims, error)
}

// RequireSession rejects requests without a valid admin session, read from
// the session cookie or a Bearer header, and stores the claims in the request
// context.
func RequireSession(sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				unauthorized(w)
				return
			}
			claims, err := sessions.Validate(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}

// GetClaims returns the session claims stored by RequireSession.
func GetClaims(r *http.Request) (*auth.Claims, error) {
	claims, ok := r.Context().Value(claimsKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("session not found in request context")
	}
	return claims, nil
}

// GetUsername returns the authenticated admin's username.
func GetUsername(r *http.Request) (string, error) {
	claims, err := GetClaims(r)
	if err != nil {
		return "", err
	}
	return claims.GetUsername(), nil
}

// WithClaims returns ctx carrying claims, for tests of handlers behind
// RequireSession.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
