package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/portfolio-admin/internal/auth"
)

type fakeSessions struct {
	valid map[string]string
}

func (f *fakeSessions) Validate(_ context.Context, token string) (*auth.Claims, error) {
	user, ok := f.valid[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return &auth.Claims{Username: user}, nil
}

func protected(t *testing.T, called *bool) http.Handler {
	return RequireSession(&fakeSessions{valid: map[string]string{"good": "x"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*called = true
			user, err := GetUsername(r)
			require.NoError(t, err)
			assert.Equal(t, "x", user)
			w.WriteHeader(http.StatusOK)
		}))
}

func TestRequireSession_Cookie(t *testing.T) {
	called := false
	req := httptest.NewRequest(http.MethodGet, "/api/document", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "good"})
	w := httptest.NewRecorder()

	protected(t, &called).ServeHTTP(w, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireSession_Bearer(t *testing.T) {
	called := false
	req := httptest.NewRequest(http.MethodGet, "/api/document", nil)
	req.Header.Set("Authorization", "bearer good")
	w := httptest.NewRecorder()

	protected(t, &called).ServeHTTP(w, req)

	assert.True(t, called)
}

func TestRequireSession_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"no credentials", func(*http.Request) {}},
		{"bad cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "bad"}) }},
		{"bad bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") }},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic good") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			req := httptest.NewRequest(http.MethodGet, "/api/document", nil)
			tt.setup(req)
			w := httptest.NewRecorder()

			protected(t, &called).ServeHTTP(w, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
		})
	}
}

func TestGetClaims_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetClaims(req)
	require.Error(t, err)

	req = req.WithContext(WithClaims(req.Context(), &auth.Claims{Username: "y"}))
	user, err := GetUsername(req)
	require.NoError(t, err)
	assert.Equal(t, "y", user)
}
