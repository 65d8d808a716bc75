package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonathan/portfolio-admin/internal/config"
)

// CookieName is the session cookie. It has no Max-Age, so it ends with the
// browser session.
const CookieName = "admin_session"

const sessionKeyPrefix = "admin_session:"

// Claims are the session token claims.
type Claims struct {
	SessionID uuid.UUID `json:"sid"`
	Username  string    `json:"username"`
	jwt.RegisteredClaims
}

// GetUsername returns the admin the session belongs to.
func (c *Claims) GetUsername() string {
	return c.Username
}

// SessionStore records live sessions so logout can revoke a token before it
// expires. It is satisfied by db.KV.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Sessions issues and validates signed session tokens.
type Sessions struct {
	config *config.SessionConfig
	store  SessionStore
	now    func() time.Time
}

// NewSessions returns a session service. store may be nil, in which case
// tokens stay valid until they expire.
func NewSessions(cfg *config.SessionConfig, store SessionStore) *Sessions {
	return &Sessions{config: cfg, store: store, now: time.Now}
}

// Issue creates a token for username.
func (s *Sessions) Issue(ctx context.Context, username string) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		SessionID: uuid.New(),
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.config.Hours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if s.store != nil {
		if err := s.store.Set(ctx, sessionKeyPrefix+claims.SessionID.String(), username); err != nil {
			return "", nil, fmt.Errorf("failed to record session: %w", err)
		}
	}
	return signed, claims, nil
}

// Validate checks the token signature, expiry and, when a store is set,
// that the session has not been revoked.
func (s *Sessions) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrNoSession
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, &SessionError{Message: "token expired", Cause: err}
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, &SessionError{Message: "invalid token signature", Cause: err}
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, &SessionError{Message: "malformed token", Cause: err}
		}
		return nil, &SessionError{Message: "failed to parse token", Cause: err}
	}
	if !token.Valid {
		return nil, &SessionError{Message: "token is not valid"}
	}

	if s.store != nil {
		_, ok, err := s.store.Get(ctx, sessionKeyPrefix+claims.SessionID.String())
		if err != nil {
			return nil, &SessionError{Message: "failed to look up session", Cause: err}
		}
		if !ok {
			return nil, &SessionError{Message: "session revoked"}
		}
	}
	return claims, nil
}

// Revoke ends the session a token belongs to. Invalid tokens are ignored.
func (s *Sessions) Revoke(ctx context.Context, tokenString string) error {
	if s.store == nil || tokenString == "" {
		return nil
	}
	claims, err := s.Validate(ctx, tokenString)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, sessionKeyPrefix+claims.SessionID.String())
}

// SetCookie writes the session cookie.
func SetCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie removes the session cookie.
func ClearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// TokenFromRequest returns the session token from the cookie, or from a
// Bearer Authorization header for scripted clients.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
