package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/portfolio-admin/internal/auth"
	"github.com/jonathan/portfolio-admin/internal/types"
)

// handleLogin checks the credentials against the admin list and starts a
// session. The cookie has no expiry, so it ends with the browser session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	username, err := s.gate.Check(r.Context(), req.Username, req.Password)
	if err != nil {
		s.logger.Info("login failed", zap.String("username", req.Username), zap.Error(err))
		s.errorResponse(w, err)
		return
	}

	token, _, err := s.sessions.Issue(r.Context(), username)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	auth.SetCookie(w, r, token)
	s.logger.Info("admin unlocked", zap.String("username", username))
	s.jsonResponse(w, http.StatusOK, types.SessionResponse{Authenticated: true, Username: username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Revoke(r.Context(), auth.TokenFromRequest(r)); err != nil {
		s.logger.Warn("failed to revoke session", zap.Error(err))
	}
	auth.ClearCookie(w, r)
	s.jsonResponse(w, http.StatusOK, types.SessionResponse{Authenticated: false})
}

// handleSession reports whether the caller is unlocked. It never fails; an
// invalid or missing session is simply locked.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	claims, err := s.sessions.Validate(r.Context(), auth.TokenFromRequest(r))
	if err != nil {
		s.jsonResponse(w, http.StatusOK, types.SessionResponse{Authenticated: false})
		return
	}
	s.jsonResponse(w, http.StatusOK, types.SessionResponse{Authenticated: true, Username: claims.GetUsername()})
}
