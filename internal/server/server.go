package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/portfolio-admin/internal/auth"
	"github.com/jonathan/portfolio-admin/internal/server/middleware"
	"github.com/jonathan/portfolio-admin/internal/server/ratelimit"
	"github.com/jonathan/portfolio-admin/internal/site"
	"github.com/jonathan/portfolio-admin/internal/store"
)

// Config holds server configuration
type Config struct {
	Addr           string
	AllowedOrigins []string
	RateLimit      bool
	StaticDir      string // served under /assets/ when set
}

// Deps are the components the server drives.
type Deps struct {
	Store    *store.Store
	Gate     *auth.Gate
	Sessions *auth.Sessions
	Renderer *site.Renderer
	Logger   *zap.Logger
}

// Server is the admin HTTP server.
type Server struct {
	httpServer  *http.Server
	store       *store.Store
	gate        *auth.Gate
	sessions    *auth.Sessions
	renderer    *site.Renderer
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	logger      *zap.Logger
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Gate == nil || deps.Sessions == nil || deps.Renderer == nil {
		return nil, errors.New("server: store, gate, sessions and renderer are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		store:       deps.Store,
		gate:        deps.Gate,
		sessions:    deps.Sessions,
		renderer:    deps.Renderer,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig(cfg.RateLimit)),
		validate:    validator.New(),
		logger:      logger,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// WriteTimeout stays unset: /api/events streams for as long as the page is open.
		IdleTimeout: 60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.withLogging)
	r.Use(s.withRateLimit)

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleSite)
	r.Get("/content.json", s.handleContentJSON)
	if cfg.StaticDir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(cfg.StaticDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/session", s.handleSession)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(s.sessions))

			r.Get("/document", s.handleGetDocument)
			r.Get("/document/raw", s.handleGetRaw)
			r.Put("/document/raw", s.handlePutRaw)
			r.Post("/document/load-default", s.handleLoadDefault)
			r.Post("/document/import", s.handleImport)
			r.Get("/document/export", s.handleExport)
			r.Post("/document/save", s.handleSave)
			r.Post("/document/publish", s.handlePublish)
			r.Post("/document/reset", s.handleReset)

			r.Get("/form", s.handleGetForm)
			r.Post("/form/fields", s.handleSetField)
			r.Post("/form/items", s.handleAddItem)
			r.Delete("/form/items", s.handleRemoveItem)
			r.Put("/form/kv", s.handleSetRows)

			r.Post("/assets/photo", s.handleUploadPhoto)
			r.Delete("/assets/photo", s.handleClearPhoto)
			r.Post("/assets/resume", s.handleUploadResume)
			r.Delete("/assets/resume", s.handleClearResume)

			r.Get("/events", s.handleEvents)
		})
	})
	return r
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	<-errCh
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close stops background work without serving. Used by tests that only call Handler.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := s.rateLimiter.Allow(clientID(r), r.Method, r.URL.Path)
		setRateLimitHeaders(w, info)
		if !info.Allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID uses the IP from RemoteAddr. Forwarded headers are ignored since
// the server is not expected to sit behind a proxy.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	retry := int(info.RetryAfter.Round(time.Second).Seconds())
	if retry < 1 {
		retry = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	s.logger.Warn("rate limit exceeded", zap.Int("limit", info.Limit), zap.Int("retry_after", retry))
	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"error":       "Rate limit exceeded. Please try again later.",
		"retry_after": retry,
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("error encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes err as a JSON error with the status HTTPStatus picks.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	s.jsonResponse(w, status, newErrorBody(err))
}

// decodeJSON reads a JSON body into v and validates it.
func (s *Server) decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ErrValidation{Field: verrs[0].Field(), Message: verrs[0].Tag()}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}
