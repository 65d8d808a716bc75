package ratelimit

import (
	"net/http"
	"time"
)

// Rule limits one method and path. A path ending in "/" matches by prefix.
type Rule struct {
	Method string
	Path   string
	Limit  int           // requests per Window; 0 means unlimited
	Window time.Duration
	Burst  int // bucket capacity, Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	Default         Rule
	Rules           []Rule
	CleanupInterval time.Duration
	IdleTTL         time.Duration // buckets unused for this long are dropped
}

// DefaultConfig returns the limits used by the admin server.
func DefaultConfig(enabled bool) *Config {
	return &Config{
		Enabled:         enabled,
		Default:         Rule{Limit: 1000, Window: time.Minute},
		Rules:           DefaultRules(),
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
	}
}

// DefaultRules returns the per-route limits.
func DefaultRules() []Rule {
	return []Rule{
		// Exempt
		{Method: http.MethodGet, Path: "/health"},
		{Method: http.MethodPost, Path: "/api/login"},
		{Method: http.MethodGet, Path: "/api/events"},

		// Outbound calls
		{Method: http.MethodPost, Path: "/api/document/publish", Limit: 20, Window: time.Hour, Burst: 5},

		// Uploads
		{Method: http.MethodPost, Path: "/api/assets/", Limit: 30, Window: time.Minute, Burst: 10},
		{Method: http.MethodPost, Path: "/api/document/import", Limit: 30, Window: time.Minute, Burst: 10},

		// Edits arrive once per keystroke burst
		{Method: http.MethodPost, Path: "/api/", Limit: 600, Window: time.Minute, Burst: 60},
		{Method: http.MethodPut, Path: "/api/", Limit: 600, Window: time.Minute, Burst: 60},
		{Method: http.MethodDelete, Path: "/api/", Limit: 600, Window: time.Minute, Burst: 60},
	}
}
