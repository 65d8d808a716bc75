// Package config loads the admin configuration: a YAML file overlaid with
// PORTFOLIO_* environment variables, plus env-only secrets for sessions and
// password hashing.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked for when --config is not given.
const DefaultPath = "portfolio.yml"

// EnvPrefix prefixes every environment override, e.g. PORTFOLIO_PUBLISH_URL.
const EnvPrefix = "PORTFOLIO_"

// Config is the admin configuration, corresponding to portfolio.yml.
type Config struct {
	ListenAddr     string   `yaml:"listen_addr" koanf:"listen_addr"`
	ContentPath    string   `yaml:"content_path" koanf:"content_path"`
	AdminsPath     string   `yaml:"admins_path" koanf:"admins_path"`
	TemplatePath   string   `yaml:"template_path" koanf:"template_path"`
	StaticDir      string   `yaml:"static_dir" koanf:"static_dir"`
	CacheDriver    string   `yaml:"cache_driver" koanf:"cache_driver"`
	CacheDSN       string   `yaml:"cache_dsn" koanf:"cache_dsn"`
	PublishURL     string   `yaml:"publish_url" koanf:"publish_url"`
	PublishTimeout int      `yaml:"publish_timeout_seconds" koanf:"publish_timeout_seconds"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	RateLimit      bool     `yaml:"rate_limit" koanf:"rate_limit"`
	RawDebounceMS  int      `yaml:"raw_debounce_ms" koanf:"raw_debounce_ms"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:     "127.0.0.1:8080",
		ContentPath:    "assets/content.json",
		AdminsPath:     "assets/admins.json",
		StaticDir:      "assets",
		CacheDriver:    "sqlite",
		CacheDSN:       ".portfolio/cache.db",
		PublishURL:     "http://127.0.0.1:5050/publish",
		PublishTimeout: 30,
		AllowedOrigins: []string{"http://127.0.0.1:8080", "http://localhost:8080"},
		RateLimit:      true,
		RawDebounceMS:  300,
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PORTFOLIO_*). A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// ValidationError lists every invalid setting found by Validate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config error: " + strings.Join(e.Problems, "; ")
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.ListenAddr == "" {
		add("listen_addr is required")
	}
	if c.ContentPath == "" {
		add("content_path is required")
	}
	if c.AdminsPath == "" {
		add("admins_path is required")
	}
	switch c.CacheDriver {
	case "sqlite", "postgres":
	default:
		add("invalid cache_driver %q: must be sqlite or postgres", c.CacheDriver)
	}
	if c.CacheDSN == "" {
		add("cache_dsn is required")
	}
	if c.PublishURL != "" {
		u, err := url.Parse(c.PublishURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("publish_url %q must be an http(s) URL", c.PublishURL)
		}
	}
	if c.PublishTimeout <= 0 {
		add("publish_timeout_seconds must be positive")
	}
	if c.RawDebounceMS < 0 {
		add("raw_debounce_ms must be non-negative")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// PublishTimeoutDuration returns the publish timeout as a duration.
func (c *Config) PublishTimeoutDuration() time.Duration {
	return time.Duration(c.PublishTimeout) * time.Second
}

// RawDebounce returns the raw-view debounce delay.
func (c *Config) RawDebounce() time.Duration {
	return time.Duration(c.RawDebounceMS) * time.Millisecond
}

// ErrConfigExists is returned by WriteDefault when the target file already exists.
var ErrConfigExists = errors.New("config file already exists")

// WriteDefault writes DefaultConfig to path unless a file is already there.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrConfigExists)
		}
	}
	return DefaultConfig().Save(path)
}
