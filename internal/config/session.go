package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
)

// SessionConfig holds configuration for admin session tokens.
type SessionConfig struct {
	Secret string
	// Hours bounds the token lifetime. The cookie itself lasts for the browser session.
	Hours int
	// Ephemeral is true when no SESSION_SECRET was set and a random one was
	// generated, so sessions do not survive a restart.
	Ephemeral bool
}

// NewSessionConfig creates a session configuration from environment variables.
// It reads SESSION_SECRET (random per process when unset) and SESSION_HOURS
// (default: 12).
func NewSessionConfig() (*SessionConfig, error) {
	hoursStr := os.Getenv("SESSION_HOURS")
	if hoursStr == "" {
		hoursStr = "12"
	}
	hours, err := strconv.Atoi(hoursStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_HOURS: %v", err)
	}

	cfg := &SessionConfig{
		Secret: os.Getenv("SESSION_SECRET"),
		Hours:  hours,
	}
	if cfg.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Secret = secret
		cfg.Ephemeral = true
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *SessionConfig) normalize() error {
	if len(c.Secret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 characters")
	}
	if c.Hours < 1 {
		return fmt.Errorf("SESSION_HOURS must be at least 1 hour, got: %d", c.Hours)
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
