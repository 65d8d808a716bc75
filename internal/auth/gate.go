// Package auth implements the credential gate in front of the admin API and
// the browser sessions that remember a successful login.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/portfolio-admin/internal/config"
	"github.com/jonathan/portfolio-admin/internal/fetch"
	"github.com/jonathan/portfolio-admin/internal/schemas"
	"github.com/jonathan/portfolio-admin/internal/types"
	rootschemas "github.com/jonathan/portfolio-admin/schemas"
)

// Gate checks credentials against the admin list. The list is fetched once
// and cached; a failed fetch is not cached, so the next check retries.
//
// Plaintext passwords in admins.json are a deterrent for a local tool, not a
// security boundary. Prefer password_hash entries.
type Gate struct {
	location string
	timeout  time.Duration
	logger   *zap.Logger

	group singleflight.Group
	mu    sync.RWMutex
	users []types.AdminUser
	ready bool
}

// NewGate returns a gate reading the admin list from a file path or an http(s) URL.
func NewGate(location string, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		location: location,
		timeout:  10 * time.Second,
		logger:   logger,
	}
}

// Load returns the admin list, fetching it on first use. Concurrent first
// calls share a single fetch.
func (g *Gate) Load(ctx context.Context) ([]types.AdminUser, error) {
	g.mu.RLock()
	if g.ready {
		users := g.users
		g.mu.RUnlock()
		return users, nil
	}
	g.mu.RUnlock()

	v, err, _ := g.group.Do("admins", func() (any, error) {
		g.mu.RLock()
		if g.ready {
			users := g.users
			g.mu.RUnlock()
			return users, nil
		}
		g.mu.RUnlock()

		list, err := g.fetch(ctx)
		if err != nil {
			return nil, err
		}
		g.mu.Lock()
		g.users = list.Users
		g.ready = true
		g.mu.Unlock()
		return list.Users, nil
	})
	if err != nil {
		g.logger.Warn("failed to load admin list", zap.String("location", g.location), zap.Error(err))
		return nil, err
	}
	return v.([]types.AdminUser), nil
}

// Invalidate drops the cached admin list so the next check reloads it.
func (g *Gate) Invalidate() {
	g.mu.Lock()
	g.users = nil
	g.ready = false
	g.mu.Unlock()
}

func (g *Gate) fetch(ctx context.Context) (*types.AdminList, error) {
	data, err := g.read(ctx)
	if err != nil {
		return nil, err
	}
	if err := schemas.ValidateBytes(rootschemas.Admins, data); err != nil {
		return nil, &AdminListError{Location: g.location, Message: "invalid admin list", Cause: err}
	}
	var list types.AdminList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, &AdminListError{Location: g.location, Message: "failed to decode admin list", Cause: err}
	}
	return &list, nil
}

func (g *Gate) read(ctx context.Context) ([]byte, error) {
	data, err := fetch.Read(ctx, g.location, g.timeout)
	if err != nil {
		return nil, &AdminListError{Location: g.location, Message: "failed to read admin list", Cause: err}
	}
	return data, nil
}

// Check trims both inputs and returns the matching admin's username. When the
// admin list cannot be loaded no pair matches.
func (g *Gate) Check(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	users, err := g.Load(ctx)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	for _, u := range users {
		if u.Username != username {
			continue
		}
		if matches(u, password) {
			return u.Username, nil
		}
	}
	return "", ErrInvalidCredentials
}

func matches(u types.AdminUser, password string) bool {
	if u.PasswordHash != "" {
		return config.VerifyPassword(password, u.PasswordHash)
	}
	return subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) == 1
}
