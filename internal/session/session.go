// Package session issues and resolves the signed cookie token that carries a logged-in user.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskmanager/internal/pkg/jwtutil"
)

var ErrInvalidSession = errors.New("invalid session")

// Registry is the optional server-side record of live sessions.
type Registry interface {
	Register(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error
	Lookup(ctx context.Context, sessionID string) (uint, bool, error)
	Remove(ctx context.Context, sessionID string) error
}

type Issued struct {
	Token      string
	ExpiresAt  time.Time
	Persistent bool
	// MaxAge is the cookie Max-Age in seconds; zero means a browser-session cookie.
	MaxAge int
}

type Manager struct {
	secret           string
	lifetime         time.Duration
	rememberLifetime time.Duration
	registry         Registry
	now              func() time.Time
}

type Option func(*Manager)

func WithRegistry(registry Registry) Option {
	return func(m *Manager) { m.registry = registry }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(secret string, lifetime, rememberLifetime time.Duration, opts ...Option) *Manager {
	m := &Manager{
		secret:           secret,
		lifetime:         lifetime,
		rememberLifetime: rememberLifetime,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Stateful() bool {
	return m.registry != nil
}

func (m *Manager) Issue(ctx context.Context, userID uint, remember bool) (*Issued, error) {
	ttl := m.lifetime
	if remember {
		ttl = m.rememberLifetime
	}

	now := m.now()
	sessionID := uuid.NewString()
	token, err := jwtutil.GenerateToken(m.secret, now, ttl, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if m.registry != nil {
		if err := m.registry.Register(ctx, sessionID, userID, ttl); err != nil {
			return nil, fmt.Errorf("register session failed: %w", err)
		}
	}

	issued := &Issued{Token: token, ExpiresAt: now.Add(ttl), Persistent: remember}
	if remember {
		issued.MaxAge = int(ttl.Seconds())
	}
	return issued, nil
}

// Resolve returns the user id carried by a valid, unrevoked token.
func (m *Manager) Resolve(ctx context.Context, token string) (uint, error) {
	if token == "" {
		return 0, ErrInvalidSession
	}
	claims, err := jwtutil.ParseToken(m.secret, token, m.now)
	if err != nil {
		return 0, ErrInvalidSession
	}
	if m.registry != nil {
		userID, ok, err := m.registry.Lookup(ctx, claims.ID)
		if err != nil {
			return 0, fmt.Errorf("lookup session failed: %w", err)
		}
		if !ok || userID != claims.UserID {
			return 0, ErrInvalidSession
		}
	}
	return claims.UserID, nil
}

// Revoke forgets the session server-side. Tokens that no longer parse are ignored.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if m.registry == nil || token == "" {
		return nil
	}
	claims, err := jwtutil.ParseToken(m.secret, token, m.now)
	if err != nil {
		return nil
	}
	if err := m.registry.Remove(ctx, claims.ID); err != nil {
		return fmt.Errorf("revoke session failed: %w", err)
	}
	return nil
}
