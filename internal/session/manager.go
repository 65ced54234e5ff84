// Package session keeps the logged-in identity on the device as a signed
// token in the local key-value store.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/metadata"
)

// Identity is the user a session belongs to.
type Identity struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

type Manager struct {
	store  metadata.Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store metadata.Repository, secret string, ttl time.Duration) *Manager {
	return &Manager{store: store, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) Start(ctx context.Context, userID, email string) error {
	token, err := GenerateToken(userID, email, m.secret, m.now(), m.ttl)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}
	if err := m.store.Set(ctx, common.SessionTokenKey, []byte(token)); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	return nil
}

// Current returns the identity of the active session. A missing or expired
// session yields common.ErrNotLoggedIn; expired tokens are removed.
func (m *Manager) Current(ctx context.Context) (*Identity, error) {
	raw, err := m.store.Get(ctx, common.SessionTokenKey)
	if err != nil {
		return nil, fmt.Errorf("read session token: %w", err)
	}
	if raw == nil {
		return nil, common.ErrNotLoggedIn
	}

	claims, err := ParseToken(string(raw), m.secret, m.now())
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			_ = m.store.Delete(ctx, common.SessionTokenKey)
			return nil, common.ErrNotLoggedIn
		}
		return nil, err
	}

	id := &Identity{UserID: claims.UserID, Email: claims.Email}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// CurrentUserID resolves the logged-in user for services.
func (m *Manager) CurrentUserID(ctx context.Context) (string, error) {
	id, err := m.Current(ctx)
	if err != nil {
		return "", err
	}
	return id.UserID, nil
}

func (m *Manager) End(ctx context.Context) error {
	if err := m.store.Delete(ctx, common.SessionTokenKey); err != nil {
		return fmt.Errorf("delete session token: %w", err)
	}
	return nil
}
