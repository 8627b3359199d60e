// server/session/session.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ViniZap4/nohtz-server/domain"
)

// Store persists sessions by token. Load returns nil, nil for unknown tokens.
type Store interface {
	Save(ctx context.Context, s domain.Session) error
	Load(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Manager struct {
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

func NewManager(store Store, ttl time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "session").Logger(),
		now:    time.Now,
	}
}

// Create issues a fresh opaque token that expires ttl after now.
func (m *Manager) Create(ctx context.Context, userID int64, username string) (*domain.Session, error) {
	now := m.now().UTC()
	s := domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &s, nil
}

// Lookup returns nil, nil when the token is unknown or expired.
func (m *Manager) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}
	s, err := m.store.Load(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return nil, nil
	}
	if s.Expired(m.now()) {
		if err := m.store.Delete(ctx, token); err != nil {
			m.logger.Warn().Err(err).Msg("drop expired session")
		}
		return nil, nil
	}
	return s, nil
}

func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// RunSweeper deletes expired sessions every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.store.DeleteExpired(ctx, m.now())
			if err != nil {
				m.logger.Error().Err(err).Msg("sweep expired sessions")
				continue
			}
			if n > 0 {
				m.logger.Debug().Int64("removed", n).Msg("swept expired sessions")
			}
		}
	}
}
