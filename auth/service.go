// server/auth/service.go
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ViniZap4/nohtz-server/domain"
	"github.com/ViniZap4/nohtz-server/session"
)

const (
	maxUsernameLen = 64
	maxPasswordLen = 72 // bcrypt ignores anything longer
)

type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type Service struct {
	users     UserRepository
	sessions  *session.Manager
	cost      int
	dummyHash []byte
	logger    zerolog.Logger
}

func NewService(users UserRepository, sessions *session.Manager, bcryptCost int, logger zerolog.Logger) (*Service, error) {
	// Compared against on unknown usernames so both failure paths cost a bcrypt check.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		return nil, err
	}
	return &Service{
		users:     users,
		sessions:  sessions,
		cost:      bcryptCost,
		dummyHash: dummy,
		logger:    logger.With().Str("component", "auth").Logger(),
	}, nil
}

func validateCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", domain.Validation("Username and password are required")
	}
	if len(username) > maxUsernameLen {
		return "", domain.Validation("Username is too long")
	}
	if len(password) > maxPasswordLen {
		return "", domain.Validation("Password is too long")
	}
	return username, nil
}

// Register creates the user and logs them in.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.Session, error) {
	username, err := validateCredentials(username, password)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, domain.Internal(err)
	}

	user, err := s.users.Create(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, domain.Internal(err)
	}

	sess, err := s.sessions.Create(ctx, user.ID, user.Username)
	if err != nil {
		return nil, domain.Internal(err)
	}
	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return sess, nil
}

// Login fails with the same error whether the user is unknown or the
// password is wrong.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	username, err := validateCredentials(username, password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, domain.Internal(err)
	}

	hash := s.dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || user == nil {
		s.logger.Debug().Str("username", username).Msg("login rejected")
		return nil, domain.Auth("Invalid credentials")
	}

	sess, err := s.sessions.Create(ctx, user.ID, user.Username)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return sess, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return domain.Internal(err)
	}
	return nil
}

func (s *Service) Whoami(ctx context.Context, token string) (domain.Identity, error) {
	sess, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return domain.Identity{}, domain.Internal(err)
	}
	if sess == nil {
		return domain.Identity{}, domain.Auth("Not authenticated")
	}
	return sess.Identity(), nil
}
