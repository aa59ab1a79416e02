package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/andrasnagy-data/voicelog/internal/shared/config"
	"github.com/andrasnagy-data/voicelog/internal/shared/cookie"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type (
	servicer interface {
		ValidateCredentials(ctx context.Context, username, password string) (*User, error)
		SecretKey() []byte
		SecureCookies() bool
	}

	service struct {
		user      User
		secretKey []byte
		secure    bool
	}
)

// NewAuthService builds the single-user authenticator from configuration.
func NewAuthService(cfg *config.Config) (servicer, error) {
	userID, err := uuid.Parse(cfg.UserId)
	if err != nil {
		return nil, fmt.Errorf("parse USER_ID: %w", err)
	}

	key, err := cookie.ParseKey(cfg.SecretKey)
	if err != nil {
		return nil, err
	}

	return &service{
		user: User{
			ID:           userID,
			Username:     cfg.Username,
			PasswordHash: cfg.PasswordHash,
		},
		secretKey: key,
		secure:    cfg.IsEnvProd(),
	}, nil
}

// ValidateCredentials checks username and password
func (s *service) ValidateCredentials(_ context.Context, username, password string) (*User, error) {
	if s.user.Username == "" || username != s.user.Username {
		return nil, ErrInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword([]byte(s.user.PasswordHash), []byte(password))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user := s.user
	return &user, nil
}

func (s *service) SecretKey() []byte {
	return s.secretKey
}

func (s *service) SecureCookies() bool {
	return s.secure
}
