// Package account registers users and issues the access tokens that gate the
// admin and match routes.
package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/iamasit07/4-in-a-row/arena/internal/repository/postgres"
	"github.com/iamasit07/4-in-a-row/arena/pkg/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("username must be 3-50 letters, digits, '_' or '-'")
	ErrWeakPassword       = errors.New("weak password")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)

type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*postgres.User, error)
	GetUserByUsername(ctx context.Context, username string) (*postgres.User, error)
}

type Session struct {
	User        *postgres.User `json:"user"`
	AccessToken string         `json:"access_token"`
}

type Service struct {
	repo   UserRepository
	issuer *auth.Issuer
	logger *zap.Logger
}

func NewService(repo UserRepository, issuer *auth.Issuer, logger *zap.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, logger: logger}
}

// Register creates the account and logs it in. The first account created
// becomes admin.
func (s *Service) Register(ctx context.Context, username, password string) (*Session, error) {
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if err := auth.ValidatePasswordStrength(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := s.repo.CreateUser(ctx, username, hash)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username), zap.Bool("admin", user.IsAdmin))
	return s.session(user)
}

func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, postgres.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

// Authenticate validates an access token.
func (s *Service) Authenticate(token string) (*auth.Claims, error) {
	return s.issuer.ValidateAccessToken(token)
}

func (s *Service) session(user *postgres.User) (*Session, error) {
	token, err := s.issuer.GenerateAccessToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &Session{User: user, AccessToken: token}, nil
}
