package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"chem-purchase-assistant/models"
	"chem-purchase-assistant/repository"
)

const (
	maxUsernameLength = 64
	minPasswordLength = 6
	// bcrypt ignores everything past 72 bytes
	maxPasswordLength = 72
)

var (
	ErrCredentialsRequired = errors.New("username and password are required")
	ErrInvalidUsername     = errors.New("username must be 1-64 characters without spaces")
	ErrWeakPassword        = errors.New("password must be 6-72 bytes")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
)

// AuthServiceInterface defines the contract for account operations
type AuthServiceInterface interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// AuthService registers and authenticates users with bcrypt password hashes
type AuthService struct {
	users  repository.UserRepositoryInterface
	cost   int
	logger *zap.Logger
}

// NewAuthService creates an AuthService. cost 0 uses bcrypt.DefaultCost.
func NewAuthService(users repository.UserRepositoryInterface, cost int, logger *zap.Logger) *AuthService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{users: users, cost: cost, logger: logger}
}

var _ AuthServiceInterface = (*AuthService)(nil)

// Register creates an account
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	if len(username) > maxUsernameLength || strings.ContainsAny(username, " \t\r\n") {
		return nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, string(hash))
	if errors.Is(err, repository.ErrUserExists) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate checks the credentials and returns the matching user
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Warn("login failed", zap.String("username", username), zap.String("reason", "unknown user"))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login failed", zap.String("username", username), zap.String("reason", "bad password"))
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}
