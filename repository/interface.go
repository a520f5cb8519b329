package repository

import (
	"context"
	"errors"

	"chem-purchase-assistant/models"
)

var (
	// ErrUserExists is returned when the username is already taken
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user has the requested username
	ErrUserNotFound = errors.New("user not found")
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
