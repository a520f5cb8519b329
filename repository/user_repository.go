package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"chem-purchase-assistant/db"
	"chem-purchase-assistant/models"
)

const uniqueViolation = "23505"

// UserRepository handles database operations for users
type UserRepository struct {
	conn *sql.DB
}

// NewUserRepository creates a UserRepository. A nil conn uses db.DB.
func NewUserRepository(conn *sql.DB) *UserRepository {
	if conn == nil {
		conn = db.DB
	}
	return &UserRepository{conn: conn}
}

// Ensure UserRepository implements UserRepositoryInterface
var _ UserRepositoryInterface = (*UserRepository)(nil)

// Create inserts a user and returns it with its generated ID
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, created_at
	`

	var user models.User
	var createdAt time.Time
	err := r.conn.QueryRowContext(ctx, query, username, passwordHash).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&createdAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	user.CreatedAt = createdAt.Format(time.RFC3339)
	return &user, nil
}

// GetByUsername loads a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1
	`

	var user models.User
	var createdAt time.Time
	err := r.conn.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}

	user.CreatedAt = createdAt.Format(time.RFC3339)
	return &user, nil
}
