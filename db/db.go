package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// DB holds the database connection
var DB *sql.DB

// ErrNoDSN is returned when no connection string is configured
var ErrNoDSN = errors.New("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// InitDB opens the pgx connection pool, pings it and bootstraps the schema
func InitDB(ctx context.Context, dsn string, logger *zap.Logger) error {
	if dsn == "" {
		return ErrNoDSN
	}

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := EnsureSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return err
	}

	DB = conn
	logger.Info("database connection established")
	return nil
}

// EnsureSchema creates the tables the server needs if they are missing
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, usersSchema); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
