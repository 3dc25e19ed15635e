package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskdeck/models"
)

// UserStore persists user records in Postgres.
type UserStore struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user with an already-hashed password. A duplicate
// username maps to ErrUsernameTaken via the unique constraint.
func (s *UserStore) Create(ctx context.Context, username, passwordHash string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := "INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id;"
	user := models.User{Username: username, PasswordHash: passwordHash}
	err := s.db.QueryRow(ctx, stmt, username, passwordHash).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("inserting user: %w", err)
	}
	return user, nil
}

func (s *UserStore) ByUsername(ctx context.Context, username string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := "SELECT id, username, password_hash FROM users WHERE username = $1;"
	var user models.User
	err := s.db.QueryRow(ctx, stmt, username).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}
