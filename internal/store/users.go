package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrUserNotFound indicates no user matched the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail indicates the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// User is a registered account. PasswordHash is a bcrypt hash, never the
// plaintext password.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	// Verified defaults to false; no flow enforces it yet.
	Verified  bool
	CreatedAt time.Time
}

// Users provides access to the users table.
type Users struct {
	db *sql.DB
}

// NewUsers creates a user store over db.
func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

// Create inserts a new user and returns its id, or ErrDuplicateEmail if
// the email is already registered. The unique constraint is absorbed with
// ON CONFLICT DO NOTHING so a concurrent duplicate registration surfaces
// as ErrDuplicateEmail rather than a raw constraint violation.
func (s *Users) Create(ctx context.Context, email, passwordHash string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash) VALUES (?, ?) ON CONFLICT(email) DO NOTHING",
		email, passwordHash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check insert result: %w", err)
	}
	if rows == 0 {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get user id: %w", err)
	}
	return id, nil
}

// GetByEmail returns the user with the given email, or ErrUserNotFound.
func (s *Users) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, verified, created_at FROM users WHERE email = ?",
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Verified, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Get returns the user with the given id, or ErrUserNotFound.
func (s *Users) Get(ctx context.Context, id int64) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, verified, created_at FROM users WHERE id = ?",
		id,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Verified, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
