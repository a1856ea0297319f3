// Package auth handles account registration and credential checks.
//
// Passwords are hashed with bcrypt. Authentication failures are uniform:
// a wrong password, an unknown email, and a malformed email all produce
// ErrInvalidCredentials so responses cannot reveal which accounts exist.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/bookshelfd/bookshelf/internal/store"
)

var (
	// ErrInvalidEmail indicates the email failed validation.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword indicates the password failed the strength rules.
	ErrWeakPassword = errors.New("password does not meet requirements")

	// ErrEmailTaken indicates an account with the email already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials indicates authentication failed. Deliberately
	// covers unknown accounts and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// MaxEmailLength follows RFC 5321.
const MaxEmailLength = 254

// Password length bounds. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail normalizes (trims, lowercases) and validates an email
// address.
func ValidateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email cannot be empty", ErrInvalidEmail)
	}
	if len(email) > MaxEmailLength {
		return "", fmt.Errorf("%w: email address is too long", ErrInvalidEmail)
	}
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}
	return email, nil
}

// ValidatePassword checks password strength: length bounds plus at least
// one lowercase letter, one uppercase letter, and one digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must be at most %d characters", ErrWeakPassword, MaxPasswordLength)
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLower {
		return fmt.Errorf("%w: must contain a lowercase letter", ErrWeakPassword)
	}
	if !hasUpper {
		return fmt.Errorf("%w: must contain an uppercase letter", ErrWeakPassword)
	}
	if !hasDigit {
		return fmt.Errorf("%w: must contain a digit", ErrWeakPassword)
	}
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Service wires account operations to the user store.
type Service struct {
	users *store.Users
}

// NewService creates an authentication service over users.
func NewService(users *store.Users) *Service {
	return &Service{users: users}
}

// Register validates the credentials and creates a new account, returning
// the new user's id.
func (s *Service) Register(ctx context.Context, email, password string) (int64, error) {
	email, err := ValidateEmail(email)
	if err != nil {
		return 0, err
	}
	if err := ValidatePassword(password); err != nil {
		return 0, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}

	// Uniqueness is settled by the insert itself, not a prior lookup, so
	// concurrent registrations for the same email cannot race past it.
	id, err := s.users.Create(ctx, email, hash)
	if errors.Is(err, store.ErrDuplicateEmail) {
		return 0, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}
	return id, err
}

// Authenticate verifies email and password against the user store. Every
// failure mode returns ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*store.User, error) {
	email, err := ValidateEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
