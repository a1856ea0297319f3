package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookshelfd/bookshelf/internal/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrating database: %v", err)
	}
	return NewService(store.NewUsers(db))
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple", "reader@example.com", "reader@example.com", false},
		{"normalizes case", "Reader@Example.COM", "reader@example.com", false},
		{"trims whitespace", "  reader@example.com ", "reader@example.com", false},
		{"plus addressing", "reader+books@example.com", "reader+books@example.com", false},
		{"empty", "", "", true},
		{"missing at", "reader.example.com", "", true},
		{"missing tld", "reader@example", "", true},
		{"single letter tld", "reader@example.c", "", true},
		{"too long", strings.Repeat("a", 250) + "@x.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateEmail(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEmail) {
					t.Fatalf("ValidateEmail(%q) error = %v, want ErrInvalidEmail", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateEmail(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ValidateEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Passw0rd", false},
		{"valid long", "Correct-Horse-Battery-Staple-99", false},
		{"too short", "Pw1", true},
		{"too long", strings.Repeat("Aa1", 30), true},
		{"no uppercase", "passw0rd", true},
		{"no lowercase", "PASSW0RD", true},
		{"no digit", "Password", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				if !errors.Is(err, ErrWeakPassword) {
					t.Fatalf("ValidatePassword(%q) error = %v, want ErrWeakPassword", tt.password, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidatePassword(%q) unexpected error: %v", tt.password, err)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Passw0rd")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "Passw0rd" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "Passw0rd") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "WrongPass1") {
		t.Error("wrong password accepted")
	}
}

func TestRegister(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	id, err := svc.Register(ctx, "Reader@Example.com", "Passw0rd")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id <= 0 {
		t.Fatalf("Register returned id %d", id)
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "reader@example.com", "Other1Pass")
		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("error = %v, want ErrEmailTaken", err)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := svc.Register(ctx, "not-an-email", "Passw0rd")
		if !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("error = %v, want ErrInvalidEmail", err)
		}
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := svc.Register(ctx, "second@example.com", "weak")
		if !errors.Is(err, ErrWeakPassword) {
			t.Errorf("error = %v, want ErrWeakPassword", err)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "reader@example.com", "Passw0rd"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	t.Run("success", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "READER@example.com", "Passw0rd")
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if user.Email != "reader@example.com" {
			t.Errorf("email = %q", user.Email)
		}
	})

	// Unknown accounts, wrong passwords, and malformed emails must be
	// indistinguishable to the caller.
	failures := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "reader@example.com", "WrongPass1"},
		{"unknown account", "stranger@example.com", "Passw0rd"},
		{"malformed email", "not-an-email", "Passw0rd"},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}
