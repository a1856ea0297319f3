package app

import (
	"context"
	"testing"
)

func TestSetup(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("GOOGLE_AI_API_KEY", "")
	t.Setenv("SECRETS_DIR", "")
	t.Setenv("CLOUD_SECRET_PROVIDER", "")

	a, err := Setup(context.Background())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer a.Close()

	if a.Books == nil || a.Users == nil || a.Auth == nil || a.Importer == nil {
		t.Error("expected all core components to be wired")
	}
	if a.Generator != nil {
		t.Error("expected no generator without an API key")
	}
	if a.Summarizer() != nil {
		t.Error("Summarizer() must be a nil interface when generation is disabled")
	}

	if err := a.DB.Ping(); err != nil {
		t.Errorf("database not usable: %v", err)
	}
}
