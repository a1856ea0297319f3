// Package app provides application initialization and dependency wiring.
//
// App is the container shared by all commands. It loads configuration,
// opens and migrates the database, and constructs the store, auth, import,
// and summary components with their dependencies.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookshelfd/bookshelf/internal/auth"
	"github.com/bookshelfd/bookshelf/internal/bookfile"
	"github.com/bookshelfd/bookshelf/internal/config"
	"github.com/bookshelfd/bookshelf/internal/store"
	"github.com/bookshelfd/bookshelf/internal/summary"
)

// App is the core application container.
type App struct {
	Config *config.Config

	DB       *sql.DB
	Books    *store.Books
	Users    *store.Users
	Auth     *auth.Service
	Importer *bookfile.Importer

	// Generator is nil when no AI API key is configured.
	Generator *summary.Generator
}

// Setup loads configuration and initializes all application components.
func Setup(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return SetupWithConfig(ctx, cfg)
}

// SetupWithConfig initializes all application components from an already
// loaded configuration.
func SetupWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := store.Migrate(db); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("migrating database: %w", err), closeErr)
	}

	books := store.NewBooks(db)
	users := store.NewUsers(db)

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		closeErr := db.Close()
		return nil, errors.Join(err, closeErr)
	}

	var summarizer bookfile.Summarizer
	if gen != nil {
		summarizer = gen
	}

	return &App{
		Config:    cfg,
		DB:        db,
		Books:     books,
		Users:     users,
		Auth:      auth.NewService(users),
		Importer:  bookfile.NewImporter(books, summarizer, cfg.UploadDir, slog.Default()),
		Generator: gen,
	}, nil
}

// newGenerator creates the AI summary generator, or returns nil when no
// API key is configured. An invalid key is fatal in production.
func newGenerator(ctx context.Context, cfg *config.Config) (*summary.Generator, error) {
	key, err := cfg.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving AI API key: %w", err)
	}
	if key == "" {
		slog.Info("no AI API key configured, summary generation disabled")
		return nil, nil
	}

	gen, err := summary.NewGenerator(ctx, key, cfg.AIModel)
	if err != nil {
		return nil, fmt.Errorf("creating summary generator: %w", err)
	}
	return gen, nil
}

// Summarizer returns the generator as a bookfile.Summarizer, or nil when
// summary generation is disabled.
func (a *App) Summarizer() bookfile.Summarizer {
	if a.Generator == nil {
		return nil
	}
	return a.Generator
}

// Close releases all application resources.
func (a *App) Close() error {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
	}
	return nil
}
