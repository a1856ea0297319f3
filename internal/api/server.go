// Package api exposes the bookshelf over a JSON HTTP API.
//
// Every book write routes through the validation layer via the store;
// uploads route through the bookfile import pipeline. Authentication is a
// signed stateless cookie; anonymous requests see only unowned books.
package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/bookshelfd/bookshelf/internal/auth"
	"github.com/bookshelfd/bookshelf/internal/bookfile"
	"github.com/bookshelfd/bookshelf/internal/log"
	"github.com/bookshelfd/bookshelf/internal/store"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger        log.Logger
	Books         *store.Books        // Required
	Auth          *auth.Service       // Required
	Importer      *bookfile.Importer  // Required
	Summarizer    bookfile.Summarizer // Optional: nil disables AI summaries
	DB            *sql.DB             // Required: readiness probe
	SessionSecret string              // Required: cookie signing key
	ForceHTTPS    bool                // Enables Secure cookies and HSTS
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Books == nil || cfg.Auth == nil || cfg.Importer == nil || cfg.DB == nil {
		return nil, errors.New("books, auth, importer, and db are required")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	sessions := newSessionCodec(cfg.SessionSecret, cfg.ForceHTTPS)

	bh := &bookHandler{books: cfg.Books, summarizer: cfg.Summarizer, logger: logger}
	ih := &importHandler{importer: cfg.Importer, logger: logger}
	ah := &accountHandler{auth: cfg.Auth, sessions: sessions, logger: logger}

	mux := http.NewServeMux()

	// Books
	mux.HandleFunc("GET /api/v1/books", bh.list)
	mux.HandleFunc("POST /api/v1/books", bh.create)
	mux.HandleFunc("GET /api/v1/books/{id}", bh.get)
	mux.HandleFunc("PUT /api/v1/books/{id}/summary", bh.updateSummary)
	mux.HandleFunc("POST /api/v1/books/{id}/summary", bh.generateSummary)

	// Book list uploads
	mux.HandleFunc("POST /api/v1/import", ih.upload)

	// Accounts
	mux.HandleFunc("POST /api/v1/auth/register", ah.register)
	mux.HandleFunc("POST /api/v1/auth/login", ah.login)
	mux.HandleFunc("POST /api/v1/auth/logout", ah.logout)

	// Build middleware stack (outermost first):
	//   Recovery → Logging → User → Routes
	var handler http.Handler = mux
	handler = userMiddleware(sessions)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	forceHTTPS := cfg.ForceHTTPS
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w, forceHTTPS)
		handler.ServeHTTP(w, r)
	})

	// Use a top-level mux to separate health probes from middleware stack
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.DB))
	topMux.Handle("/", final)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
