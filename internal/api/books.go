package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bookshelfd/bookshelf/internal/bookfile"
	"github.com/bookshelfd/bookshelf/internal/log"
	"github.com/bookshelfd/bookshelf/internal/store"
	"github.com/bookshelfd/bookshelf/internal/validate"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 * 1024

// bookHandler holds dependencies for the book endpoints.
type bookHandler struct {
	books      *store.Books
	summarizer bookfile.Summarizer
	logger     log.Logger
}

// bookResponse is the JSON representation of a book.
type bookResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Summary   string `json:"summary,omitempty"`
	OwnerID   *int64 `json:"owner_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toBookResponse(b *store.Book) bookResponse {
	resp := bookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		OwnerID:   b.OwnerID,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
	if b.Summary != nil {
		resp.Summary = *b.Summary
	}
	return resp
}

// ownerFromContext converts the authenticated user (if any) into the
// optional owner scope the store expects.
func ownerFromContext(ctx context.Context) *int64 {
	if id, ok := userIDFromContext(ctx); ok {
		return &id
	}
	return nil
}

// list handles GET /api/v1/books and GET /api/v1/books?title=...
func (h *bookHandler) list(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	var (
		books []*store.Book
		err   error
	)
	if title := r.URL.Query().Get("title"); title != "" {
		books, err = h.books.SearchByTitle(r.Context(), title, owner)
	} else {
		books, err = h.books.List(r.Context(), owner)
	}
	if err != nil {
		h.logger.Error("listing books", "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "failed to list books")
		return
	}

	items := make([]bookResponse, len(books))
	for i, b := range books {
		items[i] = toBookResponse(b)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"books": items,
		"total": len(items),
	})
}

// createBookRequest is the request body for adding a book.
type createBookRequest struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Summary string `json:"summary"`
}

// create handles POST /api/v1/books. Adding a book that already exists
// in the caller's scope returns the existing book unchanged.
func (h *bookHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	owner := ownerFromContext(r.Context())
	id, err := h.books.Add(r.Context(), req.Title, req.Author, req.Summary, owner)
	if err != nil {
		h.writeBookError(w, err, "failed to add book")
		return
	}

	book, err := h.books.Get(r.Context(), id, owner)
	if err != nil {
		h.logger.Error("loading added book", "error", err, "book_id", id)
		writeError(w, http.StatusInternalServerError, "add_failed", "failed to add book")
		return
	}
	writeJSON(w, http.StatusCreated, toBookResponse(book))
}

// get handles GET /api/v1/books/{id}.
func (h *bookHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	book, err := h.books.Get(r.Context(), id, ownerFromContext(r.Context()))
	if err != nil {
		h.writeBookError(w, err, "failed to get book")
		return
	}
	writeJSON(w, http.StatusOK, toBookResponse(book))
}

// updateSummaryRequest is the request body for replacing a summary.
type updateSummaryRequest struct {
	Summary string `json:"summary"`
}

// updateSummary handles PUT /api/v1/books/{id}/summary.
func (h *bookHandler) updateSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	var req updateSummaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	owner := ownerFromContext(r.Context())
	if err := h.books.UpdateSummary(r.Context(), id, req.Summary, owner); err != nil {
		h.writeBookError(w, err, "failed to update summary")
		return
	}

	book, err := h.books.Get(r.Context(), id, owner)
	if err != nil {
		h.writeBookError(w, err, "failed to load book")
		return
	}
	writeJSON(w, http.StatusOK, toBookResponse(book))
}

// generateSummary handles POST /api/v1/books/{id}/summary: asks the AI
// service for a summary and stores it.
func (h *bookHandler) generateSummary(w http.ResponseWriter, r *http.Request) {
	if h.summarizer == nil {
		writeError(w, http.StatusServiceUnavailable, "ai_unavailable", "AI summarization is not configured")
		return
	}

	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	owner := ownerFromContext(r.Context())
	book, err := h.books.Get(r.Context(), id, owner)
	if err != nil {
		h.writeBookError(w, err, "failed to get book")
		return
	}

	text, err := h.summarizer.Generate(r.Context(), book.Title, book.Author)
	if err != nil {
		h.logger.Error("generating summary", "error", err, "book_id", id)
		writeError(w, http.StatusBadGateway, "generation_failed", "failed to generate summary")
		return
	}

	if err := h.books.UpdateSummary(r.Context(), id, text, owner); err != nil {
		h.writeBookError(w, err, "failed to store summary")
		return
	}

	book.Summary = &text
	writeJSON(w, http.StatusOK, toBookResponse(book))
}

// bookID parses and range-checks the {id} path segment.
func (h *bookHandler) bookID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := validate.BookID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return 0, false
	}
	return id, true
}

// writeBookError maps store and validation errors to HTTP responses.
// Validation messages are surfaced verbatim for user-facing display.
func (h *bookHandler) writeBookError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, store.ErrBookNotFound):
		writeError(w, http.StatusNotFound, "not_found", "book not found")
	default:
		h.logger.Error(fallback, "error", err)
		writeError(w, http.StatusInternalServerError, "storage_failed", fallback)
	}
}

// isValidationError reports whether err is any input-validation failure.
func isValidationError(err error) bool {
	for _, sentinel := range []error{
		validate.ErrEmptyInput,
		validate.ErrTooLong,
		validate.ErrTypeMismatch,
		validate.ErrControlCharacters,
		validate.ErrInvalidCharacters,
		validate.ErrDangerousContent,
		validate.ErrOutOfRange,
		validate.ErrHiddenFile,
		validate.ErrMissingExtension,
		validate.ErrDisallowedExtension,
		validate.ErrPathEscape,
		validate.ErrSuspiciousPattern,
		validate.ErrEmptyFile,
		validate.ErrNegativeSize,
		validate.ErrTooLarge,
		validate.ErrNotUTF8,
		validate.ErrBinaryContent,
		validate.ErrExcessiveControlChars,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// decodeJSON decodes a bounded JSON request body, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON request body")
		return false
	}
	return true
}
