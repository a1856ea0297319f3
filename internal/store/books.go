package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bookshelfd/bookshelf/internal/validate"
)

// ErrBookNotFound indicates no book matched the id within the caller's
// visibility scope.
var ErrBookNotFound = errors.New("book not found")

// Book is one shelf entry. Summary is nil when no summary has been
// recorded; OwnerID is nil for legacy rows visible to everyone.
type Book struct {
	ID        int64
	Title     string
	Author    string
	Summary   *string
	OwnerID   *int64
	CreatedAt time.Time
}

// Books provides ownership-aware access to the books table.
type Books struct {
	db *sql.DB
}

// NewBooks creates a book store over db.
func NewBooks(db *sql.DB) *Books {
	return &Books{db: db}
}

// Add validates and inserts a book, returning its id. Adding a book that
// already exists within the caller's visibility scope returns the
// existing id unchanged. Validation failures propagate unmodified.
//
// The insert uses ON CONFLICT DO NOTHING so two concurrent adds of the
// same (title, author, owner) cannot surface a uniqueness violation: the
// loser of the race re-queries for the winner's id.
func (s *Books) Add(ctx context.Context, title, author, summary string, owner *int64) (int64, error) {
	title, author, summary, err := validate.BookData(title, author, summary)
	if err != nil {
		return 0, err
	}

	id, err := s.findByTitleAuthor(ctx, title, author, owner)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrBookNotFound) {
		return 0, err
	}

	var summaryArg *string
	if summary != "" {
		summaryArg = &summary
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO books (title, author, summary, owner_id) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING",
		title, author, summaryArg, owner,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add book: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Lost the race to a concurrent insert; the row exists now.
		return s.findByTitleAuthor(ctx, title, author, owner)
	}

	newID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get book id: %w", err)
	}
	return newID, nil
}

// UpdateSummary validates and stores a new summary for the book. An empty
// summary clears the stored one. Books outside the caller's visibility
// scope report ErrBookNotFound.
func (s *Books) UpdateSummary(ctx context.Context, bookID int64, summary string, owner *int64) error {
	summary, err := validate.Summary(summary)
	if err != nil {
		return err
	}

	var summaryArg *string
	if summary != "" {
		summaryArg = &summary
	}

	query := "UPDATE books SET summary = ? WHERE id = ?"
	args := []any{summaryArg, bookID}
	if owner != nil {
		query += " AND (owner_id IS NULL OR owner_id = ?)"
		args = append(args, *owner)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %d", ErrBookNotFound, bookID)
	}
	return nil
}

// Get returns the book with the given id, or ErrBookNotFound when it does
// not exist or is owned by somebody else.
func (s *Books) Get(ctx context.Context, bookID int64, owner *int64) (*Book, error) {
	query := "SELECT id, title, author, summary, owner_id, created_at FROM books WHERE id = ?"
	args := []any{bookID}
	if owner != nil {
		query += " AND (owner_id IS NULL OR owner_id = ?)"
		args = append(args, *owner)
	}

	var book Book
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&book.ID, &book.Title, &book.Author, &book.Summary, &book.OwnerID, &book.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrBookNotFound, bookID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

// List returns all books visible to the caller, newest first.
func (s *Books) List(ctx context.Context, owner *int64) ([]*Book, error) {
	query := "SELECT id, title, author, summary, owner_id, created_at FROM books"
	var args []any
	if owner != nil {
		query += " WHERE owner_id IS NULL OR owner_id = ?"
		args = append(args, *owner)
	}
	query += " ORDER BY created_at DESC, id DESC"

	return s.queryBooks(ctx, query, args...)
}

// ListMissingSummaries returns visible books without a summary, oldest
// first so backfilling works through the catalog in insertion order.
func (s *Books) ListMissingSummaries(ctx context.Context, owner *int64) ([]*Book, error) {
	query := "SELECT id, title, author, summary, owner_id, created_at FROM books WHERE (summary IS NULL OR summary = '')"
	var args []any
	if owner != nil {
		query += " AND (owner_id IS NULL OR owner_id = ?)"
		args = append(args, *owner)
	}
	query += " ORDER BY created_at ASC, id ASC"

	return s.queryBooks(ctx, query, args...)
}

// SearchByTitle returns visible books whose title matches exactly.
func (s *Books) SearchByTitle(ctx context.Context, title string, owner *int64) ([]*Book, error) {
	query := "SELECT id, title, author, summary, owner_id, created_at FROM books WHERE title = ?"
	args := []any{title}
	if owner != nil {
		query += " AND (owner_id IS NULL OR owner_id = ?)"
		args = append(args, *owner)
	}

	return s.queryBooks(ctx, query, args...)
}

func (s *Books) queryBooks(ctx context.Context, query string, args ...any) ([]*Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		var book Book
		if err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Summary, &book.OwnerID, &book.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, &book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}

// findByTitleAuthor resolves (title, author) to an id within the caller's
// visibility scope. Without an acting owner the lookup is unscoped.
func (s *Books) findByTitleAuthor(ctx context.Context, title, author string, owner *int64) (int64, error) {
	query := "SELECT id FROM books WHERE title = ? AND author = ?"
	args := []any{title, author}
	if owner != nil {
		query += " AND (owner_id IS NULL OR owner_id = ?)"
		args = append(args, *owner)
	}

	var id int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s by %s", ErrBookNotFound, title, author)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find book: %w", err)
	}
	return id, nil
}
