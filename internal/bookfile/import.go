package bookfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bookshelfd/bookshelf/internal/log"
	"github.com/bookshelfd/bookshelf/internal/store"
	"github.com/bookshelfd/bookshelf/internal/validate"
)

// Summarizer generates a summary for a book. Generation failures are
// non-fatal during import.
type Summarizer interface {
	Generate(ctx context.Context, title, author string) (string, error)
}

// Result reports what an import did.
type Result struct {
	// Added counts books stored (including pre-existing ones resolved
	// idempotently).
	Added int
	// Skipped counts entries without an author.
	Skipped int
}

// Importer runs the upload pipeline: filename, size, content, and path
// validation, then parse, then per-entry validation and storage. Any
// failure aborts before the next stage runs; the temporary upload file
// is always removed.
type Importer struct {
	books      *store.Books
	summarizer Summarizer
	uploadDir  string
	logger     log.Logger
}

// NewImporter creates an importer writing temporary uploads under
// uploadDir. summarizer may be nil to disable summary generation.
func NewImporter(books *store.Books, summarizer Summarizer, uploadDir string, logger log.Logger) *Importer {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Importer{
		books:      books,
		summarizer: summarizer,
		uploadDir:  uploadDir,
		logger:     logger,
	}
}

// Import validates and ingests one uploaded book list. The upload is
// persisted to a temporary file inside the upload root before parsing,
// and removed regardless of outcome. Entries without an author are
// skipped; the first entry failing validation aborts the import, keeping
// books already stored.
func (i *Importer) Import(ctx context.Context, filename string, content []byte, owner *int64) (Result, error) {
	var result Result

	cleanName, err := validate.Filename(filename)
	if err != nil {
		return result, err
	}
	if err := validate.FileSize(int64(len(content))); err != nil {
		return result, err
	}
	if err := validate.FileContent(content); err != nil {
		return result, err
	}

	if err := os.MkdirAll(i.uploadDir, 0o750); err != nil {
		return result, fmt.Errorf("creating upload directory: %w", err)
	}

	// Random prefix prevents collisions between concurrent uploads of the
	// same filename.
	target := filepath.Join(i.uploadDir, uuid.NewString()+"-"+cleanName)
	path, err := validate.FilePath(target, i.uploadDir)
	if err != nil {
		return result, err
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return result, fmt.Errorf("writing upload: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			i.logger.Warn("failed to remove uploaded file", "path", path, "error", err)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("opening upload: %w", err)
	}
	entries, err := Parse(f)
	_ = f.Close()
	if err != nil {
		return result, err
	}

	for _, entry := range entries {
		if entry.Author == "" {
			result.Skipped++
			continue
		}

		bookID, err := i.books.Add(ctx, entry.Title, entry.Author, "", owner)
		if err != nil {
			return result, fmt.Errorf("importing %q: %w", entry.Title, err)
		}
		result.Added++

		if i.summarizer != nil {
			i.generateSummary(ctx, bookID, entry, owner)
		}
	}

	return result, nil
}

// generateSummary best-effort fills in a summary for a freshly imported
// book. Failures are logged and do not block the import.
func (i *Importer) generateSummary(ctx context.Context, bookID int64, entry Entry, owner *int64) {
	text, err := i.summarizer.Generate(ctx, entry.Title, entry.Author)
	if err != nil {
		i.logger.Warn("summary generation failed", "title", entry.Title, "error", err)
		return
	}
	if err := i.books.UpdateSummary(ctx, bookID, text, owner); err != nil {
		i.logger.Warn("failed to store generated summary", "book_id", bookID, "error", err)
	}
}
