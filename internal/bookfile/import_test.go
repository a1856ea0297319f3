package bookfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookshelfd/bookshelf/internal/log"
	"github.com/bookshelfd/bookshelf/internal/store"
	"github.com/bookshelfd/bookshelf/internal/validate"
)

type fakeSummarizer struct {
	calls int
	err   error
}

func (f *fakeSummarizer) Generate(_ context.Context, title, author string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "Summary of " + title + " by " + author + ".", nil
}

func newTestImporter(t *testing.T, summarizer Summarizer) (*Importer, *store.Books, string) {
	imp, books, _, uploadDir := newTestImporterDB(t, summarizer)
	return imp, books, uploadDir
}

func newTestImporterDB(t *testing.T, summarizer Summarizer) (*Importer, *store.Books, *store.Users, string) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrating database: %v", err)
	}

	books := store.NewBooks(db)
	users := store.NewUsers(db)
	uploadDir := t.TempDir()
	return NewImporter(books, summarizer, uploadDir, log.NewNop()), books, users, uploadDir
}

func TestImport(t *testing.T) {
	imp, books, uploadDir := newTestImporter(t, nil)
	ctx := context.Background()

	content := []byte("# my shelf\nDune by Frank Herbert\nBeowulf\nHyperion - Dan Simmons\n")
	result, err := imp.Import(ctx, "shelf.txt", content, nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Added != 2 || result.Skipped != 1 {
		t.Errorf("result = %+v, want 2 added, 1 skipped", result)
	}

	all, err := books.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("stored %d books, want 2", len(all))
	}

	// The temporary upload must be gone.
	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		t.Fatalf("reading upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("upload dir not cleaned up: %v", entries)
	}
}

func TestImport_GeneratesSummaries(t *testing.T) {
	summarizer := &fakeSummarizer{}
	imp, books, _ := newTestImporter(t, summarizer)
	ctx := context.Background()

	result, err := imp.Import(ctx, "shelf.txt", []byte("Dune by Frank Herbert\n"), nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Added != 1 || summarizer.calls != 1 {
		t.Fatalf("result = %+v, summarizer calls = %d", result, summarizer.calls)
	}

	all, err := books.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if all[0].Summary == nil || !strings.Contains(*all[0].Summary, "Dune") {
		t.Errorf("summary = %v", all[0].Summary)
	}
}

func TestImport_SummaryFailureIsNonFatal(t *testing.T) {
	summarizer := &fakeSummarizer{err: errors.New("quota exceeded")}
	imp, books, _ := newTestImporter(t, summarizer)
	ctx := context.Background()

	result, err := imp.Import(ctx, "shelf.txt", []byte("Dune by Frank Herbert\n"), nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Added != 1 {
		t.Errorf("result = %+v", result)
	}

	all, err := books.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if all[0].Summary != nil {
		t.Errorf("summary should be absent after generation failure, got %q", *all[0].Summary)
	}
}

func TestImport_RejectsBeforeWriting(t *testing.T) {
	imp, books, uploadDir := newTestImporter(t, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		filename string
		content  []byte
		wantErr  error
	}{
		{"bad extension", "shelf.exe", []byte("Dune by Frank Herbert\n"), validate.ErrDisallowedExtension},
		{"hidden file", ".shelf.txt", []byte("Dune by Frank Herbert\n"), validate.ErrHiddenFile},
		{"path separator", "a/b.txt", []byte("x\n"), validate.ErrInvalidCharacters},
		{"empty file", "shelf.txt", []byte{}, validate.ErrEmptyFile},
		{"binary content", "shelf.txt", []byte("text\x00more"), validate.ErrBinaryContent},
		{"invalid utf8", "shelf.txt", []byte{0xff, 0xfe}, validate.ErrNotUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := imp.Import(ctx, tt.filename, tt.content, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	all, err := books.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("rejected imports stored %d books", len(all))
	}
	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		t.Fatalf("reading upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("rejected imports left files behind: %v", entries)
	}
}

func TestImport_InvalidEntryAborts(t *testing.T) {
	imp, books, _ := newTestImporter(t, nil)
	ctx := context.Background()

	content := []byte("Dune by Frank Herbert\n<script>alert(1) by Nobody\n")
	result, err := imp.Import(ctx, "shelf.txt", content, nil)
	if !errors.Is(err, validate.ErrDangerousContent) {
		t.Fatalf("error = %v, want ErrDangerousContent", err)
	}
	if result.Added != 1 {
		t.Errorf("result = %+v, want the first entry kept", result)
	}

	all, err := books.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("stored %d books, want 1", len(all))
	}
}

func TestImport_OwnedBooks(t *testing.T) {
	imp, books, users, _ := newTestImporterDB(t, nil)
	ctx := context.Background()

	owner, err := users.Create(ctx, "reader@example.com", "hash")
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	if _, err := imp.Import(ctx, "shelf.txt", []byte("Dune by Frank Herbert\n"), &owner); err != nil {
		t.Fatalf("Import: %v", err)
	}

	all, err := books.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].OwnerID == nil || *all[0].OwnerID != owner {
		t.Errorf("imported book owner = %+v", all[0])
	}
}
