// Package validate is the input validation and security boundary layer.
//
// Every untrusted value (book titles, authors, summaries, numeric IDs,
// filenames, file paths, uploaded bytes) passes through exactly one
// validator here before it reaches the database or the filesystem. The
// validators are pure functions: no shared state, safe for concurrent use.
//
// Each validator either returns the normalized value or fails with a
// wrapped sentinel error (see errors.go). Rejections are logged at Warn
// level with the reason; raw secret material is never logged.
//
// Validation is defense in depth, not a substitute for output encoding:
// user content emitted into HTML must still go through SanitizeHTML.
package validate

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Length limits, in characters (runes), matching the storage schema's
// CHECK constraints.
const (
	MaxTitleLength   = 500
	MaxAuthorLength  = 200
	MaxSummaryLength = 10000
)

// MaxBookID is a defensive ceiling on identifier values (32-bit signed
// bound), unrelated to any real storage limit.
const MaxBookID = math.MaxInt32

// dangerousTokens are injection markers rejected case-insensitively in
// every free-text field. Fixed policy: not configurable.
var dangerousTokens = []string{
	"<script",
	"javascript:",
	"onerror=",
	"onclick=",
	"<iframe",
	"eval(",
}

// controlChars are the control characters forbidden in single-line fields.
const controlChars = "\x00\r\n\t"

// Title validates and normalizes a book title.
// Returns the trimmed title, or a wrapped sentinel error.
func Title(title string) (string, error) {
	title = strings.TrimSpace(title)

	if title == "" {
		slog.Warn("title validation failed", "reason", "empty string")
		return "", fmt.Errorf("%w: title", ErrEmptyInput)
	}

	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		slog.Warn("title validation failed", "reason", "too long", "length", n, "max", MaxTitleLength)
		return "", fmt.Errorf("%w: title cannot exceed %d characters", ErrTooLong, MaxTitleLength)
	}

	if strings.ContainsAny(title, controlChars) {
		slog.Warn("title validation failed", "reason", "control characters")
		return "", fmt.Errorf("%w: title", ErrControlCharacters)
	}

	if tok := findDangerousToken(title); tok != "" {
		slog.Warn("title validation failed", "reason", "dangerous pattern", "pattern", tok)
		return "", fmt.Errorf("%w: title", ErrDangerousContent)
	}

	return title, nil
}

// Author validates and normalizes an author name.
// Identical shape to Title with a 200-character limit.
func Author(author string) (string, error) {
	author = strings.TrimSpace(author)

	if author == "" {
		slog.Warn("author validation failed", "reason", "empty string")
		return "", fmt.Errorf("%w: author", ErrEmptyInput)
	}

	if n := utf8.RuneCountInString(author); n > MaxAuthorLength {
		slog.Warn("author validation failed", "reason", "too long", "length", n, "max", MaxAuthorLength)
		return "", fmt.Errorf("%w: author name cannot exceed %d characters", ErrTooLong, MaxAuthorLength)
	}

	if strings.ContainsAny(author, controlChars) {
		slog.Warn("author validation failed", "reason", "control characters")
		return "", fmt.Errorf("%w: author", ErrControlCharacters)
	}

	if tok := findDangerousToken(author); tok != "" {
		slog.Warn("author validation failed", "reason", "dangerous pattern", "pattern", tok)
		return "", fmt.Errorf("%w: author", ErrDangerousContent)
	}

	return author, nil
}

// Summary validates and normalizes an optional book summary.
// An empty or whitespace-only summary normalizes to "" (absent): summaries
// are optional, never empty-string in storage. Unlike Title and Author,
// embedded newlines are permitted because summaries are prose. Only NUL is
// rejected as an invalid character.
func Summary(summary string) (string, error) {
	summary = strings.TrimSpace(summary)

	if summary == "" {
		return "", nil
	}

	if n := utf8.RuneCountInString(summary); n > MaxSummaryLength {
		slog.Warn("summary validation failed", "reason", "too long", "length", n, "max", MaxSummaryLength)
		return "", fmt.Errorf("%w: summary cannot exceed %d characters", ErrTooLong, MaxSummaryLength)
	}

	if strings.ContainsRune(summary, 0) {
		slog.Warn("summary validation failed", "reason", "null bytes")
		return "", fmt.Errorf("%w: summary", ErrInvalidCharacters)
	}

	if tok := findDangerousToken(summary); tok != "" {
		slog.Warn("summary validation failed", "reason", "dangerous pattern", "pattern", tok)
		return "", fmt.Errorf("%w: summary", ErrDangerousContent)
	}

	return summary, nil
}

// BookID validates a database book identifier, coercing from integer
// kinds, numeric strings, and floats (truncating). Fails ErrTypeMismatch
// if the value cannot be coerced, ErrOutOfRange if not in [1, MaxBookID].
func BookID(v any) (int64, error) {
	var id int64

	switch n := v.(type) {
	case int:
		id = int64(n)
	case int32:
		id = int64(n)
	case int64:
		id = n
	case uint:
		if n > math.MaxInt64 {
			return 0, rangeError(v)
		}
		id = int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return 0, rangeError(v)
		}
		id = int64(n)
	case float32:
		return BookID(float64(n))
	case float64:
		// int64(NaN) and int64(±Inf) are implementation-defined values,
		// not integers.
		if math.IsNaN(n) || math.IsInf(n, 0) {
			slog.Warn("book ID validation failed", "reason", "non-finite number")
			return 0, fmt.Errorf("%w: book ID must be a valid integer", ErrTypeMismatch)
		}
		id = int64(n)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			slog.Warn("book ID validation failed", "reason", "not an integer")
			return 0, fmt.Errorf("%w: book ID must be a valid integer", ErrTypeMismatch)
		}
		id = parsed
	default:
		slog.Warn("book ID validation failed", "reason", "unsupported type", "type", fmt.Sprintf("%T", v))
		return 0, fmt.Errorf("%w: book ID must be a valid integer", ErrTypeMismatch)
	}

	if id <= 0 || id > MaxBookID {
		return 0, rangeError(id)
	}

	return id, nil
}

func rangeError(v any) error {
	slog.Warn("book ID validation failed", "reason", "out of range", "value", v)
	return fmt.Errorf("%w: book ID must be a positive integer not exceeding %d", ErrOutOfRange, int64(MaxBookID))
}

// BookData validates a complete book record in one call: title, then
// author, then summary. It fails with the first field's error; the order
// is part of the contract so callers get deterministic error reporting.
//
// This is the single required entry point before any book write. The
// storage layer calls it even when a front-end already has.
func BookData(title, author, summary string) (string, string, string, error) {
	validTitle, err := Title(title)
	if err != nil {
		return "", "", "", err
	}

	validAuthor, err := Author(author)
	if err != nil {
		return "", "", "", err
	}

	validSummary, err := Summary(summary)
	if err != nil {
		return "", "", "", err
	}

	return validTitle, validAuthor, validSummary, nil
}

// findDangerousToken returns the first injection marker found in s
// (case-insensitive), or "" if none.
func findDangerousToken(s string) string {
	lower := strings.ToLower(s)
	for _, tok := range dangerousTokens {
		if strings.Contains(lower, tok) {
			return tok
		}
	}
	return ""
}
