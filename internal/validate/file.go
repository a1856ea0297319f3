package validate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// File upload constraints.
const (
	// MaxFilenameLength is the maximum filename length in characters.
	MaxFilenameLength = 255

	// MaxFileSize is the upload size cap in bytes (16 MiB). Content
	// validation runs on a complete in-memory buffer, so this also bounds
	// worst-case memory held for a rejected upload.
	MaxFileSize = 16 * 1024 * 1024
)

// allowedExtensions is the fixed allow-list for uploaded files.
var allowedExtensions = map[string]bool{
	"txt": true,
}

// suspiciousPathTokens are traversal markers rejected when they appear in
// the raw input and survive into the resolved path.
var suspiciousPathTokens = []string{"..", "~/", "$HOME"}

// Filename validates a filename for file uploads.
// The filename must be a bare name (no path separators), non-hidden, with
// an allow-listed extension. Returns the trimmed filename with its
// original casing.
func Filename(filename string) (string, error) {
	filename = strings.TrimSpace(filename)

	if filename == "" {
		slog.Warn("filename validation failed", "reason", "empty string")
		return "", fmt.Errorf("%w: filename", ErrEmptyInput)
	}

	if n := utf8.RuneCountInString(filename); n > MaxFilenameLength {
		slog.Warn("filename validation failed", "reason", "too long", "length", n, "max", MaxFilenameLength)
		return "", fmt.Errorf("%w: filename cannot exceed %d characters", ErrTooLong, MaxFilenameLength)
	}

	if strings.ContainsAny(filename, "\x00/\\") {
		slog.Warn("filename validation failed", "reason", "invalid characters", "filename", filename)
		return "", fmt.Errorf("%w: filename", ErrInvalidCharacters)
	}

	if strings.HasPrefix(filename, ".") {
		slog.Warn("filename validation failed", "reason", "hidden file", "filename", filename)
		return "", fmt.Errorf("%w: %q", ErrHiddenFile, filename)
	}

	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		slog.Warn("filename validation failed", "reason", "no extension", "filename", filename)
		return "", fmt.Errorf("%w: %q", ErrMissingExtension, filename)
	}

	ext := strings.ToLower(filename[dot+1:])
	if !allowedExtensions[ext] {
		slog.Warn("filename validation failed", "reason", "disallowed extension", "extension", ext)
		return "", fmt.Errorf("%w: only %s files are allowed", ErrDisallowedExtension, allowedExtensionList())
	}

	return filename, nil
}

// FilePath validates a file path to prevent path traversal attacks
// (CWE-22) and returns the resolved absolute path.
//
// If baseDir is non-empty, the resolved path must be a descendant of the
// resolved base directory. Containment is checked on canonical forms of
// both sides, with symlinks resolved where the targets exist, never by raw
// string prefix matching, so "../" chains and symlink tricks both fail.
func FilePath(path, baseDir string) (string, error) {
	if strings.ContainsRune(path, 0) {
		slog.Warn("file path validation failed", "reason", "null bytes")
		return "", fmt.Errorf("%w: file path", ErrInvalidCharacters)
	}

	resolved, err := resolvePath(path)
	if err != nil {
		slog.Warn("file path validation failed", "reason", "cannot resolve", "error", err)
		return "", fmt.Errorf("%w: invalid file path", ErrInvalidCharacters)
	}

	if baseDir != "" {
		base, err := resolvePath(baseDir)
		if err != nil {
			slog.Warn("file path validation failed", "reason", "cannot resolve base directory", "error", err)
			return "", fmt.Errorf("%w: invalid base directory", ErrInvalidCharacters)
		}

		rel, err := filepath.Rel(base, resolved)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			slog.Warn("file path validation failed", "reason", "outside base directory", "base", base)
			return "", fmt.Errorf("%w", ErrPathEscape)
		}
	}

	// Traversal tokens that appear in the raw input AND survive into the
	// resolved string indicate resolution did not neutralize them.
	lowerInput := strings.ToLower(path)
	for _, tok := range suspiciousPathTokens {
		if strings.Contains(lowerInput, strings.ToLower(tok)) && strings.Contains(resolved, tok) {
			slog.Warn("file path validation failed", "reason", "suspicious pattern", "pattern", tok)
			return "", fmt.Errorf("%w: %q", ErrSuspiciousPattern, tok)
		}
	}

	return resolved, nil
}

// resolvePath cleans a path, makes it absolute, and resolves symlinks.
// If the target does not exist yet, symlinks are resolved on the deepest
// existing ancestor so a dangling leaf still gets canonical treatment.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", err
	}

	real, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return real, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	// Target doesn't exist: canonicalize the nearest existing ancestor and
	// re-append the remainder.
	dir := abs
	var tail []string
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		tail = append(tail, filepath.Base(dir))
		dir = parent

		real, err := filepath.EvalSymlinks(dir)
		if err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				real = filepath.Join(real, tail[i])
			}
			return real, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
	}
}

// FileSize validates an upload size in bytes. Pure check, no return value.
func FileSize(size int64) error {
	if size < 0 {
		slog.Warn("file size validation failed", "reason", "negative", "size", size)
		return fmt.Errorf("%w: %d", ErrNegativeSize, size)
	}
	if size == 0 {
		slog.Warn("file size validation failed", "reason", "empty file")
		return fmt.Errorf("%w", ErrEmptyFile)
	}
	if size > MaxFileSize {
		slog.Warn("file size validation failed", "reason", "too large", "size", size, "max", MaxFileSize)
		return fmt.Errorf("%w: file size cannot exceed %dMB", ErrTooLarge, MaxFileSize/(1024*1024))
	}
	return nil
}

// FileContent validates uploaded bytes as safe text: valid UTF-8, no NUL
// characters, and no more than 10% control characters (other than
// newline, carriage return, and tab). Pure check, no return value.
func FileContent(content []byte) error {
	if !utf8.Valid(content) {
		slog.Warn("file content validation failed", "reason", "not valid UTF-8")
		return fmt.Errorf("%w", ErrNotUTF8)
	}

	text := string(content)
	if strings.ContainsRune(text, 0) {
		slog.Warn("file content validation failed", "reason", "null bytes")
		return fmt.Errorf("%w", ErrBinaryContent)
	}

	var total, control int
	for _, r := range text {
		total++
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			control++
		}
	}
	if total > 0 && float64(control)/float64(total) > 0.1 {
		slog.Warn("file content validation failed", "reason", "excessive control characters",
			"control", control, "total", total)
		return fmt.Errorf("%w", ErrExcessiveControlChars)
	}

	return nil
}

func allowedExtensionList() string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	return strings.Join(exts, ", ")
}
