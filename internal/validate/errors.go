package validate

import "errors"

// Sentinel errors for validation failures.
// These errors are part of the package's public API and should be checked
// using errors.Is(). Every validator wraps one of these with a
// human-readable message via fmt.Errorf("%w: ...").
//
// Example:
//
//	title, err := validate.Title(raw)
//	if errors.Is(err, validate.ErrTooLong) {
//	    // Tell the user to shorten the title
//	}
var (
	// ErrEmptyInput indicates a required value was empty after trimming.
	ErrEmptyInput = errors.New("input cannot be empty")

	// ErrTooLong indicates a value exceeds its maximum length.
	ErrTooLong = errors.New("input too long")

	// ErrTypeMismatch indicates a value could not be coerced to the expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrControlCharacters indicates a single-line field contains NUL, CR, LF, or TAB.
	ErrControlCharacters = errors.New("contains control characters")

	// ErrInvalidCharacters indicates a value contains characters forbidden for its field.
	ErrInvalidCharacters = errors.New("contains invalid characters")

	// ErrDangerousContent indicates a value contains a known injection marker.
	ErrDangerousContent = errors.New("contains potentially dangerous content")

	// ErrOutOfRange indicates a numeric value is outside its allowed range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrHiddenFile indicates a filename starts with a dot.
	ErrHiddenFile = errors.New("hidden files are not allowed")

	// ErrMissingExtension indicates a filename has no extension.
	ErrMissingExtension = errors.New("file must have an extension")

	// ErrDisallowedExtension indicates a file extension is not in the allow-list.
	ErrDisallowedExtension = errors.New("file extension not allowed")

	// ErrPathEscape indicates a path resolves outside its base directory.
	ErrPathEscape = errors.New("path is outside allowed directory")

	// ErrSuspiciousPattern indicates a path contains a traversal token that
	// survived resolution.
	ErrSuspiciousPattern = errors.New("path contains suspicious patterns")

	// ErrEmptyFile indicates an uploaded file has zero bytes.
	ErrEmptyFile = errors.New("file cannot be empty")

	// ErrNegativeSize indicates a reported file size is negative.
	ErrNegativeSize = errors.New("file size cannot be negative")

	// ErrTooLarge indicates an uploaded file exceeds the size cap.
	ErrTooLarge = errors.New("file too large")

	// ErrNotUTF8 indicates file content is not valid UTF-8 text.
	ErrNotUTF8 = errors.New("file is not valid UTF-8 text")

	// ErrBinaryContent indicates file content contains NUL characters.
	ErrBinaryContent = errors.New("file appears to be binary")

	// ErrExcessiveControlChars indicates file content is mostly control characters.
	ErrExcessiveControlChars = errors.New("file contains too many control characters")
)
