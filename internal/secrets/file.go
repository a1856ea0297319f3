package secrets

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookshelfd/bookshelf/internal/log"
)

// DefaultSecretsDir is where container orchestrators conventionally mount
// secret files.
const DefaultSecretsDir = "/run/secrets"

// FileProvider reads secrets from files named exactly after their key
// inside a secrets directory (Docker secrets, Kubernetes mounted secrets).
type FileProvider struct {
	dir    string
	logger log.Logger
}

// NewFileProvider creates a file-based provider rooted at dir.
// An empty dir falls back to DefaultSecretsDir.
func NewFileProvider(dir string, logger log.Logger) *FileProvider {
	if dir == "" {
		dir = DefaultSecretsDir
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &FileProvider{dir: dir, logger: logger}
}

// Name implements Provider.
func (p *FileProvider) Name() string { return "file" }

// GetSecret implements Provider. The file's content is whitespace-trimmed.
// Missing files, unreadable files, and keys that are not bare names all
// resolve to absent; read errors are logged, never raised.
func (p *FileProvider) GetSecret(_ context.Context, key string) (string, bool) {
	// Keys map to filenames; a key with path separators could escape the
	// secrets directory.
	if key == "" || strings.ContainsAny(key, "/\\") || strings.ContainsRune(key, 0) {
		p.logger.Warn("secret key is not a valid file name", "key", key)
		return "", false
	}

	path := filepath.Join(p.dir, key)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warn("failed to read secret file", "key", key, "error", err)
		return "", false
	}

	v := strings.TrimSpace(string(data))
	return v, v != ""
}
