package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/bookshelfd/bookshelf/internal/bookfile"
	"github.com/bookshelfd/bookshelf/internal/log"
	"github.com/bookshelfd/bookshelf/internal/validate"
)

// importHandler accepts book list uploads.
type importHandler struct {
	importer *bookfile.Importer
	logger   log.Logger
}

// upload handles POST /api/v1/import with a multipart "file" part. The
// whole pipeline (filename, size, content, path validation, then parse
// and store) runs in bookfile.Importer.
func (h *importHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, validate.MaxFileSize+4096)
	if err := r.ParseMultipartForm(validate.MaxFileSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload", "could not parse multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file", "no file uploaded")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, validate.MaxFileSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read_failed", "could not read uploaded file")
		return
	}

	result, err := h.importer.Import(r.Context(), header.Filename, content, ownerFromContext(r.Context()))
	if err != nil {
		h.writeImportError(w, err, result)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"added":   result.Added,
		"skipped": result.Skipped,
	})
}

// writeImportError surfaces validation failures with the partial result;
// books stored before the failing entry stay stored.
func (h *importHandler) writeImportError(w http.ResponseWriter, err error, result bookfile.Result) {
	if isValidationError(err) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "validation_failed",
			"message": err.Error(),
			"added":   result.Added,
			"skipped": result.Skipped,
		})
		return
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", "uploaded file exceeds the size limit")
		return
	}
	h.logger.Error("importing book list", "error", err)
	writeError(w, http.StatusInternalServerError, "import_failed", "failed to import book list")
}
