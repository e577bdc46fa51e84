package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lectern/internal/storage"
)

const maxUploadBytes = 20 << 20 // 20 MB

// FileHandler serves and accepts slide HTML files for a presentation.
type FileHandler struct {
	store storage.Provider
}

// NewFileHandler creates a handler backed by the library store.
func NewFileHandler(store storage.Provider) *FileHandler {
	return &FileHandler{store: store}
}

// safeName validates that the filename is a plain .html name (no path
// separators, no traversal).
func safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	if !strings.HasSuffix(strings.ToLower(cleaned), ".html") {
		return "", fmt.Errorf("only .html files are served: %s", name)
	}
	return cleaned, nil
}

// ServeFile handles GET /api/presentations/{id}/files/{filename}.
func (h *FileHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name, err := safeName(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := h.store.ReadFile(chi.URLParam(r, "id"), name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Upload handles POST /api/presentations/{id}/files
// (multipart/form-data, field "file"). The uploaded file lands on disk
// only; the manifest is untouched until a slide entry or sync pass
// references it.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	name, err := safeName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.store.WriteFile(id, name, data); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to write file"))
		return
	}

	writeJSON(w, http.StatusCreated, FileUploadResponse{
		File: name,
		Size: int64(len(data)),
		URL:  "/api/presentations/" + id + "/files/" + name,
	})
}
