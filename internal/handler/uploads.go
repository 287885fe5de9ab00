package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/darzibook/api/internal/upload"
)

// UploadHandler handles design photo uploads.
type UploadHandler struct {
	uploader upload.Uploader
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploader upload.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// RegisterRoutes registers upload endpoints on the given Chi router.
// Expected to be mounted inside a business-scoped subrouter: /businesses/{bid}/uploads
func (h *UploadHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Upload)
}

// Upload handles POST /businesses/{bid}/uploads with a multipart "file"
// field. The size limit is checked against the declared part size before
// any bytes are copied.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")

	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxBytes+4096)
	if err := r.ParseMultipartForm(upload.MaxBytes); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "file exceeds 5MB upload limit"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file field is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	destPath := fmt.Sprintf("%s/designs/%s%s", businessID, uuid.NewString(), ext)

	url, err := h.uploader.Upload(r.Context(), file, header.Size, destPath, nil)
	if err != nil {
		if errors.Is(err, upload.ErrTooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: upload design photo: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
