package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/darzibook/api/internal/handler"
	"github.com/darzibook/api/internal/upload"
)

func setupUploadRouter(baseDir string) *chi.Mux {
	h := handler.NewUploadHandler(upload.NewLocal(baseDir))
	r := chi.NewRouter()
	r.Route("/businesses/{bid}/uploads", h.RegisterRoutes)
	return r
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestUpload_Success(t *testing.T) {
	dir := t.TempDir()
	router := setupUploadRouter(dir)

	body, contentType := multipartBody(t, "file", "design.jpg", []byte("jpeg bytes"))
	req := httptest.NewRequest("POST", "/businesses/biz-1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeMapResponse(t, rr)
	url, _ := resp["url"].(string)
	if !strings.HasPrefix(url, "/uploads/biz-1/designs/") {
		t.Fatalf("url: got %q, want /uploads/biz-1/designs/ prefix", url)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Errorf("url should keep the original extension, got %q", url)
	}

	stored := filepath.Join(dir, strings.TrimPrefix(url, "/uploads/"))
	data, err := os.ReadFile(stored)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("stored content: got %q", data)
	}
}

func TestUpload_MissingFileField(t *testing.T) {
	router := setupUploadRouter(t.TempDir())

	body, contentType := multipartBody(t, "other", "design.jpg", []byte("x"))
	req := httptest.NewRequest("POST", "/businesses/biz-1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUpload_TooLarge(t *testing.T) {
	router := setupUploadRouter(t.TempDir())

	big := make([]byte, upload.MaxBytes+1)
	body, contentType := multipartBody(t, "file", "design.jpg", big)
	req := httptest.NewRequest("POST", "/businesses/biz-1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusRequestEntityTooLarge)
	}
}
