package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/legalarch/docai/internal/core/ports"
	"github.com/legalarch/docai/internal/observability/metrics"
)

const maxUploadBytes = 50 << 20

// ExtractionRouter serves the text-extraction service.
type ExtractionRouter struct {
	extractor ports.TextExtractor
	logger    *slog.Logger
}

func NewExtractionRouter(extractor ports.TextExtractor, logger *slog.Logger) *ExtractionRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionRouter{extractor: extractor, logger: logger}
}

func (rt *ExtractionRouter) Handler(m *metrics.ServiceMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", rt.handleHealth)
	mux.HandleFunc("POST /extract", rt.handleExtractUpload)
	mux.HandleFunc("POST /extract/path", rt.handleExtractPath)
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
	return mux
}

func (rt *ExtractionRouter) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "extraction",
		"timestamp": timestamp(),
	})
}

// handleExtractUpload accepts a multipart upload, spools it to a temp file
// and runs extraction on it.
func (rt *ExtractionRouter) handleExtractUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeBadRequest(w, fmt.Sprintf("malformed multipart upload: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	tmpDir, err := os.MkdirTemp("", "docai-extract-*")
	if err != nil {
		writeError(w, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filepath.Base(header.Filename))
	dst, err := os.Create(tmpPath)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		writeError(w, err)
		return
	}
	dst.Close()

	result := rt.extractor.ExtractFile(r.Context(), tmpPath, header.Header.Get("Content-Type"))
	writeJSON(w, http.StatusOK, result)
}

type extractPathRequest struct {
	FilePath string `json:"file_path"`
	MimeType string `json:"mime_type"`
}

// handleExtractPath extracts from a file already on shared storage.
func (rt *ExtractionRouter) handleExtractPath(w http.ResponseWriter, r *http.Request) {
	var req extractPathRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FilePath == "" {
		writeBadRequest(w, "file_path is required")
		return
	}
	if _, err := os.Stat(req.FilePath); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "not found",
			Details: fmt.Sprintf("file %s is not readable", req.FilePath),
		})
		return
	}

	result := rt.extractor.ExtractFile(r.Context(), req.FilePath, req.MimeType)
	writeJSON(w, http.StatusOK, result)
}
