package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/core/ports"
	"github.com/legalarch/docai/internal/observability/metrics"
)

// Pinger reports whether a model backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BridgeRouter serves the AI bridge: document analysis, full processing and
// semantic search.
type BridgeRouter struct {
	analyzer ports.DocumentAnalyzer
	local    Pinger
	backends []string
	logger   *slog.Logger
}

func NewBridgeRouter(analyzer ports.DocumentAnalyzer, local Pinger, backends []string, logger *slog.Logger) *BridgeRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BridgeRouter{analyzer: analyzer, local: local, backends: backends, logger: logger}
}

func (rt *BridgeRouter) Handler(m *metrics.ServiceMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", rt.handleHealth)
	mux.HandleFunc("POST /api/documents/analyze", rt.handleAnalyze)
	mux.HandleFunc("POST /api/documents/process-ai", rt.handleProcess)
	mux.HandleFunc("POST /api/documents/search", rt.handleSearch)
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
	return mux
}

func (rt *BridgeRouter) handleHealth(w http.ResponseWriter, r *http.Request) {
	localLoaded := false
	if rt.local != nil {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		localLoaded = rt.local.Ping(pingCtx) == nil
		cancel()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"service":            "bridge",
		"local_model_loaded": localLoaded,
		"generation_chain":   rt.backends,
		"timestamp":          timestamp(),
	})
}

type analyzeRequest struct {
	DocID        int64           `json:"docId"`
	DocumentText string          `json:"documentText"`
	Folders      []domain.Folder `json:"folders"`
}

type analyzeResponse struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Remarks         string  `json:"remarks"`
	SuggestedFolder *string `json:"suggested_folder"`
	Category        *string `json:"category"`
	DocumentType    string  `json:"document_type"`
}

func (rt *BridgeRouter) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DocID <= 0 {
		writeBadRequest(w, "docId is required")
		return
	}

	analysis, suggestion, err := rt.analyzer.Analyze(r.Context(),
		r.Header.Get("Authorization"), req.DocID, req.DocumentText, req.Folders)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := analyzeResponse{
		Title:        analysis.Title,
		Description:  analysis.Description,
		Remarks:      analysis.Remarks,
		DocumentType: analysis.DocumentType,
	}
	if suggestion.Folder != nil {
		resp.SuggestedFolder = &suggestion.Folder.Name
	}
	if suggestion.Category != nil {
		resp.Category = &suggestion.Category.Name
	}
	writeJSON(w, http.StatusOK, resp)
}

type processRequest struct {
	DocID int64 `json:"doc_id"`
}

func (rt *BridgeRouter) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DocID <= 0 {
		writeBadRequest(w, "doc_id is required")
		return
	}

	outcome, err := rt.analyzer.ProcessDocument(r.Context(), r.Header.Get("Authorization"), req.DocID)
	if err != nil {
		rt.logger.Error("document processing failed", "doc_id", req.DocID, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (rt *BridgeRouter) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	hits, err := rt.analyzer.Search(r.Context(), r.Header.Get("Authorization"), req.Query, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": hits,
		"count":   len(hits),
	})
}
