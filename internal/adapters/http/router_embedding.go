package http

import (
	"log/slog"
	"net/http"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/core/ports"
	"github.com/legalarch/docai/internal/observability/metrics"
)

// EmbeddingRouter serves the embedding service.
type EmbeddingRouter struct {
	embedder  ports.Embedder
	modelName string
	logger    *slog.Logger
}

func NewEmbeddingRouter(embedder ports.Embedder, modelName string, logger *slog.Logger) *EmbeddingRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingRouter{embedder: embedder, modelName: modelName, logger: logger}
}

func (rt *EmbeddingRouter) Handler(m *metrics.ServiceMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", rt.handleHealth)
	mux.HandleFunc("POST /embed/single", rt.handleEmbedSingle)
	mux.HandleFunc("POST /embed", rt.handleEmbedBatch)
	mux.HandleFunc("POST /similarity", rt.handleSimilarity)
	mux.HandleFunc("GET /model/info", rt.handleModelInfo)
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
	return mux
}

func (rt *EmbeddingRouter) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "embedding",
		"model":     rt.modelName,
		"timestamp": timestamp(),
	})
}

func (rt *EmbeddingRouter) handleEmbedSingle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeBadRequest(w, "text is required")
		return
	}

	vector, err := rt.embedder.EmbedQuery(r.Context(), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"embedding":  vector,
		"dimensions": len(vector),
	})
}

func (rt *EmbeddingRouter) handleEmbedBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Texts []string `json:"texts"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Texts) == 0 {
		writeBadRequest(w, "texts is required")
		return
	}

	vectors, err := rt.embedder.Embed(r.Context(), req.Texts)
	if err != nil {
		writeError(w, err)
		return
	}
	dimensions := 0
	if len(vectors) > 0 {
		dimensions = len(vectors[0])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"embeddings": vectors,
		"count":      len(vectors),
		"dimensions": dimensions,
	})
}

// handleSimilarity embeds both texts and returns their cosine similarity.
func (rt *EmbeddingRouter) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text1 string `json:"text1"`
		Text2 string `json:"text2"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text1 == "" || req.Text2 == "" {
		writeBadRequest(w, "text1 and text2 are required")
		return
	}

	vectors, err := rt.embedder.Embed(r.Context(), []string{req.Text1, req.Text2})
	if err != nil {
		writeError(w, err)
		return
	}
	if len(vectors) != 2 {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "embedding backend returned wrong vector count"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"similarity": domain.CosineSimilarity(vectors[0], vectors[1]),
	})
}

func (rt *EmbeddingRouter) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"model_name": rt.modelName,
		"type":       "embedding",
	})
}
