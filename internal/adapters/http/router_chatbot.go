package http

import (
	"log/slog"
	"net/http"

	"github.com/legalarch/docai/internal/core/ports"
	"github.com/legalarch/docai/internal/observability/metrics"
)

// ChatbotRouter serves the conversational assistant.
type ChatbotRouter struct {
	assistant ports.ChatAssistant
	store     ports.ConversationStore
	modelName string
	logger    *slog.Logger
}

func NewChatbotRouter(assistant ports.ChatAssistant, store ports.ConversationStore, modelName string, logger *slog.Logger) *ChatbotRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatbotRouter{assistant: assistant, store: store, modelName: modelName, logger: logger}
}

func (rt *ChatbotRouter) Handler(m *metrics.ServiceMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", rt.handleHealth)
	mux.HandleFunc("POST /chat", rt.handleChat)
	mux.HandleFunc("GET /conversations", rt.handleListConversations)
	mux.HandleFunc("GET /conversations/{conversation_id}/history", rt.handleHistory)
	mux.HandleFunc("DELETE /conversations/{conversation_id}", rt.handleClear)
	mux.HandleFunc("GET /model/info", rt.handleModelInfo)
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
	return mux
}

func (rt *ChatbotRouter) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "healthy",
		"service":              "chatbot",
		"model":                rt.modelName,
		"active_conversations": rt.store.Count(),
		"timestamp":            timestamp(),
	})
}

type chatRequest struct {
	Message         string `json:"message"`
	ConversationID  string `json:"conversation_id"`
	DocumentContext string `json:"document_context"`
}

func (rt *ChatbotRouter) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, err := rt.assistant.Respond(r.Context(), req.Message, req.ConversationID, req.DocumentContext)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (rt *ChatbotRouter) handleListConversations(w http.ResponseWriter, _ *http.Request) {
	summaries := rt.store.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": summaries,
		"count":         len(summaries),
	})
}

func (rt *ChatbotRouter) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("conversation_id")
	history := rt.store.History(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"messages":        history,
		"count":           len(history),
	})
}

func (rt *ChatbotRouter) handleClear(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("conversation_id")
	if !rt.store.Clear(id) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "not found",
			Details: "conversation " + id + " does not exist",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"cleared":         true,
	})
}

func (rt *ChatbotRouter) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"model_name": rt.modelName,
		"type":       "chat",
	})
}
