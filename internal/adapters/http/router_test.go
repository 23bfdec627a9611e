package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/infrastructure/conversation"
)

type fakeAnalyzer struct {
	lastAuth  string
	lastText  string
	searchErr error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, auth string, docID int64, text string, _ []domain.Folder) (domain.ContentAnalysis, domain.SuggestionResult, error) {
	f.lastAuth = auth
	f.lastText = text
	if text == "" {
		// Simulates the backend fetch fallback keyed by docID.
		if docID == 404 {
			return domain.ContentAnalysis{}, domain.SuggestionResult{},
				domain.WrapError(domain.ErrNotFound, "get document text", context.Canceled)
		}
		text = strings.Repeat("fetched legal text ", 5)
	}
	if len(text) < 50 {
		return domain.ContentAnalysis{}, domain.SuggestionResult{},
			domain.WrapError(domain.ErrInvalidInput, "analyze document", context.Canceled)
	}
	return domain.ContentAnalysis{
			Title:        "A Title",
			Description:  "A description of the text.",
			Remarks:      "Remarks.",
			DocumentType: "contract",
		},
		domain.SuggestionResult{
			Folder:           &domain.Folder{ID: 9, Name: "Contracts"},
			FolderConfidence: 5,
		}, nil
}

func (f *fakeAnalyzer) ProcessDocument(_ context.Context, auth string, docID int64) (*domain.ProcessOutcome, error) {
	f.lastAuth = auth
	if docID == 404 {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", context.Canceled)
	}
	return &domain.ProcessOutcome{DocID: docID}, nil
}

func (f *fakeAnalyzer) Search(_ context.Context, auth, query string, _ int) ([]domain.SearchHit, error) {
	f.lastAuth = auth
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search documents", context.Canceled)
	}
	return []domain.SearchHit{{DocID: 1, Title: "Hit", Score: 0.9}}, nil
}

type fakeAssistant struct{}

func (fakeAssistant) Respond(_ context.Context, message, conversationID, _ string) (domain.ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return domain.ChatReply{}, domain.WrapError(domain.ErrInvalidInput, "chat respond", context.Canceled)
	}
	if conversationID == "" {
		conversationID = "generated-id"
	}
	return domain.ChatReply{Response: "answer", ConversationID: conversationID}, nil
}

type fakeExtractor struct{}

func (fakeExtractor) ExtractFile(_ context.Context, _, _ string) domain.ExtractionResult {
	return domain.NewExtractionResult("extracted text", "text")
}

type fakeBatchEmbedder struct{}

func (fakeBatchEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (fakeBatchEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func quiet() *slog.Logger { return slog.New(slog.DiscardHandler) }

func do(t *testing.T, handler http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestBridgeAnalyzeEndpoint(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	router := NewBridgeRouter(analyzer, nil, []string{"rule-based"}, quiet())
	handler := router.Handler(nil)

	long := strings.Repeat("legal text ", 10)
	rec := do(t, handler, http.MethodPost, "/api/documents/analyze",
		`{"docId":7,"documentText":"`+long+`"}`,
		map[string]string{"Authorization": "Bearer abc"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var out struct {
		Title           string  `json:"title"`
		Description     string  `json:"description"`
		Remarks         string  `json:"remarks"`
		SuggestedFolder *string `json:"suggested_folder"`
		Category        *string `json:"category"`
		DocumentType    string  `json:"document_type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Title != "A Title" || out.Description == "" || out.Remarks == "" {
		t.Fatalf("response = %+v", out)
	}
	if out.DocumentType != "contract" {
		t.Fatalf("document type %q", out.DocumentType)
	}
	if out.SuggestedFolder == nil || *out.SuggestedFolder != "Contracts" {
		t.Fatalf("suggested folder = %v", out.SuggestedFolder)
	}
	if out.Category != nil {
		t.Fatalf("category = %v, want null", out.Category)
	}
	if analyzer.lastAuth != "Bearer abc" {
		t.Fatalf("auth %q not passed through", analyzer.lastAuth)
	}

	rec = do(t, handler, http.MethodPost, "/api/documents/analyze", `{"documentText":"`+long+`"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing docId status %d", rec.Code)
	}

	rec = do(t, handler, http.MethodPost, "/api/documents/analyze", `{"docId":7,"documentText":"short"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short text status %d", rec.Code)
	}
}

func TestBridgeAnalyzeFetchesTextByDocID(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	handler := NewBridgeRouter(analyzer, nil, nil, quiet()).Handler(nil)

	rec := do(t, handler, http.MethodPost, "/api/documents/analyze", `{"docId":7}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if analyzer.lastText != "" {
		t.Fatalf("text %q passed instead of triggering the fetch", analyzer.lastText)
	}

	rec = do(t, handler, http.MethodPost, "/api/documents/analyze", `{"docId":404}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown document status %d", rec.Code)
	}
}

func TestBridgeProcessPassesAuthorization(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	handler := NewBridgeRouter(analyzer, nil, nil, quiet()).Handler(nil)

	rec := do(t, handler, http.MethodPost, "/api/documents/process-ai", `{"doc_id":7}`,
		map[string]string{"Authorization": "Bearer abc"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if analyzer.lastAuth != "Bearer abc" {
		t.Fatalf("auth %q not passed through", analyzer.lastAuth)
	}

	rec = do(t, handler, http.MethodPost, "/api/documents/process-ai", `{"doc_id":404}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing doc status %d", rec.Code)
	}
}

func TestBridgeSearchEndpoint(t *testing.T) {
	handler := NewBridgeRouter(&fakeAnalyzer{}, nil, nil, quiet()).Handler(nil)

	rec := do(t, handler, http.MethodPost, "/api/documents/search", `{"query":"indemnity","limit":5}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var out struct {
		Count   int                `json:"count"`
		Results []domain.SearchHit `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Results[0].Title != "Hit" {
		t.Fatalf("out = %+v", out)
	}
}

func TestEmbeddingEndpoints(t *testing.T) {
	handler := NewEmbeddingRouter(fakeBatchEmbedder{}, "all-minilm", quiet()).Handler(nil)

	rec := do(t, handler, http.MethodPost, "/embed/single", `{"text":"hello"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var single struct {
		Dimensions int `json:"dimensions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &single); err != nil {
		t.Fatal(err)
	}
	if single.Dimensions != 3 {
		t.Fatalf("dimensions %d", single.Dimensions)
	}

	rec = do(t, handler, http.MethodPost, "/embed", `{"texts":["a","b"]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("batch status %d", rec.Code)
	}
	var batch struct {
		Count      int `json:"count"`
		Dimensions int `json:"dimensions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &batch); err != nil {
		t.Fatal(err)
	}
	if batch.Count != 2 || batch.Dimensions != 3 {
		t.Fatalf("batch = %+v", batch)
	}

	rec = do(t, handler, http.MethodPost, "/similarity", `{"text1":"a","text2":"b"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("similarity status %d", rec.Code)
	}
	var sim struct {
		Similarity float64 `json:"similarity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sim); err != nil {
		t.Fatal(err)
	}
	if sim.Similarity < 0.999 {
		t.Fatalf("similarity %f for identical vectors", sim.Similarity)
	}

	rec = do(t, handler, http.MethodPost, "/embed", `{"texts":[]}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty batch status %d", rec.Code)
	}
}

func TestChatbotConversationLifecycle(t *testing.T) {
	store := conversation.NewStore(12)
	handler := NewChatbotRouter(fakeAssistant{}, store, "llama3.2:3b", quiet()).Handler(nil)

	rec := do(t, handler, http.MethodPost, "/chat", `{"message":"hello"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status %d: %s", rec.Code, rec.Body)
	}

	store.Append("c9", domain.RoleUser, "kept question")
	rec = do(t, handler, http.MethodGet, "/conversations/c9/history", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status %d", rec.Code)
	}
	var hist struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatal(err)
	}
	if hist.Count != 1 {
		t.Fatalf("history count %d", hist.Count)
	}

	rec = do(t, handler, http.MethodDelete, "/conversations/c9", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status %d", rec.Code)
	}
	rec = do(t, handler, http.MethodDelete, "/conversations/c9", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status %d", rec.Code)
	}
}

func TestChatbotRejectsMalformedBody(t *testing.T) {
	handler := NewChatbotRouter(fakeAssistant{}, conversation.NewStore(12), "m", quiet()).Handler(nil)
	rec := do(t, handler, http.MethodPost, "/chat", `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestHealthResponsesCarryTimestamp(t *testing.T) {
	handlers := map[string]http.Handler{
		"extraction": NewExtractionRouter(fakeExtractor{}, quiet()).Handler(nil),
		"bridge":     NewBridgeRouter(&fakeAnalyzer{}, nil, nil, quiet()).Handler(nil),
		"embedding": NewEmbeddingRouter(fakeBatchEmbedder{}, "all-minilm", quiet()).Handler(nil),
		"chatbot":   NewChatbotRouter(fakeAssistant{}, conversation.NewStore(12), "m", quiet()).Handler(nil),
	}
	for name, handler := range handlers {
		rec := do(t, handler, http.MethodGet, "/health", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s health status %d", name, rec.Code)
		}
		var out struct {
			Status    string `json:"status"`
			Timestamp string `json:"timestamp"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s health: %v", name, err)
		}
		if out.Status != "healthy" || out.Timestamp == "" {
			t.Fatalf("%s health = %+v", name, out)
		}
	}
}

func TestMiddlewareRequestIDAndRateLimit(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Wrap(inner, quiet(), nil, 1, 1)

	rec := do(t, handler, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("no request id assigned")
	}

	rec = do(t, handler, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status %d, want 429", rec.Code)
	}

	rec = do(t, handler, http.MethodGet, "/health", "",
		map[string]string{"X-Request-ID": "req-keep"})
	_ = rec // rate-limited, but the id must still echo
	if rec.Header().Get("X-Request-ID") != "req-keep" {
		t.Fatalf("request id %q not preserved", rec.Header().Get("X-Request-ID"))
	}
}
