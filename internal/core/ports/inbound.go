package ports

import (
	"context"

	"github.com/legalarch/docai/internal/core/domain"
)

// TextExtractor is the inbound contract for whole-document text extraction.
type TextExtractor interface {
	ExtractFile(ctx context.Context, filePath, mimeType string) domain.ExtractionResult
}

// DocumentAnalyzer is the inbound contract for AI document analysis. Analyze
// fetches the document text from the backend when the caller supplies none.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, auth string, docID int64, text string, folders []domain.Folder) (domain.ContentAnalysis, domain.SuggestionResult, error)
	ProcessDocument(ctx context.Context, auth string, docID int64) (*domain.ProcessOutcome, error)
	Search(ctx context.Context, auth, query string, limit int) ([]domain.SearchHit, error)
}

// ChatAssistant is the inbound contract for conversational generation.
type ChatAssistant interface {
	Respond(ctx context.Context, message, conversationID, documentContext string) (domain.ChatReply, error)
}
