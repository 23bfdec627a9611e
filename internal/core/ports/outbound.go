package ports

import (
	"context"
	"image"

	"github.com/legalarch/docai/internal/core/domain"
)

// OCREngine recognizes text on one page image. Engines are not safe for
// concurrent invocation; callers must process pages sequentially.
type OCREngine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// PageRecognizer routes one page image to the appropriate OCR engine and
// returns the recognized text.
type PageRecognizer interface {
	RecognizePage(ctx context.Context, img image.Image) (string, error)
}

// PageRasterizer renders document pages as images, up to maxPages, at the
// given DPI.
type PageRasterizer interface {
	RenderPages(ctx context.Context, filePath string, dpi, maxPages int) ([]image.Image, error)
}

// FieldGenerator produces one metadata field from document text. An error or
// empty output makes the caller fall through to the next generator.
type FieldGenerator interface {
	Name() string
	Generate(ctx context.Context, field domain.Field, text string) (string, error)
}

// ChatGenerator runs one free-form completion over an already formatted
// prompt.
type ChatGenerator interface {
	GenerateChat(ctx context.Context, prompt string) (string, error)
}

// Embedder builds vectors for text chunks and single queries.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// BackendClient talks to the document-management backend's REST API.
type BackendClient interface {
	GetDocument(ctx context.Context, auth string, docID int64) (*domain.BackendDocument, error)
	GetDocumentText(ctx context.Context, auth string, docID int64) (string, error)
	GetDocumentEmbeddings(ctx context.Context, auth string, docID int64) ([]domain.EmbeddingChunk, error)
	ListAllEmbeddings(ctx context.Context, auth string) ([]domain.EmbeddingRecord, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListFolders(ctx context.Context) ([]domain.Folder, error)
	UpdateDocumentStatus(ctx context.Context, auth string, docID int64, status string) error
	UpdateDocumentMetadata(ctx context.Context, auth string, docID int64, update domain.DocumentUpdate) error
}

// ConversationStore keeps per-conversation message history, capped at a
// fixed number of retained messages.
type ConversationStore interface {
	Append(conversationID, role, content string)
	History(conversationID string) []domain.ChatMessage
	Clear(conversationID string) bool
	List() []domain.ConversationSummary
	Count() int
}

// FileRelocator moves a stored document file into a target folder and
// returns the new path relative to the storage root.
type FileRelocator interface {
	Relocate(docID int64, hint, targetFolder string) (string, error)
}
