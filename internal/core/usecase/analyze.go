package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/core/ports"
)

const (
	statusProcessing = "ai_processing"
	statusProcessed  = "ai_processed"
	statusFailed     = "ai_failed"
)

// DocumentTyper classifies text into a document-type label.
type DocumentTyper interface {
	DetectDocumentType(text string) string
}

// Analyzer drives the document pipeline: metadata generation, category and
// folder suggestion, write-back to the backend and semantic search.
type Analyzer struct {
	backend   ports.BackendClient
	chain     *GenerationChain
	suggester *Suggester
	docTypes  DocumentTyper
	embedder  ports.Embedder
	relocator ports.FileRelocator
	logger    *slog.Logger

	minAnalyzableLength int
	searchScoreCutoff   float64
}

func NewAnalyzer(
	backend ports.BackendClient,
	chain *GenerationChain,
	suggester *Suggester,
	docTypes DocumentTyper,
	embedder ports.Embedder,
	relocator ports.FileRelocator,
	minAnalyzableLength int,
	searchScoreCutoff float64,
	logger *slog.Logger,
) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if minAnalyzableLength <= 0 {
		minAnalyzableLength = 50
	}
	return &Analyzer{
		backend:             backend,
		chain:               chain,
		suggester:           suggester,
		docTypes:            docTypes,
		embedder:            embedder,
		relocator:           relocator,
		logger:              logger,
		minAnalyzableLength: minAnalyzableLength,
		searchScoreCutoff:   searchScoreCutoff,
	}
}

// Analyze generates metadata for one document and scores it against the
// given folder candidates. When the caller supplies no text it is fetched
// from the backend under the caller's authorization.
func (a *Analyzer) Analyze(ctx context.Context, auth string, docID int64, text string, folders []domain.Folder) (domain.ContentAnalysis, domain.SuggestionResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		fetched, err := a.documentText(ctx, auth, docID)
		if err != nil {
			return domain.ContentAnalysis{}, domain.SuggestionResult{}, err
		}
		text = strings.TrimSpace(fetched)
	}
	return a.analyze(ctx, text, folders)
}

// analyze runs generation and suggestion over already-loaded text.
// Categories come from the backend; an unreachable category listing degrades
// to folder-only suggestion.
func (a *Analyzer) analyze(ctx context.Context, text string, folders []domain.Folder) (domain.ContentAnalysis, domain.SuggestionResult, error) {
	if len(text) < a.minAnalyzableLength {
		return domain.ContentAnalysis{}, domain.SuggestionResult{}, domain.WrapError(
			domain.ErrInvalidInput, "analyze document",
			fmt.Errorf("text length %d below analyzable minimum %d", len(text), a.minAnalyzableLength))
	}

	analysis := domain.ContentAnalysis{}
	analysis.Title, _ = a.chain.GenerateField(ctx, domain.FieldTitle, text)
	analysis.Description, _ = a.chain.GenerateField(ctx, domain.FieldDescription, text)
	analysis.Remarks, _ = a.chain.GenerateField(ctx, domain.FieldRemarks, text)
	if a.docTypes != nil {
		analysis.DocumentType = a.docTypes.DetectDocumentType(text)
	}

	categories, err := a.backend.ListCategories(ctx)
	if err != nil {
		a.logger.Warn("category listing unavailable, suggesting folders only", "error", err)
		categories = nil
	}

	suggestion := a.suggester.Suggest(text, categories, folders)
	return analysis, suggestion, nil
}

// ProcessDocument runs the full pipeline for one stored document: fetch its
// text, generate metadata, suggest placement, move the file when a folder
// was suggested, and write everything back. The document status tracks the
// run so the backend UI can show progress.
func (a *Analyzer) ProcessDocument(ctx context.Context, auth string, docID int64) (*domain.ProcessOutcome, error) {
	doc, err := a.backend.GetDocument(ctx, auth, docID)
	if err != nil {
		return nil, err
	}

	if err := a.backend.UpdateDocumentStatus(ctx, auth, docID, statusProcessing); err != nil {
		a.logger.Warn("could not mark document as processing", "doc_id", docID, "error", err)
	}

	outcome, err := a.process(ctx, auth, doc)
	if err != nil {
		if statusErr := a.backend.UpdateDocumentStatus(ctx, auth, docID, statusFailed); statusErr != nil {
			a.logger.Error("could not mark document as failed", "doc_id", docID, "error", statusErr)
		}
		return nil, err
	}
	return outcome, nil
}

func (a *Analyzer) process(ctx context.Context, auth string, doc *domain.BackendDocument) (*domain.ProcessOutcome, error) {
	text, err := a.documentText(ctx, auth, doc.ID)
	if err != nil {
		return nil, err
	}

	folders, err := a.backend.ListFolders(ctx)
	if err != nil {
		a.logger.Warn("folder listing unavailable, skipping placement", "doc_id", doc.ID, "error", err)
		folders = nil
	}

	analysis, suggestion, err := a.analyze(ctx, strings.TrimSpace(text), folders)
	if err != nil {
		return nil, err
	}

	outcome := &domain.ProcessOutcome{
		DocID:      doc.ID,
		Analysis:   analysis,
		Suggestion: suggestion,
		TextLength: len(text),
	}

	update := domain.DocumentUpdate{
		Title:       analysis.Title,
		Description: analysis.Description,
		Remarks:     analysis.Remarks,
		Status:      statusProcessed,
	}
	if suggestion.Category != nil {
		update.CategoryID = suggestion.Category.ID
	}
	if suggestion.Folder != nil {
		update.FolderID = suggestion.Folder.ID
		if a.relocator != nil && doc.FilePath != "" {
			target := suggestion.Folder.Path
			if target == "" {
				target = suggestion.Folder.Name
			}
			newPath, moveErr := a.relocator.Relocate(doc.ID, doc.FilePath, target)
			if moveErr != nil {
				a.logger.Warn("file relocation failed, keeping metadata update",
					"doc_id", doc.ID, "error", moveErr)
			} else {
				outcome.NewFilePath = newPath
				outcome.FileMoved = true
				update.FilePath = newPath
			}
		}
	}

	if err := a.backend.UpdateDocumentMetadata(ctx, auth, doc.ID, update); err != nil {
		return nil, err
	}
	return outcome, nil
}

// documentText prefers the stored extracted text and falls back to
// reconstructing it from embedding chunks.
func (a *Analyzer) documentText(ctx context.Context, auth string, docID int64) (string, error) {
	text, err := a.backend.GetDocumentText(ctx, auth, docID)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		a.logger.Info("document text unavailable, trying embedding chunks", "doc_id", docID, "error", err)
	}

	chunks, chunkErr := a.backend.GetDocumentEmbeddings(ctx, auth, docID)
	if chunkErr != nil {
		if err != nil {
			return "", err
		}
		return "", chunkErr
	}
	reconstructed := domain.ReconstructText(chunks)
	if strings.TrimSpace(reconstructed) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "load document text",
			fmt.Errorf("document %d has no extractable text", docID))
	}
	return reconstructed, nil
}

// Search embeds the query and ranks stored chunks by cosine similarity,
// keeping one best chunk per document above the score cutoff.
func (a *Analyzer) Search(ctx context.Context, auth, query string, limit int) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search documents",
			fmt.Errorf("empty query"))
	}
	if limit <= 0 {
		limit = 10
	}

	vector, err := a.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	records, err := a.backend.ListAllEmbeddings(ctx, auth)
	if err != nil {
		return nil, err
	}

	bestPerDoc := make(map[int64]domain.SearchHit)
	for _, record := range records {
		score := domain.CosineSimilarity(vector, record.Vector)
		if score < a.searchScoreCutoff {
			continue
		}
		if current, ok := bestPerDoc[record.DocID]; ok && current.Score >= score {
			continue
		}
		bestPerDoc[record.DocID] = domain.SearchHit{
			DocID:        record.DocID,
			Title:        record.DocumentTitle,
			Score:        score,
			MatchedChunk: record.ChunkText,
			ChunkIndex:   record.ChunkIndex,
			EmbeddingID:  record.EmbeddingID,
		}
	}

	hits := make([]domain.SearchHit, 0, len(bestPerDoc))
	for _, hit := range bestPerDoc {
		hits = append(hits, hit)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
