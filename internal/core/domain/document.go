package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ExtractionResult is the outcome of extracting text from one document.
type ExtractionResult struct {
	Text           string `json:"text"`
	WordCount      int    `json:"word_count"`
	CharacterCount int    `json:"character_count"`
	Success        bool   `json:"extraction_success"`
	Timestamp      string `json:"timestamp"`
	Method         string `json:"method,omitempty"`
}

func NewExtractionResult(text, method string) ExtractionResult {
	text = strings.TrimSpace(text)
	words := 0
	if text != "" {
		words = len(strings.Fields(text))
	}
	return ExtractionResult{
		Text:           text,
		WordCount:      words,
		CharacterCount: len(text),
		Success:        text != "",
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Method:         method,
	}
}

// AssemblePages concatenates per-page text in strictly ascending page order
// with a page-boundary marker, regardless of the order pages were produced.
func AssemblePages(pages map[int]string) string {
	indexes := make([]int, 0, len(pages))
	for idx := range pages {
		if strings.TrimSpace(pages[idx]) != "" {
			indexes = append(indexes, idx)
		}
	}
	sort.Ints(indexes)

	var b strings.Builder
	for _, idx := range indexes {
		fmt.Fprintf(&b, "\n--- Page %d ---\n", idx+1)
		b.WriteString(strings.TrimSpace(pages[idx]))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// Category and Folder mirror the candidate entities supplied by the backend.
type Category struct {
	ID   int64  `json:"category_id"`
	Name string `json:"category_name"`
}

type Folder struct {
	ID         int64  `json:"folder_id"`
	Name       string `json:"folder_name"`
	CategoryID int64  `json:"category_id"`
	Path       string `json:"folder_path,omitempty"`
}

// CandidateScore is one scored category/folder candidate.
type CandidateScore struct {
	Index int
	Score int

	NameMatch        int
	KeywordMatch     int
	CategoryAffinity int
}

// SuggestionResult holds the chosen category and folder for one analysis
// request. A nil entity with confidence 0 means "no suggestion".
type SuggestionResult struct {
	Category           *Category `json:"suggested_category"`
	Folder             *Folder   `json:"suggested_folder"`
	CategoryConfidence int       `json:"category_confidence"`
	FolderConfidence   int       `json:"folder_confidence"`
}

// ContentAnalysis is the generated metadata for one document.
type ContentAnalysis struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Remarks      string `json:"remarks"`
	DocumentType string `json:"document_type"`
}

// BackendDocument is the subset of backend document state the bridge needs.
type BackendDocument struct {
	ID       int64  `json:"doc_id"`
	Title    string `json:"title"`
	FilePath string `json:"file_path"`
	Status   string `json:"status"`
}

// EmbeddingChunk is one stored text chunk with its index in reading order.
type EmbeddingChunk struct {
	ChunkIndex int       `json:"chunk_index"`
	ChunkText  string    `json:"chunk_text"`
	Vector     []float32 `json:"embedding_vector,omitempty"`
}

// EmbeddingRecord is one indexed chunk as returned by the backend's
// all-embeddings listing, used for semantic search.
type EmbeddingRecord struct {
	EmbeddingID   int64     `json:"embedding_id"`
	DocID         int64     `json:"doc_id"`
	DocumentTitle string    `json:"document_title"`
	ChunkIndex    int       `json:"chunk_index"`
	ChunkText     string    `json:"chunk_text"`
	Vector        []float32 `json:"embedding_vector"`
}

// SearchHit is one semantic search result.
type SearchHit struct {
	DocID        int64   `json:"doc_id"`
	Title        string  `json:"title"`
	Score        float64 `json:"similarity_score"`
	MatchedChunk string  `json:"matched_chunk"`
	ChunkIndex   int     `json:"chunk_index"`
	EmbeddingID  int64   `json:"embedding_id"`
}

// DocumentUpdate is the metadata written back to the backend after AI
// processing.
type DocumentUpdate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Remarks     string `json:"remarks"`
	Status      string `json:"status"`
	FilePath    string `json:"file_path,omitempty"`
	CategoryID  int64  `json:"category_id,omitempty"`
	FolderID    int64  `json:"folder_id,omitempty"`
}

// ProcessOutcome summarizes one full AI processing run for a document.
type ProcessOutcome struct {
	DocID       int64            `json:"doc_id"`
	Analysis    ContentAnalysis  `json:"analysis"`
	Suggestion  SuggestionResult `json:"suggestion"`
	NewFilePath string           `json:"new_file_path,omitempty"`
	FileMoved   bool             `json:"file_moved"`
	TextLength  int              `json:"text_length"`
}

// ReconstructText rebuilds document text from stored embedding chunks in
// ascending chunk order.
func ReconstructText(chunks []EmbeddingChunk) string {
	byIndex := make(map[int]string, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.ChunkText) != "" {
			byIndex[c.ChunkIndex] = c.ChunkText
		}
	}
	indexes := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	parts := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		parts = append(parts, strings.TrimSpace(byIndex[idx]))
	}
	return strings.Join(parts, " ")
}
