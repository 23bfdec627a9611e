// Package laravel is the REST client for the document-management backend.
// Callers' Authorization headers pass through unchanged; this service holds
// no credentials of its own.
package laravel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

func (c *Client) GetDocument(ctx context.Context, auth string, docID int64) (*domain.BackendDocument, error) {
	var doc domain.BackendDocument
	path := fmt.Sprintf("/api/documents/%d", docID)
	if err := c.getJSON(ctx, auth, path, "get document", &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) GetDocumentText(ctx context.Context, auth string, docID int64) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	path := fmt.Sprintf("/api/documents/%d/text", docID)
	if err := c.getJSON(ctx, auth, path, "get document text", &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

func (c *Client) GetDocumentEmbeddings(ctx context.Context, auth string, docID int64) ([]domain.EmbeddingChunk, error) {
	var chunks []domain.EmbeddingChunk
	path := fmt.Sprintf("/api/documents/%d/embeddings", docID)
	if err := c.getJSON(ctx, auth, path, "get document embeddings", &chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (c *Client) ListAllEmbeddings(ctx context.Context, auth string) ([]domain.EmbeddingRecord, error) {
	var records []domain.EmbeddingRecord
	if err := c.getJSON(ctx, auth, "/api/embeddings/all", "list embeddings", &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.getJSON(ctx, "", "/api/categories", "list categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) ListFolders(ctx context.Context) ([]domain.Folder, error) {
	var folders []domain.Folder
	if err := c.getJSON(ctx, "", "/api/folders", "list folders", &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func (c *Client) UpdateDocumentStatus(ctx context.Context, auth string, docID int64, status string) error {
	path := fmt.Sprintf("/api/documents/%d/status", docID)
	payload := map[string]string{"status": status}
	return c.send(ctx, http.MethodPut, auth, path, payload, "update document status", nil)
}

func (c *Client) UpdateDocumentMetadata(ctx context.Context, auth string, docID int64, update domain.DocumentUpdate) error {
	path := fmt.Sprintf("/api/documents/%d", docID)
	return c.send(ctx, http.MethodPut, auth, path, update, "update document metadata", nil)
}

func (c *Client) getJSON(ctx context.Context, auth, path, operation string, out any) error {
	return c.send(ctx, http.MethodGet, auth, path, nil, operation, out)
}

func (c *Client) send(ctx context.Context, method, auth, path string, payload any, operation string, out any) error {
	call := func(ctx context.Context) error {
		return c.doOnce(ctx, method, auth, path, payload, operation, out)
	}
	if c.executor == nil {
		return wrapBackendError(operation, call(ctx))
	}
	return wrapBackendError(operation, c.executor.Execute(ctx, operation, call, classifyBackendError))
}

func (c *Client) doOnce(ctx context.Context, method, auth, path string, payload any, operation string, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", operation, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", operation, err)
	}
	return decodeEnvelope(raw, out, operation)
}

// decodeEnvelope unwraps the backend's response envelopes before decoding.
// Payloads arrive either bare, under {"data": ...}, or paginated under
// {"data": {"data": [...], "current_page": ...}}.
func decodeEnvelope(raw []byte, out any, operation string) error {
	for i := 0; i < 2; i++ {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Data) == 0 {
			break
		}
		raw = envelope.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
