// Package ollama talks to a local Ollama server for generation and
// embeddings.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/infrastructure/generation"
	"github.com/legalarch/docai/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor

	// The local generation backend is not safe for concurrent invocation;
	// genMu serializes all generation calls.
	genMu sync.Mutex
}

func New(baseURL, genModel, embedModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 180 * time.Second},
		executor:   executor,
	}
}

// GenerateOptions control sampling for one generation call.
type GenerateOptions struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	Stop        []string
}

// GenerateText runs one completion, holding the generation mutex for the
// duration of the call.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	c.genMu.Lock()
	defer c.genMu.Unlock()

	options := map[string]any{}
	if opts.Temperature > 0 {
		options["temperature"] = opts.Temperature
	}
	if opts.TopP > 0 {
		options["top_p"] = opts.TopP
	}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}
	if len(opts.Stop) > 0 {
		options["stop"] = opts.Stop
	}

	reqBody := map[string]any{
		"model":   c.genModel,
		"prompt":  prompt,
		"stream":  false,
		"raw":     true,
		"options": options,
	}

	var response struct {
		Response string `json:"response"`
	}
	err := c.execute(ctx, "ollama_generate", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, "generate")
	})
	if err != nil {
		return "", wrapTemporaryIfNeeded("ollama generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}

// Ping reports whether the server is reachable and the configured model list
// responds; used by health handlers.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama ping: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("ollama ping status: %s", resp.Status)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return fn(ctx)
	}
	return c.executor.Execute(ctx, operation, fn, classifyOllamaError)
}

// Embedder builds vectors through the Ollama embeddings API.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	err := e.client.execute(ctx, "ollama_embed", func(callCtx context.Context) error {
		return e.client.postJSON(callCtx, "/api/embed", request, &response, "embed")
	})
	if err != nil {
		return nil, wrapTemporaryIfNeeded("ollama embed", err)
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

// Generator adapts the client to the metadata-field contract.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Name() string { return "local-llm" }

func (g *Generator) Generate(ctx context.Context, field domain.Field, text string) (string, error) {
	sampling := generation.Sampling(field)
	return g.client.GenerateText(ctx, generation.BuildFieldPrompt(field, text), GenerateOptions{
		Temperature: sampling.Temperature,
		TopP:        sampling.TopP,
		MaxTokens:   sampling.MaxTokens,
		Stop:        sampling.Stop,
	})
}

// GenerateChat runs one completion over an already formatted chat prompt.
func (g *Generator) GenerateChat(ctx context.Context, prompt string) (string, error) {
	return g.client.GenerateText(ctx, prompt, GenerateOptions{
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   500,
		Stop:        []string{"<|eot_id|>", "<|end_of_text|>"},
	})
}
