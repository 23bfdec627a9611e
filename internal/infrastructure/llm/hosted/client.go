// Package hosted generates metadata through an OpenAI-compatible hosted API
// (e.g. Groq). A single failed call falls through to the next stage; there is
// no retry here.
package hosted

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/infrastructure/generation"
)

type Generator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// New returns nil when no base URL is configured, which removes the hosted
// stage from the fallback chain entirely.
func New(baseURL, apiKey, model string, timeout time.Duration) *Generator {
	if strings.TrimSpace(baseURL) == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

func (g *Generator) Name() string { return "hosted-llm" }

func (g *Generator) Generate(ctx context.Context, field domain.Field, text string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	sampling := generation.Sampling(field)
	resp, err := g.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: float32(sampling.Temperature),
		TopP:        float32(sampling.TopP),
		MaxTokens:   sampling.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: generation.BuildFieldPrompt(field, text),
			},
		},
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrTemporary, "hosted generate", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("hosted generate: empty choice list")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
