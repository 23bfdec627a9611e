// Package tesseract recognizes printed text through the Tesseract C library.
package tesseract

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/legalarch/docai/internal/core/domain"
)

// Engine wraps a single gosseract client. Tesseract handles are not
// thread-safe, so all calls serialize on the internal mutex.
type Engine struct {
	mu       sync.Mutex
	client   *gosseract.Client
	language string
}

func New(language string) (*Engine, error) {
	if strings.TrimSpace(language) == "" {
		language = "eng"
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, domain.WrapError(domain.ErrUnavailable, "tesseract init", err)
	}
	return &Engine{client: client, language: language}, nil
}

func (e *Engine) Name() string { return "tesseract" }

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}

func (e *Engine) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "tesseract encode page", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "tesseract set image", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", domain.WrapError(domain.ErrTemporary, "tesseract recognize", err)
	}
	return strings.TrimSpace(text), nil
}
