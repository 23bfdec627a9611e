// Package ocr classifies page images and routes them to the right
// recognition engine.
package ocr

import (
	"context"
	"image"
	"log/slog"
	"strings"

	"github.com/legalarch/docai/internal/core/ports"
	"github.com/legalarch/docai/internal/observability/metrics"
)

// crossFallbackMinChars is the primary-result length under which the other
// engine gets one try.
const crossFallbackMinChars = 20

// Selector implements ports.PageRecognizer. Either engine may be nil when
// its backend is not configured; with one engine everything routes to it,
// with none RecognizePage returns empty text.
type Selector struct {
	printed     ports.OCREngine
	handwritten ports.OCREngine
	logger      *slog.Logger
	metrics     *metrics.ServiceMetrics
}

func NewSelector(printed, handwritten ports.OCREngine, logger *slog.Logger, m *metrics.ServiceMetrics) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{printed: printed, handwritten: handwritten, logger: logger, metrics: m}
}

// RecognizePage classifies the page and runs the matching engine, falling
// back to the other engine once when the primary result is shorter than 20
// characters. Engine failures degrade to empty text; only context
// cancellation propagates as an error.
func (s *Selector) RecognizePage(ctx context.Context, img image.Image) (string, error) {
	class := ClassHandwritten
	if s.handwritten == nil || (s.printed != nil && ClassifyPage(img) == ClassPrinted) {
		class = ClassPrinted
	}

	primary, secondary := s.enginesFor(class)
	if primary == nil {
		primary, secondary = secondary, nil
	}
	if primary == nil {
		s.logger.Warn("no ocr engine configured, skipping page")
		return "", nil
	}
	if s.metrics != nil {
		s.metrics.RecordOCRPage(primary.Name(), string(class))
	}

	text := s.run(ctx, primary, class, img)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if len(text) < crossFallbackMinChars && secondary != nil {
		s.logger.Info("primary ocr result too short, trying other engine",
			"primary", primary.Name(), "chars", len(text))
		if fallback := s.run(ctx, secondary, class, img); len(fallback) > len(text) {
			text = fallback
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
	return text, nil
}

func (s *Selector) enginesFor(class PageClass) (primary, secondary ports.OCREngine) {
	if class == ClassPrinted {
		return s.printed, s.handwritten
	}
	return s.handwritten, s.printed
}

func (s *Selector) run(ctx context.Context, engine ports.OCREngine, class PageClass, img image.Image) string {
	input := img
	if engine == s.printed {
		input = PreparePrinted(img)
	}

	text, err := engine.Recognize(ctx, input)
	if err != nil {
		s.logger.Error("ocr engine failed", "engine", engine.Name(), "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}
