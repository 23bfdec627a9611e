// Package document extracts text from uploaded files, choosing between
// native format readers and the OCR pipeline per format and per content.
package document

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/core/ports"
	"github.com/legalarch/docai/internal/observability/metrics"
)

// A PDF text layer below either floor is considered a scan and goes through
// OCR instead.
const (
	minDirectWords = 10
	minDirectChars = 50
)

type Service struct {
	rasterizer ports.PageRasterizer
	recognizer ports.PageRecognizer
	logger     *slog.Logger
	metrics    *metrics.ServiceMetrics

	dpi      int
	maxPages int
}

func NewService(rasterizer ports.PageRasterizer, recognizer ports.PageRecognizer, dpi, maxPages int, logger *slog.Logger, m *metrics.ServiceMetrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if dpi <= 0 {
		dpi = 150
	}
	if maxPages <= 0 {
		maxPages = 10
	}
	return &Service{
		rasterizer: rasterizer,
		recognizer: recognizer,
		logger:     logger,
		metrics:    m,
		dpi:        dpi,
		maxPages:   maxPages,
	}
}

// ExtractFile dispatches on file extension (falling back to the declared
// MIME type) and never returns an error: failures yield an unsuccessful
// result so upstream callers can report them uniformly.
func (s *Service) ExtractFile(ctx context.Context, filePath, mimeType string) domain.ExtractionResult {
	format := detectFormat(filePath, mimeType)

	var (
		text   string
		method string
		err    error
	)
	switch format {
	case "pdf":
		text, method, err = s.extractPDF(ctx, filePath)
	case "docx":
		text, err = extractDOCX(filePath)
		method = "docx"
	case "doc":
		text, err = extractDOC(filePath)
		method = "doc"
	case "xlsx":
		text, err = extractXLSX(filePath)
		method = "xlsx"
	case "txt":
		text, err = extractTXT(filePath)
		method = "text"
	case "image":
		text, err = s.extractImage(ctx, filePath)
		method = "ocr"
	default:
		// Unknown container: salvage printable byte runs, same as legacy DOC.
		s.logger.Warn("unknown document format, salvaging printable text", "path", filePath, "mime", mimeType)
		text, err = extractDOC(filePath)
		method = "binary"
	}

	if err != nil {
		s.logger.Error("extraction failed", "path", filePath, "format", format, "error", err)
		s.record(format, method, "failure")
		return domain.NewExtractionResult("", method)
	}

	result := domain.NewExtractionResult(CleanText(text), method)
	status := "success"
	if !result.Success {
		status = "empty"
	}
	s.record(format, method, status)
	return result
}

// extractPDF tries the text layer first and falls back to OCR when the
// direct text is too thin to be a real text layer. When both paths produce
// text the longer one wins, with the direct text preferred on ties.
func (s *Service) extractPDF(ctx context.Context, filePath string) (string, string, error) {
	var direct string
	pages, err := extractPDFTextLayer(filePath)
	if err != nil {
		s.logger.Warn("pdf text layer unreadable, falling back to ocr", "path", filePath, "error", err)
	} else {
		direct = domain.AssemblePages(pages)
	}

	words := len(strings.Fields(direct))
	if words >= minDirectWords && len(direct) >= minDirectChars {
		return direct, "text-layer", nil
	}

	ocr, ocrErr := s.ocrPDF(ctx, filePath)
	if ocrErr != nil {
		if direct != "" {
			s.logger.Warn("pdf ocr failed, keeping sparse text layer", "path", filePath, "error", ocrErr)
			return direct, "text-layer", nil
		}
		return "", "ocr", ocrErr
	}

	if len(ocr) > len(direct) {
		return ocr, "ocr", nil
	}
	return direct, "text-layer", nil
}

func (s *Service) ocrPDF(ctx context.Context, filePath string) (string, error) {
	images, err := s.rasterizer.RenderPages(ctx, filePath, s.dpi, s.maxPages)
	if err != nil {
		return "", err
	}
	if len(images) == s.maxPages {
		s.logger.Info("ocr page cap reached, remaining pages skipped",
			"path", filePath, "max_pages", s.maxPages)
	}

	// Engines are not safe for concurrent use; pages run strictly in order.
	pages := make(map[int]string, len(images))
	for i, img := range images {
		text, err := s.recognizer.RecognizePage(ctx, img)
		if err != nil {
			return "", err
		}
		pages[i] = text
	}
	return domain.AssemblePages(pages), nil
}

func (s *Service) extractImage(ctx context.Context, filePath string) (string, error) {
	img, err := imaging.Open(filePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "open image", err)
	}
	return s.recognizer.RecognizePage(ctx, img)
}

func (s *Service) record(format, method, status string) {
	if s.metrics != nil {
		s.metrics.RecordExtraction(format, method, status)
	}
}

func detectFormat(filePath, mimeType string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return "pdf"
	case ".docx":
		return "docx"
	case ".doc":
		return "doc"
	case ".xlsx", ".xlsm":
		return "xlsx"
	case ".txt", ".md", ".text":
		return "txt"
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".gif":
		return "image"
	}

	switch {
	case strings.Contains(mimeType, "pdf"):
		return "pdf"
	case strings.Contains(mimeType, "wordprocessingml"):
		return "docx"
	case strings.Contains(mimeType, "msword"):
		return "doc"
	case strings.Contains(mimeType, "spreadsheetml"):
		return "xlsx"
	case strings.HasPrefix(mimeType, "text/"):
		return "txt"
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	}
	return "unknown"
}
