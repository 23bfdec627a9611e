package document

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/legalarch/docai/internal/core/domain"
)

// extractPDFTextLayer reads the embedded text layer per page. Pages come back
// as a map keyed by zero-based index so the caller can assemble them with
// markers; pages whose extraction fails are simply absent.
func extractPDFTextLayer(filePath string) (map[int]string, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open pdf", err)
	}
	defer f.Close()

	pages := make(map[int]string)
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages[i-1] = text
		}
	}
	return pages, nil
}
