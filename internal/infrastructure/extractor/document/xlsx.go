package document

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/legalarch/docai/internal/core/domain"
)

// extractXLSX flattens every sheet row-major, cells joined by tabs, with a
// sheet-name heading between sheets.
func extractXLSX(filePath string) (string, error) {
	book, err := excelize.OpenFile(filePath)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "open xlsx", err)
	}
	defer book.Close()

	var b strings.Builder
	for i, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return "", domain.WrapError(domain.ErrInvalidInput, "read xlsx sheet", err)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("[" + sheet + "]\n")
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line != "" {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}
