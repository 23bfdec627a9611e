package document

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/legalarch/docai/internal/core/domain"
)

// docx types model the slice of WordprocessingML we read: paragraphs with
// text runs, and tables flattened row by row.
type docxBody struct {
	Items []docxBlock `xml:",any"`
}

type docxBlock struct {
	XMLName xml.Name
	Runs    []docxRun `xml:"r"`
	Rows    []docxRow `xml:"tr"`
}

type docxPara struct {
	Runs []docxRun `xml:"r"`
}

type docxRow struct {
	Cells []docxCell `xml:"tc"`
}

type docxCell struct {
	Paragraphs []docxPara `xml:"p"`
}

type docxRun struct {
	Text []string `xml:"t"`
}

type docxDocument struct {
	Body docxBody `xml:"body"`
}

func extractDOCX(filePath string) (string, error) {
	archive, err := zip.OpenReader(filePath)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "open docx", err)
	}
	defer archive.Close()

	var raw []byte
	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", domain.WrapError(domain.ErrInvalidInput, "open docx body", err)
		}
		raw, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", domain.WrapError(domain.ErrInvalidInput, "read docx body", err)
		}
		break
	}
	if raw == nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "read docx",
			fmt.Errorf("word/document.xml missing"))
	}

	var doc docxDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "parse docx body", err)
	}

	var lines []string
	for _, block := range doc.Body.Items {
		switch block.XMLName.Local {
		case "p":
			if text := runsText(block.Runs); text != "" {
				lines = append(lines, text)
			}
		case "tbl":
			for _, row := range block.Rows {
				cells := make([]string, 0, len(row.Cells))
				for _, cell := range row.Cells {
					var parts []string
					for _, para := range cell.Paragraphs {
						if text := runsText(para.Runs); text != "" {
							parts = append(parts, text)
						}
					}
					cells = append(cells, strings.Join(parts, " "))
				}
				line := strings.TrimSpace(strings.Join(cells, " "))
				if line != "" {
					lines = append(lines, line)
				}
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

func runsText(runs []docxRun) string {
	var b strings.Builder
	for _, run := range runs {
		for _, t := range run.Text {
			b.WriteString(t)
		}
	}
	return strings.TrimSpace(b.String())
}
