// Package fitz renders PDF pages to images through MuPDF.
package fitz

import (
	"context"
	"image"

	gofitz "github.com/gen2brain/go-fitz"

	"github.com/legalarch/docai/internal/core/domain"
)

type Rasterizer struct{}

func New() *Rasterizer { return &Rasterizer{} }

// RenderPages rasterizes up to maxPages pages at the given DPI. Pages beyond
// the cap are skipped; callers log how many were dropped.
func (r *Rasterizer) RenderPages(ctx context.Context, filePath string, dpi, maxPages int) ([]image.Image, error) {
	doc, err := gofitz.New(filePath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open pdf for rasterizing", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	if maxPages > 0 && total > maxPages {
		total = maxPages
	}

	pages := make([]image.Image, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "rasterize pdf page", err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}

// PageCount reports the total page count without rendering.
func (r *Rasterizer) PageCount(filePath string) (int, error) {
	doc, err := gofitz.New(filePath)
	if err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, "open pdf", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}
