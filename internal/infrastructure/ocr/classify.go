package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

const (
	classifyMaxSide      = 500
	edgeDensityThreshold = 0.05
	varianceThreshold    = 1000.0
)

// PageClass is the script classification of a page image.
type PageClass string

const (
	ClassPrinted     PageClass = "printed"
	ClassHandwritten PageClass = "handwritten"
)

// ClassifyPage labels a page as printed or handwritten from cheap global
// statistics: handwriting produces denser, more irregular edges than typeset
// text. The image is downscaled to at most 500px on the long side first so
// the thresholds stay resolution-independent.
func ClassifyPage(img image.Image) PageClass {
	small := downscale(img)
	gray := toGray(imaging.Grayscale(small))

	if edgeDensity(gray) > edgeDensityThreshold || pixelVariance(gray) > varianceThreshold {
		return ClassHandwritten
	}
	return ClassPrinted
}

func downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= classifyMaxSide && h <= classifyMaxSide {
		return img
	}
	if w >= h {
		return imaging.Resize(img, classifyMaxSide, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, classifyMaxSide, imaging.Lanczos)
}

// edgeDensity is the fraction of pixels whose gradient magnitude exceeds a
// fixed step, using central differences.
func edgeDensity(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	const edgeStep = 40
	edges := 0
	total := 0
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			gx := int(gray.GrayAt(x+1, y).Y) - int(gray.GrayAt(x-1, y).Y)
			gy := int(gray.GrayAt(x, y+1).Y) - int(gray.GrayAt(x, y-1).Y)
			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			if gx+gy > edgeStep {
				edges++
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(edges) / float64(total)
}

func pixelVariance(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	n := bounds.Dx() * bounds.Dy()
	if n == 0 {
		return 0
	}

	var sum, sumSq float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := float64(gray.GrayAt(x, y).Y)
			sum += v
			sumSq += v * v
		}
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}
