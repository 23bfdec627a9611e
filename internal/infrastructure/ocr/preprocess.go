package ocr

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// PreparePrinted runs the printed-text cleanup pipeline: grayscale, median
// denoise, local adaptive threshold and a morphological close to reconnect
// broken glyph strokes.
func PreparePrinted(img image.Image) *image.Gray {
	gray := toGray(imaging.Grayscale(img))
	denoised := medianFilter(gray, 1)
	binary := adaptiveThreshold(denoised, 15, 10)
	return morphClose(binary)
}

func toGray(src *image.NRGBA) *image.Gray {
	bounds := src.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// Channels are equal after Grayscale; take R.
			gray.SetGray(x, y, color.Gray{Y: src.NRGBAAt(x, y).R})
		}
	}
	return gray
}

// medianFilter replaces each pixel with the median of its (2r+1)x(2r+1)
// neighborhood, clipped at the image edge.
func medianFilter(src *image.Gray, radius int) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	window := make([]uint8, 0, (2*radius+1)*(2*radius+1))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			window = window[:0]
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					nx, ny := x+dx, y+dy
					if nx < bounds.Min.X || nx >= bounds.Max.X || ny < bounds.Min.Y || ny >= bounds.Max.Y {
						continue
					}
					window = append(window, src.GrayAt(nx, ny).Y)
				}
			}
			dst.SetGray(x, y, color.Gray{Y: medianOf(window)})
		}
	}
	return dst
}

func medianOf(values []uint8) uint8 {
	// Counting sort; the window never exceeds a few dozen entries.
	var counts [256]int
	for _, v := range values {
		counts[v]++
	}
	mid := len(values) / 2
	seen := 0
	for v := 0; v < 256; v++ {
		seen += counts[v]
		if seen > mid {
			return uint8(v)
		}
	}
	return 0
}

// adaptiveThreshold binarizes against a local mean computed over a
// block x block window via a summed-area table, shifted by c. Pixels darker
// than the local mean minus c become black.
func adaptiveThreshold(src *image.Gray, block, c int) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(bounds)
	if w == 0 || h == 0 {
		return dst
	}

	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	half := block / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := max(0, x-half), max(0, y-half)
			x1, y1 := min(w-1, x+half), min(h-1, y+half)
			area := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*(w+1)+x1+1] - integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] + integral[y0*(w+1)+x0]
			mean := sum / area

			out := uint8(255)
			if int64(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y) < mean-int64(c) {
				out = 0
			}
			dst.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: out})
		}
	}
	return dst
}

// morphClose dilates then erodes with a 3x3 structuring element over the
// black (ink) pixels.
func morphClose(src *image.Gray) *image.Gray {
	return erode(dilate(src))
}

// dilate grows ink (black) regions; erode shrinks them back.
func dilate(src *image.Gray) *image.Gray { return morph(src, 0, 255) }

func erode(src *image.Gray) *image.Gray { return morph(src, 255, 0) }

// morph sets a pixel to hit if any 3x3 neighbor equals hit, otherwise miss.
func morph(src *image.Gray, hit, miss uint8) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out := miss
		scan:
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < bounds.Min.X || nx >= bounds.Max.X || ny < bounds.Min.Y || ny >= bounds.Max.Y {
						continue
					}
					if src.GrayAt(nx, ny).Y == hit {
						out = hit
						break scan
					}
				}
			}
			dst.SetGray(x, y, color.Gray{Y: out})
		}
	}
	return dst
}
