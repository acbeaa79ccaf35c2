// Package preprocess turns scanned page and photo bitmaps into high-contrast
// grayscale images suited to OCR.
package preprocess

import (
	"image"
	"image/color"
)

// Pipeline constants, tuned for document scans.
const (
	DenoiseStrength       = 30
	DenoiseTemplateWindow = 7
	DenoiseSearchWindow   = 21
	ThresholdBlockSize    = 31
	ThresholdOffset       = 2
	UpscaleFactor         = 2
)

// Prepare runs grayscale, denoise, adaptive threshold, 3x3 blur and 2x
// upscale in that order. The result is always twice the input size.
func Prepare(src image.Image) *image.Gray {
	gray := Grayscale(src)
	if gray.Rect.Empty() {
		return image.NewGray(image.Rect(0, 0, 2*gray.Rect.Dx(), 2*gray.Rect.Dy()))
	}
	den := Denoise(gray, DenoiseStrength, DenoiseTemplateWindow, DenoiseSearchWindow)
	bin := AdaptiveThreshold(den, ThresholdBlockSize, ThresholdOffset)
	smooth := GaussianBlur3(bin)
	return Upscale(smooth, UpscaleFactor)
}

// Grayscale converts src to an 8-bit single channel image anchored at (0,0),
// using the BT.601 luma weights in the same fixed-point form as OpenCV.
func Grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch s := src.(type) {
	case *image.Gray:
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], s.Pix[s.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	case *image.RGBA:
		for y := 0; y < b.Dy(); y++ {
			row := s.Pix[s.PixOffset(b.Min.X, b.Min.Y+y):]
			out := dst.Pix[y*dst.Stride:]
			for x := 0; x < b.Dx(); x++ {
				out[x] = luma(row[4*x], row[4*x+1], row[4*x+2])
			}
		}
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			row := s.Pix[s.PixOffset(b.Min.X, b.Min.Y+y):]
			out := dst.Pix[y*dst.Stride:]
			for x := 0; x < b.Dx(); x++ {
				out[x] = luma(row[4*x], row[4*x+1], row[4*x+2])
			}
		}
	default:
		// Paletted, YCbCr, CMYK and 16-bit images go through the generic
		// colour model; alpha is ignored the way a 3-channel decode would.
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				dst.Pix[y*dst.Stride+x] = luma(c.R, c.G, c.B)
			}
		}
	}
	return dst
}

func luma(r, g, b uint8) uint8 {
	const (
		wr    = 4899 // 0.299 << 14
		wg    = 9617 // 0.587 << 14
		wb    = 1868 // 0.114 << 14
		shift = 14
	)
	return uint8((uint32(r)*wr + uint32(g)*wg + uint32(b)*wb + 1<<(shift-1)) >> shift)
}
