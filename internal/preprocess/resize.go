package preprocess

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Upscale enlarges src by an integer factor with bilinear interpolation.
func Upscale(src *image.Gray, factor int) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	if b.Empty() {
		return dst
	}
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
