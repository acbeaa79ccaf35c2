package preprocess

import (
	"image"
	"math"
)

type borderFunc func(i, n int) int

func replicate(i, n int) int {
	return min(max(i, 0), n-1)
}

// gaussianKernel returns a normalized 1-D kernel of odd size n. A
// non-positive sigma is derived from n as 0.3*((n-1)*0.5-1)+0.8.
func gaussianKernel(n int, sigma float64) []float32 {
	if sigma <= 0 {
		sigma = 0.3*(float64(n-1)*0.5-1) + 0.8
	}
	k := make([]float64, n)
	c := float64(n-1) / 2
	var sum float64
	for i := range k {
		d := float64(i) - c
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	out := make([]float32, n)
	for i := range k {
		out[i] = float32(k[i] / sum)
	}
	return out
}

// separable convolves src with kernel horizontally then vertically and
// rounds the result back to 8 bits.
func separable(src *image.Gray, kernel []float32, border borderFunc) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}
	r := len(kernel) / 2

	tmp := make([]float32, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y):]
		out := tmp[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			var s float32
			for k, kv := range kernel {
				s += kv * float32(row[border(x+k-r, w)])
			}
			out[x] = s
		}
	}

	acc := make([]float32, w)
	for y := 0; y < h; y++ {
		clear(acc)
		for k, kv := range kernel {
			row := tmp[border(y+k-r, h)*w:]
			for x := range acc {
				acc[x] += kv * row[x]
			}
		}
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range out {
			out[x] = clampUint8(acc[x] + 0.5)
		}
	}
	return dst
}

// AdaptiveThreshold binarizes src against a Gaussian-weighted local mean
// over a blockSize x blockSize neighbourhood (replicated border): a pixel
// becomes white when it is brighter than mean-c, black otherwise.
func AdaptiveThreshold(src *image.Gray, blockSize, c int) *image.Gray {
	mean := separable(src, gaussianKernel(blockSize, 0), replicate)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		in := src.Pix[src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y):]
		out := mean.Pix[y*mean.Stride : y*mean.Stride+w]
		for x := range out {
			if int(in[x]) > int(out[x])-c {
				out[x] = 255
			} else {
				out[x] = 0
			}
		}
	}
	return mean
}

// GaussianBlur3 applies a 3x3 Gaussian ([1 2 1]/4 per axis) with a reflect-101 border.
func GaussianBlur3(src *image.Gray) *image.Gray {
	return separable(src, []float32{0.25, 0.5, 0.25}, reflect101)
}
