package preprocess

import (
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// plane is a grayscale image padded on every side with a reflect-101 border.
type plane struct {
	pix    []uint8
	stride int
	pad    int
}

func padReflect101(src *image.Gray, pad int) plane {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	p := plane{stride: w + 2*pad, pad: pad}
	p.pix = make([]uint8, p.stride*(h+2*pad))
	for y := 0; y < h+2*pad; y++ {
		sy := reflect101(y-pad, h)
		off := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+sy)
		srow := src.Pix[off : off+w]
		drow := p.pix[y*p.stride : (y+1)*p.stride]
		for x := range drow {
			drow[x] = srow[reflect101(x-pad, w)]
		}
	}
	return p
}

// reflect101 maps i into [0, n) mirroring around the edge pixels (gfedcb|abcdefgh|gfedcba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// Denoise applies non-local means filtering to a grayscale image. h is the
// filter strength; templateWindow and searchWindow must be odd. Each output
// pixel is the average of the pixels in its search window, weighted by
// exp(-d/h^2) where d is the mean squared difference between the two
// template patches.
func Denoise(src *image.Gray, h float64, templateWindow, searchWindow int) *image.Gray {
	w, ht := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, ht))
	if w == 0 || ht == 0 {
		return dst
	}
	tr, sr := templateWindow/2, searchWindow/2
	p := padReflect101(src, tr+sr)
	lut := weightTable(h)

	bands := min(runtime.GOMAXPROCS(0), ht)
	rows := (ht + bands - 1) / bands
	var g errgroup.Group
	for y0 := 0; y0 < ht; y0 += rows {
		y0 := y0
		y1 := min(y0+rows, ht)
		g.Go(func() error {
			denoiseBand(p, dst, w, y0, y1, tr, sr, lut)
			return nil
		})
	}
	_ = g.Wait()
	return dst
}

// weightTable indexes by the integer mean squared patch distance (0..255^2).
func weightTable(h float64) []float32 {
	lut := make([]float32, 255*255+1)
	h2 := h * h
	for d := range lut {
		lut[d] = float32(math.Exp(-float64(d) / h2))
	}
	return lut
}

// denoiseBand filters output rows [y0, y1). For every search offset it
// builds the squared difference image and slides a template-sized box over
// it, so each patch distance costs O(1) instead of O(template^2).
func denoiseBand(p plane, dst *image.Gray, w, y0, y1, tr, sr int, lut []float32) {
	n := (y1 - y0) * w
	wsum := make([]float32, n)
	vsum := make([]float32, n)

	tw := 2*tr + 1
	area := int32(tw * tw)
	rows := (y1 - y0) + 2*tr
	hsum := make([]int32, rows*w) // per padded row, horizontal template sums
	sq := make([]int32, w+2*tr)
	col := make([]int32, w)

	for dy := -sr; dy <= sr; dy++ {
		for dx := -sr; dx <= sr; dx++ {
			for r := 0; r < rows; r++ {
				py := y0 - tr + r + p.pad
				a := p.pix[py*p.stride:]
				b := p.pix[(py+dy)*p.stride:]
				for k := range sq {
					px := p.pad - tr + k
					d := int32(a[px]) - int32(b[px+dx])
					sq[k] = d * d
				}
				out := hsum[r*w : (r+1)*w]
				var s int32
				for k := 0; k < tw; k++ {
					s += sq[k]
				}
				out[0] = s
				for x := 1; x < w; x++ {
					s += sq[x+tw-1] - sq[x-1]
					out[x] = s
				}
			}

			copy(col, hsum[:w])
			for r := 1; r < tw; r++ {
				row := hsum[r*w : (r+1)*w]
				for x := range col {
					col[x] += row[x]
				}
			}
			for y := y0; y < y1; y++ {
				r := y - y0
				if r > 0 {
					add := hsum[(r+tw-1)*w : (r+tw)*w]
					sub := hsum[(r-1)*w : r*w]
					for x := range col {
						col[x] += add[x] - sub[x]
					}
				}
				nb := p.pix[(y+p.pad+dy)*p.stride+p.pad+dx:]
				base := r * w
				for x := 0; x < w; x++ {
					wt := lut[col[x]/area]
					wsum[base+x] += wt
					vsum[base+x] += wt * float32(nb[x])
				}
			}
		}
	}

	for y := y0; y < y1; y++ {
		base := (y - y0) * w
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range out {
			out[x] = clampUint8(vsum[base+x]/wsum[base+x] + 0.5)
		}
	}
}

func clampUint8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
