package preprocess

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func textImage(t *testing.T, w, h int, s string) *image.RGBA {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	d := font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, h/2+5),
	}
	d.DrawString(s)
	return img
}

func uniformGray(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func TestGrayscaleLuma(t *testing.T) {
	tests := []struct {
		c    color.RGBA
		want uint8
	}{
		{color.RGBA{255, 255, 255, 255}, 255},
		{color.RGBA{0, 0, 0, 255}, 0},
		{color.RGBA{255, 0, 0, 255}, 76},
		{color.RGBA{0, 255, 0, 255}, 150},
		{color.RGBA{0, 0, 255, 255}, 29},
	}
	for _, tt := range tests {
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		draw.Draw(img, img.Bounds(), &image.Uniform{tt.c}, image.Point{}, draw.Src)
		g := Grayscale(img)
		if g.Pix[0] != tt.want {
			t.Errorf("luma(%v) = %d, want %d", tt.c, g.Pix[0], tt.want)
		}
	}
}

func TestGrayscaleSubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	draw.Draw(img, image.Rect(5, 5, 10, 10), image.White, image.Point{}, draw.Src)
	sub := img.SubImage(image.Rect(5, 5, 10, 10))
	g := Grayscale(sub)
	if g.Rect != image.Rect(0, 0, 5, 5) {
		t.Fatalf("bounds = %v", g.Rect)
	}
	for i, v := range g.Pix {
		if v != 255 {
			t.Fatalf("pixel %d = %d, want 255", i, v)
		}
	}
}

func TestReflect101(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{-1, 5, 1},
		{-2, 5, 2},
		{5, 5, 3},
		{6, 5, 2},
		{0, 1, 0},
		{-7, 3, 1},
		{9, 3, 1},
	}
	for _, tt := range tests {
		if got := reflect101(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestDenoiseUniformIsStable(t *testing.T) {
	src := uniformGray(17, 9, 137)
	out := Denoise(src, DenoiseStrength, DenoiseTemplateWindow, DenoiseSearchWindow)
	for i, v := range out.Pix {
		if v != 137 {
			t.Fatalf("pixel %d = %d, want 137", i, v)
		}
	}
}

func TestDenoiseReducesNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	src := uniformGray(40, 40, 128)
	for i := range src.Pix {
		src.Pix[i] = uint8(int(src.Pix[i]) + rng.Intn(41) - 20)
	}
	out := Denoise(src, DenoiseStrength, DenoiseTemplateWindow, DenoiseSearchWindow)
	if v0, v1 := variance(src.Pix), variance(out.Pix); v1 >= v0/2 {
		t.Errorf("variance %0.1f -> %0.1f, want at least halved", v0, v1)
	}
}

func variance(p []uint8) float64 {
	var sum, sq float64
	for _, v := range p {
		sum += float64(v)
		sq += float64(v) * float64(v)
	}
	n := float64(len(p))
	m := sum / n
	return sq/n - m*m
}

func TestAdaptiveThreshold(t *testing.T) {
	src := uniformGray(50, 50, 200)
	src.Pix[25*50+25] = 20
	out := AdaptiveThreshold(src, ThresholdBlockSize, ThresholdOffset)
	for i, v := range out.Pix {
		want := uint8(255)
		if i == 25*50+25 {
			want = 0
		}
		if v != want {
			t.Fatalf("pixel %d = %d, want %d", i, v, want)
		}
	}
}

func TestGaussianBlur3(t *testing.T) {
	src := uniformGray(5, 5, 0)
	src.Pix[2*5+2] = 255
	out := GaussianBlur3(src)
	// center weight 0.5*0.5, edge 0.25*0.5, corner 0.25*0.25
	checks := map[[2]int]uint8{{2, 2}: 64, {1, 2}: 32, {1, 1}: 16, {0, 0}: 0}
	for p, want := range checks {
		if got := out.GrayAt(p[0], p[1]).Y; got != want {
			t.Errorf("pixel %v = %d, want %d", p, got, want)
		}
	}
}

func TestUpscale(t *testing.T) {
	out := Upscale(uniformGray(3, 4, 90), 2)
	if out.Rect != image.Rect(0, 0, 6, 8) {
		t.Fatalf("bounds = %v", out.Rect)
	}
	for i, v := range out.Pix {
		if v != 90 {
			t.Fatalf("pixel %d = %d, want 90", i, v)
		}
	}
}

func TestPrepare(t *testing.T) {
	src := textImage(t, 120, 30, "HELLO")
	out := Prepare(src)
	if out.Rect != image.Rect(0, 0, 240, 60) {
		t.Fatalf("bounds = %v, want 240x60", out.Rect)
	}
	// 1px strokes come out mid-gray after the 3x3 blur.
	var ink, light int
	for _, v := range out.Pix {
		switch {
		case v < 160:
			ink++
		case v > 192:
			light++
		}
	}
	if ink == 0 {
		t.Error("glyph strokes lost")
	}
	if light < len(out.Pix)/2 {
		t.Errorf("background not white: %d of %d light pixels", light, len(out.Pix))
	}
	if c := out.GrayAt(0, 0).Y; c < 192 {
		t.Errorf("corner = %d, want white background", c)
	}
}

func TestPrepareEmpty(t *testing.T) {
	out := Prepare(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if !out.Rect.Empty() {
		t.Errorf("bounds = %v, want empty", out.Rect)
	}
}
