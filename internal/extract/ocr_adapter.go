package extract

import (
	"context"
	"image"

	"github.com/joseph-ayodele/docextract/internal/ocr"
	"github.com/joseph-ayodele/docextract/internal/preprocess"
)

// ocrAdapter prepares a decoded bitmap and hands it to the OCR engine.
type ocrAdapter struct {
	engine  ocr.Engine
	prepare func(image.Image) *image.Gray
}

func newOCRAdapter(engine ocr.Engine) ocrAdapter {
	return ocrAdapter{engine: engine, prepare: preprocess.Prepare}
}

func (a ocrAdapter) recognize(ctx context.Context, img image.Image, lang string) (string, error) {
	return a.engine.Recognize(ctx, a.prepare(img), lang)
}
