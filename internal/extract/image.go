package extract

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	// image.Decode sniffs content, so a .png or .jpg upload that is really
	// BMP, TIFF or WebP still decodes.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/ocr"
	"github.com/joseph-ayodele/docextract/internal/textnorm"
)

const msgUnreadableImage = "Could not read image"

// ImageExtractor OCRs a single raster image.
type ImageExtractor struct {
	ocr    ocrAdapter
	logger *slog.Logger
}

func NewImageExtractor(engine ocr.Engine, logger *slog.Logger) *ImageExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageExtractor{ocr: newOCRAdapter(engine), logger: logger}
}

func (x *ImageExtractor) Extract(ctx context.Context, path, lang string) Output {
	img, err := decodeImage(path)
	if err != nil {
		x.logger.Warn("image decode failed", "path", path, "error", err)
		return warn(constants.IMAGE, msgUnreadableImage)
	}
	if x.ocr.engine == nil {
		return warn(constants.IMAGE, "OCR failed: no OCR backend configured")
	}
	text, err := x.ocr.recognize(ctx, img, lang)
	if err != nil {
		x.logger.Warn("image ocr failed", "path", path, "error", err)
		return warn(constants.IMAGE, fmt.Sprintf("OCR failed: %v", err))
	}
	return Output{
		Text: textnorm.Normalize(text),
		Meta: Meta{DetectedType: constants.IMAGE},
	}
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
