//go:build !gosseract

package ocr

import (
	"fmt"
	"log/slog"
)

// NewGosseractEngine reports that the binary was built without libtesseract.
// Rebuild with -tags gosseract to enable the in-process backend.
func NewGosseractEngine(Config, *slog.Logger) (Engine, error) {
	return nil, fmt.Errorf("%w: built without the gosseract tag", ErrBackendUnavailable)
}
