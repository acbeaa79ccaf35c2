// Package ocr wraps the external OCR engine and PDF page renderer.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
)

// Engine settings fixed for document pages: LSTM recognizer only and fully
// automatic page segmentation without orientation detection.
const (
	EngineModeLSTMOnly = 1
	PageSegModeAuto    = 3
	RenderDPI          = 300
	DefaultLanguage    = "eng"
)

// ErrBackendUnavailable is returned when the configured backend was not compiled in.
var ErrBackendUnavailable = errors.New("ocr backend unavailable")

// Engine recognizes text in a preprocessed page bitmap.
type Engine interface {
	Recognize(ctx context.Context, img *image.Gray, lang string) (string, error)
}

// Renderer rasterizes one page (1-based) of a PDF file.
type Renderer interface {
	RenderPage(ctx context.Context, pdfPath string, page int) (image.Image, error)
}

// Config locates the external tools. It is resolved once at startup.
type Config struct {
	Backend     string // "cli" (default) or "gosseract"
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	TessdataDir string
	PopplerDir  string // directory holding pdftoppm; ignored when Pdftoppm is set
	Pdftoppm    string // binary name or absolute path; if empty -> "pdftoppm"
}

func (c Config) withDefaults() Config {
	if c.Backend == "" {
		c.Backend = "cli"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
		if c.PopplerDir != "" {
			c.Pdftoppm = filepath.Join(c.PopplerDir, "pdftoppm")
		}
	}
	return c
}

// NewEngine builds the engine selected by cfg.Backend.
func NewEngine(cfg Config, runner Runner, logger *slog.Logger) (Engine, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Backend {
	case "cli":
		return NewTesseractEngine(cfg, runner, logger), nil
	case "gosseract":
		return NewGosseractEngine(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown ocr backend %q", cfg.Backend)
	}
}

func langOrDefault(lang string) string {
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}
