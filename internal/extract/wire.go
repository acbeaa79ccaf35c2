package extract

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/ocr"
)

// NewFromConfig builds a Dispatcher with the OCR engine, page renderer and
// format capabilities described by cfg.
func NewFromConfig(cfg *common.Config, logger *slog.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ocrCfg := ocr.Config{
		Backend:     cfg.OCR.Backend,
		Tesseract:   cfg.OCR.Tesseract,
		TessdataDir: cfg.OCR.TessdataDir,
		PopplerDir:  cfg.OCR.PopplerDir,
		Pdftoppm:    cfg.OCR.Pdftoppm,
	}
	runner := ocr.ExecRunner{Logger: logger}

	engine, err := ocr.NewEngine(ocrCfg, runner, logger)
	if err != nil {
		return nil, fmt.Errorf("ocr engine: %w", err)
	}
	return NewDispatcher(Options{
		Engine:   engine,
		Renderer: ocr.NewPopplerRenderer(ocrCfg, runner, logger),
		Capabilities: Capabilities{
			DOCX: cfg.Capabilities.DOCXEnabled(),
			ODT:  cfg.Capabilities.ODTEnabled(),
		},
		DefaultLanguage: cfg.OCR.DefaultLang,
		Logger:          logger,
	}), nil
}
