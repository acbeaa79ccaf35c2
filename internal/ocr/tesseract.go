package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// TesseractEngine shells out to the tesseract CLI.
type TesseractEngine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseractEngine(cfg Config, runner Runner, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &TesseractEngine{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

// Recognize writes img as PNG to a scratch directory and runs
// tesseract <png> stdout -l <lang> --oem 1 --psm 3.
func (e *TesseractEngine) Recognize(ctx context.Context, img *image.Gray, lang string) (string, error) {
	start := time.Now()
	tmpDir, err := os.MkdirTemp("", "docextract-ocr-*")
	if err != nil {
		return "", fmt.Errorf("tesseract scratch dir: %w", err)
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			e.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", rerr)
		}
	}()

	in := filepath.Join(tmpDir, "page.png")
	if err := writePNG(in, img); err != nil {
		return "", fmt.Errorf("tesseract input: %w", err)
	}

	lang = langOrDefault(lang)
	args := []string{in, "stdout",
		"-l", lang,
		"--oem", strconv.Itoa(EngineModeLSTMOnly),
		"--psm", strconv.Itoa(PageSegModeAuto),
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", commandError("tesseract", err, errb)
	}
	e.logger.Debug("ocr page recognized",
		"lang", lang,
		"chars", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return string(out), nil
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}
