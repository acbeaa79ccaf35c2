//go:build gosseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// lstmOnlyConfig is a tesseract config file. The engine mode is an init-only
// parameter, so it has to reach libtesseract through Init's config files.
const lstmOnlyConfig = "tessedit_ocr_engine_mode 1\n"

// GosseractEngine runs tesseract in-process through libtesseract with the
// LSTM-only engine and automatic page segmentation.
type GosseractEngine struct {
	tessdataDir string
	configFile  string
	logger      *slog.Logger
}

func NewGosseractEngine(cfg Config, logger *slog.Logger) (Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	configFile, err := writeLSTMConfig(os.TempDir())
	if err != nil {
		return nil, fmt.Errorf("gosseract config: %w", err)
	}
	logger.Info("using in-process tesseract",
		"version", gosseract.Version(),
		"oem", 1,
		"config_file", configFile,
	)
	return &GosseractEngine{tessdataDir: cfg.TessdataDir, configFile: configFile, logger: logger}, nil
}

// writeLSTMConfig writes the engine-mode config into dir and returns its path.
func writeLSTMConfig(dir string) (string, error) {
	path := filepath.Join(dir, "docextract-lstm.cfg")
	if err := os.WriteFile(path, []byte(lstmOnlyConfig), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (e *GosseractEngine) Recognize(ctx context.Context, img *image.Gray, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("gosseract input: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if e.tessdataDir != "" {
		if err := client.SetTessdataPrefix(e.tessdataDir); err != nil {
			return "", fmt.Errorf("gosseract tessdata: %w", err)
		}
	}
	if err := client.SetConfigFile(e.configFile); err != nil {
		return "", fmt.Errorf("gosseract oem: %w", err)
	}
	if err := client.SetLanguage(strings.Split(langOrDefault(lang), "+")...); err != nil {
		return "", fmt.Errorf("gosseract language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("gosseract psm: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("gosseract image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract: %w", err)
	}
	e.logger.Debug("ocr page recognized",
		"backend", "gosseract",
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
