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
)

// PopplerRenderer renders single PDF pages with pdftoppm.
type PopplerRenderer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewPopplerRenderer(cfg Config, runner Runner, logger *slog.Logger) *PopplerRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &PopplerRenderer{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

// RenderPage runs pdftoppm -r 300 -f N -l N -png -singlefile and decodes the output.
func (r *PopplerRenderer) RenderPage(ctx context.Context, pdfPath string, page int) (image.Image, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page number %d", page)
	}
	tmpDir, err := os.MkdirTemp("", "docextract-pp-*")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm scratch dir: %w", err)
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			r.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", rerr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	n := strconv.Itoa(page)
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm,
		"-r", strconv.Itoa(RenderDPI),
		"-f", n, "-l", n,
		"-png", "-singlefile",
		pdfPath, prefix,
	)
	if err != nil {
		return nil, commandError("pdftoppm", err, errb)
	}

	f, err := os.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm produced no image for page %d: %w", page, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode rendered page %d: %w", page, err)
	}
	return img, nil
}
