package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/ocr"
	"github.com/joseph-ayodele/docextract/internal/textnorm"
)

// PDFExtractor reads each page's text layer and falls back to rendering
// and OCR for pages whose text layer is blank.
type PDFExtractor struct {
	ocr      ocrAdapter
	renderer ocr.Renderer
	logger   *slog.Logger
}

func NewPDFExtractor(engine ocr.Engine, renderer ocr.Renderer, logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{ocr: newOCRAdapter(engine), renderer: renderer, logger: logger}
}

func (x *PDFExtractor) Extract(ctx context.Context, path, lang string) Output {
	start := time.Now()
	f, r, err := openPDF(path)
	if err != nil {
		x.logger.Warn("pdf open failed", "path", path, "error", err)
		return warn(constants.PDF, fmt.Sprintf("PDF parse error: %v", err))
	}
	defer f.Close()

	n := numPages(r)
	outcomes := make([]pageOutcome, 0, n)
	for i := 1; i <= n; i++ {
		o := x.page(ctx, path, r, i, lang)
		x.logger.Debug("pdf page extracted", "path", path, "page", i, "source", o.Source, "chars", len(o.Text))
		outcomes = append(outcomes, o)
	}

	pages, warnings, used := reducePages(outcomes)
	pages = textnorm.StripHeadersFooters(pages)
	text := textnorm.Normalize(strings.Join(pages, "\n\n"))

	x.logger.Info("pdf extracted",
		"path", path,
		"pages", n,
		"ocr_pages", used,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Output{
		Text:     text,
		Meta:     Meta{DetectedType: constants.PDF, PageCount: intPtr(n), UsedOCRPages: intPtr(used)},
		Warnings: warnings,
	}
}

func (x *PDFExtractor) page(ctx context.Context, path string, r *pdf.Reader, n int, lang string) pageOutcome {
	text, err := nativePageText(r, n)
	if err != nil {
		x.logger.Debug("pdf text layer unreadable", "page", n, "error", err)
	}
	if strings.TrimSpace(text) != "" {
		return nativePage(n, text)
	}

	if x.renderer == nil || x.ocr.engine == nil {
		return failedPage(n, errors.New("no OCR backend configured"))
	}
	img, err := x.renderer.RenderPage(ctx, path, n)
	if err != nil {
		return failedPage(n, err)
	}
	text, err = x.ocr.recognize(ctx, img, lang)
	if err != nil {
		return failedPage(n, err)
	}
	return ocrPage(n, text)
}

// openPDF opens path with the PDF reader, converting parser panics on
// malformed input into errors. The caller closes f.
func openPDF(path string) (f *os.File, r *pdf.Reader, err error) {
	f, err = os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed pdf: %v", p)
		}
		if err != nil {
			f.Close()
			f, r = nil, nil
		}
	}()
	fi, err := f.Stat()
	if err != nil {
		return f, nil, err
	}
	r, err = pdf.NewReader(f, fi.Size())
	return f, r, err
}

func numPages(r *pdf.Reader) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return max(r.NumPage(), 0)
}

func nativePageText(r *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("pdf content stream: %v", p)
		}
	}()
	p := r.Page(n)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d not found", n)
	}
	return layoutText(p.Content().Text), nil
}
