package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/ocr"
	"github.com/joseph-ayodele/docextract/internal/quality"
)

// Options wires the dispatcher. Engine and Renderer are shared by every call.
type Options struct {
	Engine          ocr.Engine
	Renderer        ocr.Renderer
	Capabilities    Capabilities
	DefaultLanguage string
	Logger          *slog.Logger
}

// Dispatcher routes a file to its extractor by extension and assembles the
// final result. It is safe for concurrent use.
type Dispatcher struct {
	extractors  map[constants.DocType]Extractor
	defaultLang string
	logger      *slog.Logger
}

func NewDispatcher(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lang := opts.DefaultLanguage
	if lang == "" {
		lang = ocr.DefaultLanguage
	}

	ex := map[constants.DocType]Extractor{
		constants.PDF:   NewPDFExtractor(opts.Engine, opts.Renderer, logger),
		constants.IMAGE: NewImageExtractor(opts.Engine, logger),
		constants.TXT:   NewTXTExtractor(logger),
		constants.RTF:   NewRTFExtractor(logger),
		constants.DOCX:  unavailableExtractor{constants.DOCX, "DOCX support not installed"},
		constants.ODT:   unavailableExtractor{constants.ODT, "ODT support not installed"},
	}
	if opts.Capabilities.DOCX {
		ex[constants.DOCX] = NewDOCXExtractor(logger)
	}
	if opts.Capabilities.ODT {
		ex[constants.ODT] = NewODTExtractor(logger)
	}
	logger.Debug("extractors ready", "docx", opts.Capabilities.DOCX, "odt", opts.Capabilities.ODT, "default_lang", lang)
	return &Dispatcher{extractors: ex, defaultLang: lang, logger: logger}
}

// ExtractAny extracts text from req.FilePath. It never fails: problems are
// reported in Result.Warnings. Warnings are ordered extractor warnings,
// then quality warnings, then the OCR usage summary.
func (d *Dispatcher) ExtractAny(ctx context.Context, req Request) Result {
	start := time.Now()
	ext := strings.ToLower(filepath.Ext(req.FilePath))
	typ, ok := constants.DocTypeForExt(ext)
	if !ok {
		d.logger.Info("unsupported file type", "path", req.FilePath, "ext", ext)
		return Result{Warnings: []string{fmt.Sprintf("Unsupported file type: %s", ext)}}
	}
	lang := req.Language
	if lang == "" {
		lang = d.defaultLang
	}

	out := d.extractors[typ].Extract(ctx, req.FilePath, lang)
	out.Meta.DetectedType = typ

	warnings := make([]string, 0, len(out.Warnings)+4)
	warnings = append(warnings, out.Warnings...)
	warnings = append(warnings, quality.Warnings(out.Text)...)
	if n := out.Meta.UsedOCRPages; n != nil && *n > 0 {
		warnings = append(warnings, fmt.Sprintf("Used OCR on %d page(s).", *n))
	}

	d.logger.Info("extraction finished",
		"path", req.FilePath,
		"type", typ,
		"lang", lang,
		"chars", len(out.Text),
		"warnings", len(warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Result{Text: out.Text, Meta: out.Meta, Warnings: warnings}
}
