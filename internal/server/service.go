package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/extract"
)

// Extractor is the part of the dispatcher the transports call.
type Extractor interface {
	ExtractAny(ctx context.Context, req extract.Request) extract.Result
}

// Service is the upload path shared by the HTTP and gRPC transports:
// validate, reserve a slot, stage the upload in a temp file, extract, clean up.
type Service struct {
	extractor      Extractor
	slots          *semaphore.Weighted
	maxUploadBytes int64
	extractTimeout time.Duration
	tempDir        string
	logger         *slog.Logger
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithTempDir stages uploads under dir instead of os.TempDir().
func WithTempDir(dir string) ServiceOption {
	return func(s *Service) { s.tempDir = dir }
}

func NewService(ex Extractor, cfg *common.Config, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	slots := int64(max(cfg.Limits.MaxConcurrentExtractions, 1))
	s := &Service{
		extractor:      ex,
		slots:          semaphore.NewWeighted(slots),
		maxUploadBytes: cfg.Limits.MaxUploadBytes,
		extractTimeout: cfg.Server.ExtractTimeout,
		logger:         logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Extract runs one upload through the dispatcher. The returned error is an
// *common.AppError wrapping ErrValidation, ErrCapacity or ErrTooLarge for
// client mistakes, or an internal I/O error. The staged file is removed on
// every path, including a panic in the extractor.
func (s *Service) Extract(ctx context.Context, filename, lang string, body io.Reader) (extract.Result, error) {
	logger := common.LoggerFromContext(ctx, s.logger)

	v := common.NewValidator().
		Field("filename", filename, common.Required, common.Filename, common.MaxLength(255)).
		Field("lang", lang, common.LanguageCode)
	if err := v.Error(); err != nil {
		return extract.Result{}, err
	}

	if !s.slots.TryAcquire(1) {
		logger.Warn("extraction rejected: at capacity")
		return extract.Result{}, common.NewAppError("CAPACITY", "server busy, retry later", common.ErrCapacity)
	}
	defer s.slots.Release(1)

	path, cleanup, err := s.stage(filename, body)
	if err != nil {
		return extract.Result{}, err
	}
	defer cleanup()

	ctx, cancel := common.WithTimeout(ctx, s.extractTimeout)
	defer cancel()

	start := time.Now()
	res := s.extractor.ExtractAny(ctx, extract.Request{FilePath: path, Language: lang})
	logger.Info("upload extracted",
		"filename", filename,
		"type", res.Meta.DetectedType,
		"warnings", len(res.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// stage copies body into a fresh temp file named with the upload's
// extension, so the dispatcher can route on it.
func (s *Service) stage(filename string, body io.Reader) (path string, cleanup func(), err error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(strings.ReplaceAll(filename, "\\", "/"))))
	f, err := os.CreateTemp(s.tempDir, "upload-*"+ext)
	if err != nil {
		return "", nil, common.WrapError(err, "create temp file")
	}
	path = f.Name()
	cleanup = func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("temp file cleanup failed", "path", path, "error", rmErr)
		}
	}

	src := body
	if s.maxUploadBytes > 0 {
		src = io.LimitReader(body, s.maxUploadBytes+1)
	}
	n, err := io.Copy(f, src)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", nil, errTooLarge(s.maxUploadBytes)
		}
		return "", nil, common.WrapError(err, "write upload")
	}
	if s.maxUploadBytes > 0 && n > s.maxUploadBytes {
		cleanup()
		return "", nil, errTooLarge(s.maxUploadBytes)
	}
	return path, cleanup, nil
}

func errTooLarge(limit int64) error {
	return common.NewAppError("TOO_LARGE", fmt.Sprintf("upload exceeds %d bytes", limit), common.ErrTooLarge)
}
