package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/docextract/internal/common"
)

const (
	uploadField = "file"
	// room for multipart boundaries and part headers on top of the file itself
	multipartOverhead = 1 << 20
)

// HTTPHandler serves POST /upload and GET /health.
type HTTPHandler struct {
	svc            *Service
	allowedOrigins []string
	maxBodyBytes   int64
	limiters       *ipLimiters
	logger         *slog.Logger
	handler        http.Handler
}

func NewHTTPHandler(svc *Service, cfg *common.Config, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &HTTPHandler{
		svc:            svc,
		allowedOrigins: cfg.Server.AllowedOrigins,
		logger:         logger,
	}
	if cfg.Limits.MaxUploadBytes > 0 {
		h.maxBodyBytes = cfg.Limits.MaxUploadBytes + multipartOverhead
	}
	if cfg.Limits.RateLimitPerSecond > 0 {
		h.limiters = newIPLimiters(rate.Limit(cfg.Limits.RateLimitPerSecond), max(cfg.Limits.RateLimitBurst, 1))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", withMethod(http.MethodGet, h.handleHealth))
	mux.HandleFunc("/upload", h.withRateLimit(withMethod(http.MethodPost, h.handleUpload)))

	h.handler = h.withRequestID(h.withLogging(h.withRecovery(h.withCORS(mux))))
	return h
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// ---------- Handlers ----------

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := common.LoggerFromContext(r.Context(), h.logger)
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	part, err := findFilePart(r)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeErr(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		logger.Debug("upload without file part", "error", err)
		writeErr(w, http.StatusBadRequest, "No file part")
		return
	}
	defer part.Close()

	if part.FileName() == "" {
		writeErr(w, http.StatusBadRequest, "No filename")
		return
	}

	res, err := h.svc.Extract(r.Context(), part.FileName(), r.URL.Query().Get("lang"), part)
	if err != nil {
		status := httpStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("upload failed", "error", err)
		}
		writeErr(w, status, common.SanitizeError(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// findFilePart streams the multipart body up to the "file" field.
func findFilePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == uploadField {
			return part, nil
		}
		_, _ = io.Copy(io.Discard, part)
		part.Close()
	}
}

func httpStatus(err error) int {
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrTooLarge), errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrCapacity):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ---------- Middleware ----------

func withMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeErr(w, http.StatusMethodNotAllowed, "method must be "+method)
			return
		}
		next(w, r)
	}
}

func (h *HTTPHandler) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	if h.limiters == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.limiters.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeErr(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func (h *HTTPHandler) withCORS(next http.Handler) http.Handler {
	wildcard := slices.Contains(h.allowedOrigins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			switch {
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case slices.Contains(h.allowedOrigins, origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
			w.Header().Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPHandler) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				common.LoggerFromContext(r.Context(), h.logger).Error("panic recovered",
					"panic", p,
					"stack", string(debug.Stack()),
				)
				writeErr(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

const requestIDHeader = "X-Request-ID"

func (h *HTTPHandler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 || strings.ContainsAny(id, "\r\n") {
			id = common.NewRequestID()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := common.WithRequestID(r.Context(), id)
		ctx = common.WithLogger(ctx, h.logger.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *HTTPHandler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &wrapWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		common.LoggerFromContext(r.Context(), h.logger).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type wrapWriter struct {
	http.ResponseWriter
	status int
}

func (w *wrapWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// ---------- Helpers ----------

// ipLimiters hands out one token bucket per client address. Buckets idle
// for longer than limiterIdle are dropped when the map is swept.
type ipLimiters struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket
	limit   rate.Limit
	burst   int
	sweeps  int
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

const (
	limiterIdle       = 10 * time.Minute
	limiterSweepEvery = 1024
)

func newIPLimiters(limit rate.Limit, burst int) *ipLimiters {
	return &ipLimiters{buckets: make(map[string]*ipBucket), limit: limit, burst: burst}
}

func (l *ipLimiters) allow(ip string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		l.sweeps++
		if l.sweeps%limiterSweepEvery == 0 {
			for k, v := range l.buckets {
				if now.Sub(v.seen) > limiterIdle {
					delete(l.buckets, k)
				}
			}
		}
		b = &ipBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if idx := strings.Index(ip, ","); idx > 0 {
			return strings.TrimSpace(ip[:idx])
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeErr(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
