package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation failed")
	ErrCapacity     = errors.New("server at capacity")
	ErrTooLarge     = errors.New("upload too large")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func ResourceExhaustedError(message string) error {
	return status.Error(codes.ResourceExhausted, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

// ToStatus maps an application error onto a gRPC status.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return InvalidArgumentError(SanitizeError(err))
	case errors.Is(err, ErrCapacity):
		return ResourceExhaustedError(SanitizeError(err))
	case errors.Is(err, ErrTooLarge):
		return status.Error(codes.OutOfRange, SanitizeError(err))
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, SanitizeError(err))
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, SanitizeError(err))
	default:
		return InternalError(SanitizeError(err))
	}
}

// clientSafePatterns maps internal error fragments to messages safe to return.
var clientSafePatterns = []struct{ pattern, safe string }{
	{"context deadline exceeded", "extraction timed out"},
	{"context canceled", "request cancelled"},
	{"no space left", "server storage exhausted"},
	{"too many open files", "server temporarily unavailable"},
}

// SanitizeError returns a client-facing message for err. AppError messages
// are already client-safe; anything else is matched against known patterns
// and otherwise replaced with a generic message. The full error is logged.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	lower := strings.ToLower(err.Error())
	for _, p := range clientSafePatterns {
		if strings.Contains(lower, p.pattern) {
			slog.Debug("sanitizing error for client", "original", err.Error(), "sanitized", p.safe)
			return p.safe
		}
	}
	slog.Error("internal error (sanitized for client)", "error", err)
	return "internal error"
}
