package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/textnorm"
)

// TXTExtractor reads plain text as UTF-8. A byte-order mark selects
// UTF-16 when present; invalid sequences become U+FFFD.
type TXTExtractor struct {
	logger *slog.Logger
}

func NewTXTExtractor(logger *slog.Logger) *TXTExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TXTExtractor{logger: logger}
}

func (x *TXTExtractor) Extract(_ context.Context, path, _ string) Output {
	raw, err := os.ReadFile(path)
	if err != nil {
		x.logger.Warn("txt read failed", "path", path, "error", err)
		return warn(constants.TXT, fmt.Sprintf("TXT read error: %v", err))
	}
	text, err := decodeUTF8(raw)
	if err != nil {
		return warn(constants.TXT, fmt.Sprintf("TXT read error: %v", err))
	}
	return Output{
		Text: textnorm.Normalize(text),
		Meta: Meta{DetectedType: constants.TXT},
	}
}

func decodeUTF8(raw []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
