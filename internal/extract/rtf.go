package extract

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/textnorm"
)

var (
	reRTFControlWord = regexp.MustCompile(`\\[a-zA-Z]+-?\d* ?`)
	reRTFBraces      = regexp.MustCompile(`[{}]`)
	reRTFHexEscape   = regexp.MustCompile(`\\'([0-9a-fA-F]{2})`)
)

// RTFExtractor is a best-effort RTF stripper, not a conformant parser:
// field instructions, font tables and embedded objects leak through as text.
type RTFExtractor struct {
	logger *slog.Logger
}

func NewRTFExtractor(logger *slog.Logger) *RTFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RTFExtractor{logger: logger}
}

func (x *RTFExtractor) Extract(_ context.Context, path, _ string) Output {
	raw, err := os.ReadFile(path)
	if err != nil {
		x.logger.Warn("rtf read failed", "path", path, "error", err)
		return warn(constants.RTF, fmt.Sprintf("RTF parse error: %v", err))
	}
	return Output{
		Text: textnorm.Normalize(stripRTF(strings.ToValidUTF8(string(raw), ""))),
		Meta: Meta{DetectedType: constants.RTF},
	}
}

// stripRTF removes control words, then braces, then decodes \'XX escapes as Latin-1.
func stripRTF(s string) string {
	s = reRTFControlWord.ReplaceAllString(s, "")
	s = reRTFBraces.ReplaceAllString(s, "")
	latin1 := charmap.ISO8859_1.NewDecoder()
	return reRTFHexEscape.ReplaceAllStringFunc(s, func(m string) string {
		b, err := hex.DecodeString(m[2:])
		if err != nil {
			return m
		}
		out, err := latin1.Bytes(b)
		if err != nil {
			return m
		}
		return string(out)
	})
}
