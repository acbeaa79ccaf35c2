// Package extract turns documents into normalized plain text. Every
// expected failure (unsupported type, missing capability, malformed file,
// failed page) is reported as a warning next to whatever text could be
// recovered, never as an error.
package extract

import (
	"context"

	"github.com/joseph-ayodele/docextract/constants"
)

// Request is one extraction call.
type Request struct {
	FilePath string
	Language string // OCR language pack; empty means the dispatcher default
}

// Meta describes what was extracted. Page counts are only set for PDFs.
type Meta struct {
	DetectedType constants.DocType `json:"detected_type,omitempty"`
	PageCount    *int              `json:"page_count,omitempty"`
	UsedOCRPages *int              `json:"used_ocr_pages,omitempty"`
}

// Result is the unified output of ExtractAny.
type Result struct {
	Text     string   `json:"text"`
	Meta     Meta     `json:"meta"`
	Warnings []string `json:"warnings"`
}

// Output is what a single format extractor returns.
type Output struct {
	Text     string
	Meta     Meta
	Warnings []string
}

// Extractor handles one container format.
type Extractor interface {
	Extract(ctx context.Context, path, lang string) Output
}

// Capabilities records which optional formats this process can read.
type Capabilities struct {
	DOCX bool
	ODT  bool
}

// AllCapabilities enables every optional format.
func AllCapabilities() Capabilities {
	return Capabilities{DOCX: true, ODT: true}
}

func intPtr(n int) *int { return &n }

func warn(format constants.DocType, warnings ...string) Output {
	return Output{Meta: Meta{DetectedType: format}, Warnings: warnings}
}
