package extract

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/joseph-ayodele/docextract/constants"
)

func TestPDFExtractorNativeText(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "two.pdf", [][]string{
		{"Introduction text", "Page X of 2"},
		{"Second page body", "Page X of 2"},
	})
	eng := &stubEngine{text: "unused"}
	x := NewPDFExtractor(eng, &stubRenderer{}, discardLogger())

	out := x.Extract(context.Background(), path, "eng")

	want := "Introduction text\nPage X of 2\n\nSecond page body\nPage X of 2"
	if out.Text != want {
		t.Errorf("text = %q, want %q", out.Text, want)
	}
	if out.Meta.PageCount == nil || *out.Meta.PageCount != 2 {
		t.Errorf("page count = %v, want 2", out.Meta.PageCount)
	}
	if out.Meta.UsedOCRPages == nil || *out.Meta.UsedOCRPages != 0 {
		t.Errorf("used ocr pages = %v, want 0", out.Meta.UsedOCRPages)
	}
	if len(out.Warnings) != 0 {
		t.Errorf("warnings = %q", out.Warnings)
	}
	if len(eng.calls()) != 0 {
		t.Error("OCR ran on pages with a text layer")
	}
}

func TestPDFExtractorSuppressesRepeatedFooter(t *testing.T) {
	dir := t.TempDir()
	var pages [][]string
	for _, body := range []string{"alpha", "bravo", "charlie", "delta"} {
		pages = append(pages, []string{"Confidential", "Section " + body})
	}
	path := writePDF(t, dir, "four.pdf", pages)

	out := NewPDFExtractor(nil, nil, discardLogger()).Extract(context.Background(), path, "eng")

	if strings.Contains(out.Text, "Confidential") {
		t.Errorf("repeated header survived: %q", out.Text)
	}
	for _, body := range []string{"alpha", "bravo", "charlie", "delta"} {
		if !strings.Contains(out.Text, "Section "+body) {
			t.Errorf("body %q missing from %q", body, out.Text)
		}
	}
}

func TestPDFExtractorOCRFallback(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "scan.pdf", [][]string{nil})
	eng := &stubEngine{text: "Scanned words"}
	rd := &stubRenderer{}

	out := NewPDFExtractor(eng, rd, discardLogger()).Extract(context.Background(), path, "deu")

	if out.Text != "Scanned words" {
		t.Errorf("text = %q", out.Text)
	}
	if out.Meta.UsedOCRPages == nil || *out.Meta.UsedOCRPages != 1 {
		t.Errorf("used ocr pages = %v, want 1", out.Meta.UsedOCRPages)
	}
	if !slices.Equal(rd.rendered, []int{1}) {
		t.Errorf("rendered pages = %v", rd.rendered)
	}
	if got := eng.calls(); !slices.Equal(got, []string{"deu"}) {
		t.Errorf("ocr languages = %q", got)
	}
}

func TestPDFExtractorPageFailureKeepsAlignment(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "mixed.pdf", [][]string{
		{"first page"},
		nil,
		{"third page"},
	})
	rd := &stubRenderer{failPages: map[int]error{2: errors.New("render crashed")}}

	out := NewPDFExtractor(&stubEngine{}, rd, discardLogger()).Extract(context.Background(), path, "eng")

	if out.Text != "first page\n\nthird page" {
		t.Errorf("text = %q", out.Text)
	}
	if !slices.Equal(out.Warnings, []string{"OCR failed on page 2: render crashed"}) {
		t.Errorf("warnings = %q", out.Warnings)
	}
	if *out.Meta.PageCount != 3 || *out.Meta.UsedOCRPages != 0 {
		t.Errorf("meta = %d pages, %d ocr", *out.Meta.PageCount, *out.Meta.UsedOCRPages)
	}
}

func TestPDFExtractorNoOCRBackend(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "scan.pdf", [][]string{nil})

	out := NewPDFExtractor(nil, nil, discardLogger()).Extract(context.Background(), path, "eng")

	if out.Text != "" {
		t.Errorf("text = %q", out.Text)
	}
	if len(out.Warnings) != 1 || !strings.HasPrefix(out.Warnings[0], "OCR failed on page 1:") {
		t.Errorf("warnings = %q", out.Warnings)
	}
}

func TestPDFExtractorMalformed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.pdf", []byte("this is not a pdf at all"))

	out := NewPDFExtractor(nil, nil, discardLogger()).Extract(context.Background(), path, "eng")

	if out.Text != "" {
		t.Errorf("text = %q", out.Text)
	}
	if out.Meta.DetectedType != constants.PDF || out.Meta.PageCount != nil {
		t.Errorf("meta = %+v", out.Meta)
	}
	if len(out.Warnings) != 1 || !strings.HasPrefix(out.Warnings[0], "PDF parse error:") {
		t.Errorf("warnings = %q", out.Warnings)
	}
}

func TestReducePages(t *testing.T) {
	pages, warnings, n := reducePages([]pageOutcome{
		nativePage(1, "one"),
		ocrPage(2, "two"),
		failedPage(3, errors.New("boom")),
		ocrPage(4, "four"),
	})
	if !slices.Equal(pages, []string{"one", "two", "\n", "four"}) {
		t.Errorf("pages = %q", pages)
	}
	if !slices.Equal(warnings, []string{"OCR failed on page 3: boom"}) {
		t.Errorf("warnings = %q", warnings)
	}
	if n != 2 {
		t.Errorf("ocr pages = %d, want 2", n)
	}
}
