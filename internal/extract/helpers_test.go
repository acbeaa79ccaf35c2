package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writePDF writes a minimal uncompressed PDF to dir/name. Each entry of
// pages is one page; its lines are drawn top to bottom in Courier. A page
// with no lines gets no content stream, like a scanned page without a text
// layer.
func writePDF(t *testing.T, dir, name string, pages [][]string) string {
	t.Helper()

	var (
		buf     bytes.Buffer
		offsets []int
	)
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// Object numbers: 1 catalog, 2 page tree, 3 font, then for page i
	// (0-based) 4+2i is the page and 5+2i its content stream.
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	widths := strings.TrimSpace(strings.Repeat("600 ", 126-32+1))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding " +
		"/FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>")

	for i, lines := range pages {
		page := "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >>"
		if len(lines) > 0 {
			page += fmt.Sprintf(" /Contents %d 0 R", 5+2*i)
		}
		obj(page + " >>")

		var cs strings.Builder
		cs.WriteString("BT /F1 12 Tf 72 720 Td")
		for j, line := range lines {
			if j > 0 {
				cs.WriteString(" 0 -14 Td")
			}
			fmt.Fprintf(&cs, " (%s) Tj", pdfEscape(line))
		}
		cs.WriteString(" ET")
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", cs.Len(), cs.String()))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}

func pdfEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// writeZip writes a zip archive with the given members to dir/name.
func writeZip(t *testing.T, dir, name string, members map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for n, body := range members {
		w, err := zw.Create(n)
		if err != nil {
			t.Fatalf("zip create %s: %v", n, err)
		}
		if _, err := io.WriteString(w, body); err != nil {
			t.Fatalf("zip write %s: %v", n, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write zip: %v", err)
	}
	return path
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// stubEngine returns canned text and records the languages it was asked for.
type stubEngine struct {
	mu    sync.Mutex
	text  string
	err   error
	langs []string
}

func (s *stubEngine) Recognize(_ context.Context, img *image.Gray, lang string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.langs = append(s.langs, lang)
	if img == nil {
		return "", fmt.Errorf("nil image")
	}
	return s.text, s.err
}

func (s *stubEngine) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.langs...)
}

// stubRenderer returns a small white page, or err for the listed pages.
type stubRenderer struct {
	failPages map[int]error
	rendered  []int
}

func (s *stubRenderer) RenderPage(_ context.Context, _ string, page int) (image.Image, error) {
	s.rendered = append(s.rendered, page)
	if err, ok := s.failPages[page]; ok {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, 24, 16))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img, nil
}
