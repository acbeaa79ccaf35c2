package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/textnorm"
)

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// DOCXExtractor returns the body paragraphs of a Word document, one per line.
// Paragraphs inside tables, text boxes, headers and footers are not included.
type DOCXExtractor struct {
	logger *slog.Logger
}

func NewDOCXExtractor(logger *slog.Logger) *DOCXExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DOCXExtractor{logger: logger}
}

func (x *DOCXExtractor) Extract(_ context.Context, path, _ string) Output {
	paras, err := readDOCXParagraphs(path)
	if err != nil {
		x.logger.Warn("docx parse failed", "path", path, "error", err)
		return warn(constants.DOCX, fmt.Sprintf("DOCX parse error: %v", err))
	}
	return Output{
		Text: textnorm.Normalize(strings.Join(paras, "\n")),
		Meta: Meta{DetectedType: constants.DOCX},
	}
}

func readDOCXParagraphs(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	rc, err := openZipMember(&zr.Reader, "word/document.xml")
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return docxBodyParagraphs(rc)
}

func openZipMember(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

// docxBodyParagraphs streams document.xml and collects the text of every
// w:p that is a direct child of w:body. Within a paragraph only run content
// counts: w:t text, w:tab as a tab, w:br and w:cr as newlines.
func docxBodyParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		stack  []string
		paras  []string
		cur    strings.Builder
		inBody bool // inside a body-level w:p
		nested int  // w:p depth below the body-level paragraph
		inText bool
	)
	parent := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			local := ""
			if t.Name.Space == wordNS {
				local = t.Name.Local
			}
			switch {
			case local == "p" && parent() == "body":
				inBody = true
				cur.Reset()
			case local == "p" && inBody:
				nested++
			case inBody && nested == 0 && parent() == "r":
				switch local {
				case "t":
					inText = true
				case "tab":
					cur.WriteByte('\t')
				case "br", "cr":
					cur.WriteByte('\n')
				}
			}
			stack = append(stack, local)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New("unbalanced document.xml")
			}
			local := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			switch {
			case local == "t":
				inText = false
			case local == "p" && inBody && nested > 0:
				nested--
			case local == "p" && inBody && parent() == "body":
				paras = append(paras, cur.String())
				inBody = false
			}
		case xml.CharData:
			if inText && nested == 0 {
				cur.Write(t)
			}
		}
	}
	return paras, nil
}
