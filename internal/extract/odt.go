package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/textnorm"
)

const (
	odfTextNS  = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
	odfTableNS = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"
)

// Node is a parsed XML node: either *TextNode or *ElementNode.
type Node interface {
	node()
}

// TextNode holds character data.
type TextNode struct {
	Data string
}

// ElementNode is an element with its attributes and children in document order.
type ElementNode struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []Node
}

func (*TextNode) node()    {}
func (*ElementNode) node() {}

func (e *ElementNode) is(space, local string) bool {
	return e.Name.Space == space && e.Name.Local == local
}

func (e *ElementNode) attr(space, local string) string {
	for _, a := range e.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// ParseTree decodes an XML document into a node tree.
func ParseTree(r io.Reader) (*ElementNode, error) {
	dec := xml.NewDecoder(r)
	root := &ElementNode{}
	stack := []*ElementNode{root}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			el := &ElementNode{Name: t.Name, Attr: t.Copy().Attr}
			top.Children = append(top.Children, el)
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 1 {
				return nil, errors.New("unbalanced xml")
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			top.Children = append(top.Children, &TextNode{Data: string(t)})
		}
	}
	if len(stack) != 1 {
		return nil, errors.New("unexpected end of xml")
	}
	return root, nil
}

// collectText appends the text content of n depth-first. ODF whitespace
// elements (text:s, text:tab, text:line-break) stand for the characters
// they encode.
func collectText(n Node, b *strings.Builder) {
	switch v := n.(type) {
	case *TextNode:
		b.WriteString(v.Data)
	case *ElementNode:
		switch {
		case v.is(odfTextNS, "s"):
			c, err := strconv.Atoi(v.attr(odfTextNS, "c"))
			if err != nil || c < 1 {
				c = 1
			}
			b.WriteString(strings.Repeat(" ", c))
			return
		case v.is(odfTextNS, "tab"):
			b.WriteByte('\t')
			return
		case v.is(odfTextNS, "line-break"):
			b.WriteByte('\n')
			return
		}
		for _, c := range v.Children {
			collectText(c, b)
		}
	}
}

func textOf(n Node) string {
	var b strings.Builder
	collectText(n, &b)
	return b.String()
}

func isBlock(e *ElementNode) bool {
	return e.is(odfTextNS, "p") || e.is(odfTextNS, "h")
}

// walk visits element nodes in document order. Returning false from fn
// skips the element's children.
func walk(n Node, fn func(*ElementNode) bool) {
	e, ok := n.(*ElementNode)
	if !ok {
		return
	}
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		walk(c, fn)
	}
}

// odtLines returns every non-blank paragraph and heading in document order
// (each block once, with any nested blocks folded into it), followed by one
// " | "-joined line per table row. Paragraphs inside table cells appear in
// both passes.
func odtLines(root *ElementNode) []string {
	var lines []string
	walk(root, func(e *ElementNode) bool {
		if !isBlock(e) {
			return true
		}
		if t := strings.TrimSpace(textOf(e)); t != "" {
			lines = append(lines, t)
		}
		return false
	})

	walk(root, func(e *ElementNode) bool {
		if !e.is(odfTableNS, "table-row") {
			return true
		}
		var cells []string
		for _, c := range e.Children {
			cell, ok := c.(*ElementNode)
			if !ok || !cell.is(odfTableNS, "table-cell") {
				continue
			}
			var parts []string
			walk(cell, func(b *ElementNode) bool {
				if !isBlock(b) {
					return true
				}
				if t := strings.TrimSpace(textOf(b)); t != "" {
					parts = append(parts, t)
				}
				return false
			})
			if len(parts) > 0 {
				cells = append(cells, strings.Join(parts, " "))
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " | "))
		}
		return true
	})
	return lines
}

// ODTExtractor reads OpenDocument text files.
type ODTExtractor struct {
	logger *slog.Logger
}

func NewODTExtractor(logger *slog.Logger) *ODTExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ODTExtractor{logger: logger}
}

func (x *ODTExtractor) Extract(_ context.Context, path, _ string) Output {
	root, err := readODTContent(path)
	if err != nil {
		x.logger.Warn("odt parse failed", "path", path, "error", err)
		return warn(constants.ODT, fmt.Sprintf("ODT parse error: %v", err))
	}
	return Output{
		Text: textnorm.Normalize(strings.Join(odtLines(root), "\n")),
		Meta: Meta{DetectedType: constants.ODT},
	}
}

func readODTContent(path string) (*ElementNode, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	rc, err := openZipMember(&zr.Reader, "content.xml")
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ParseTree(rc)
}
