package extract

import (
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// Glyphs closer than these distances (in points) belong to the same word / line.
const (
	xTolerance = 2.0
	yTolerance = 2.0
)

// layoutText rebuilds reading-order text from positioned glyphs: glyphs are
// clustered into lines by baseline, lines run top to bottom, and a space is
// inserted where a blank glyph or a horizontal gap separates two glyphs.
// Blank glyphs themselves are never emitted.
func layoutText(glyphs []pdf.Text) string {
	if len(glyphs) == 0 {
		return ""
	}
	sorted := make([]pdf.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines [][]pdf.Text
	lastY := sorted[0].Y
	for i, g := range sorted {
		if i == 0 || lastY-g.Y > yTolerance {
			lines = append(lines, nil)
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], g)
		lastY = g.Y
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if s := joinLine(line); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

func joinLine(line []pdf.Text) string {
	sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	var (
		b       strings.Builder
		prevEnd float64
		gap     bool
	)
	for _, g := range line {
		if isBlank(g.S) {
			gap = b.Len() > 0
			continue
		}
		if b.Len() > 0 && (gap || g.X-prevEnd > xTolerance) {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		prevEnd = g.X + g.W
		gap = false
	}
	return b.String()
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
