package textnorm

import "strings"

const (
	minPagesForSuppression = 3
	edgeLines              = 3
)

// StripHeadersFooters removes lines that recur among the first or last
// three non-blank lines of at least max(2, n/2) of the n pages. Inputs
// with fewer than three pages are returned unchanged. Surviving pages keep
// only their non-blank lines, trimmed.
func StripHeadersFooters(pages []string) []string {
	if len(pages) < minPagesForSuppression {
		return pages
	}

	tally := make(map[string]int)
	for _, p := range pages {
		lines := trimmedLines(p)
		seen := make(map[string]struct{}, 2*edgeLines)
		for _, l := range edges(lines) {
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			tally[l]++
		}
	}

	threshold := max(2, len(pages)/2)
	common := make(map[string]struct{})
	for l, n := range tally {
		if n >= threshold {
			common[l] = struct{}{}
		}
	}

	out := make([]string, len(pages))
	for i, p := range pages {
		var kept []string
		for _, l := range trimmedLines(p) {
			if _, drop := common[l]; !drop {
				kept = append(kept, l)
			}
		}
		out[i] = strings.Join(kept, "\n")
	}
	return out
}

func edges(lines []string) []string {
	if len(lines) <= 2*edgeLines {
		return lines
	}
	out := make([]string, 0, 2*edgeLines)
	out = append(out, lines[:edgeLines]...)
	return append(out, lines[len(lines)-edgeLines:]...)
}

func trimmedLines(p string) []string {
	var out []string
	for _, l := range splitLines(p) {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// splitLines splits on every line boundary, including lone '\r', form feeds
// and the Unicode line/paragraph separators. Empty lines are dropped.
func splitLines(s string) []string {
	return strings.FieldsFunc(s, isLineBreak)
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}
