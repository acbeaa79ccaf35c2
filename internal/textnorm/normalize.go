// Package textnorm cleans up extracted text: whitespace normalization,
// dehyphenation and removal of running page headers/footers.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reHorizWS    = regexp.MustCompile(`[ \t]+`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// Normalize rejoins hyphen-broken words, unifies line endings, collapses
// spaces and tabs, limits blank-line runs to one and trims the result.
// It is idempotent.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	// Line endings first so "-\r\n" breaks are seen by the dehyphenator.
	s = reCRLF.ReplaceAllString(s, "\n")
	s = dehyphenate(s)
	s = reHorizWS.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// dehyphenate drops "-\n" when it sits between two word characters.
// Chained breaks ("a-\nb-\nc") are all joined in one pass.
func dehyphenate(s string) string {
	if !strings.Contains(s, "-\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune = -1
	for i := 0; i < len(s); {
		if s[i] == '-' && i+1 < len(s) && s[i+1] == '\n' && isWordRune(prev) {
			if next, _ := utf8.DecodeRuneInString(s[i+2:]); i+2 < len(s) && isWordRune(next) {
				i += 2
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		prev = r
		i += size
	}
	return b.String()
}

func isWordRune(r rune) bool {
	if r < 0 {
		return false
	}
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
