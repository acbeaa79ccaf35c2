// Package quality produces advisory warnings about extracted text.
package quality

import (
	"strings"
	"unicode"
)

const (
	MsgEmpty      = "No text extracted."
	MsgShort      = "Very short extraction (<300 chars). May be incomplete."
	MsgLowAlpha   = "Low alphabetic ratio; OCR may be noisy."
	MsgHighSymbol = "High symbol ratio; layout/encoding noise detected."
)

const (
	minChars       = 300
	minAlphaRatio  = 0.5
	maxSymbolRatio = 0.25
)

// Stats are the character counts the warnings are derived from.
type Stats struct {
	Total   int
	Alpha   int
	Symbols int
}

// Measure counts runes of text. Whitespace is part of Total but neither
// alphabetic nor a symbol.
func Measure(text string) Stats {
	var s Stats
	for _, r := range text {
		s.Total++
		switch {
		case unicode.IsLetter(r):
			s.Alpha++
		case unicode.IsNumber(r), unicode.IsSpace(r):
		default:
			s.Symbols++
		}
	}
	return s
}

// AlphaRatio is alphabetic runes over all runes.
func (s Stats) AlphaRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Alpha) / float64(s.Total)
}

// SymbolRatio is runes that are neither alphanumeric nor whitespace over all runes.
func (s Stats) SymbolRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Symbols) / float64(s.Total)
}

// Warnings scores already-normalized text.
func Warnings(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{MsgEmpty}
	}
	s := Measure(text)
	var out []string
	if s.Total < minChars {
		out = append(out, MsgShort)
	}
	if s.AlphaRatio() < minAlphaRatio {
		out = append(out, MsgLowAlpha)
	}
	if s.SymbolRatio() > maxSymbolRatio {
		out = append(out, MsgHighSymbol)
	}
	return out
}
