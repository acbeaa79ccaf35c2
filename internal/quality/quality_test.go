package quality

import (
	"reflect"
	"strings"
	"testing"
)

func TestWarnings(t *testing.T) {
	long := strings.Repeat("a", 500)
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{MsgEmpty}},
		{"whitespace only", " \n\t ", []string{MsgEmpty}},
		{"clean long text", long, nil},
		{"short", "hello world", []string{MsgShort}},
		{"digits are not alphabetic", strings.Repeat("1234 ", 100), []string{MsgLowAlpha}},
		{"symbols", strings.Repeat("ab#$", 100), []string{MsgHighSymbol}},
		{"short noisy", "#$%&*", []string{MsgShort, MsgLowAlpha, MsgHighSymbol}},
		{"whitespace counts in denominator", strings.Repeat("a   ", 100), []string{MsgLowAlpha}},
		{"unicode letters", strings.Repeat("é", 300), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Warnings(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Warnings() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMeasureCountsRunes(t *testing.T) {
	s := Measure("äb 1!")
	if s.Total != 5 || s.Alpha != 2 || s.Symbols != 1 {
		t.Errorf("Measure = %+v", s)
	}
}
