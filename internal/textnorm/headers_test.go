package textnorm

import (
	"reflect"
	"strings"
	"testing"
)

func TestStripHeadersFootersNoOpBelowThreePages(t *testing.T) {
	cases := [][]string{
		nil,
		{"Confidential\nbody\nConfidential"},
		{"Page 1 of 2\n\n  body  ", "Page 2 of 2\nbody"},
	}
	for _, in := range cases {
		got := StripHeadersFooters(in)
		if !reflect.DeepEqual(got, in) {
			t.Errorf("StripHeadersFooters(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestStripHeadersFootersRemovesRecurringLine(t *testing.T) {
	pages := make([]string, 4)
	for i := range pages {
		pages[i] = "Confidential\nSection body " + string(rune('A'+i)) + "\nmore text\nand more\neven more\nfinal words"
	}
	got := StripHeadersFooters(pages)
	for i, p := range got {
		if strings.Contains(p, "Confidential") {
			t.Errorf("page %d still contains header: %q", i, p)
		}
		if !strings.Contains(p, "Section body") {
			t.Errorf("page %d lost body text: %q", i, p)
		}
	}
}

func TestStripHeadersFootersThreshold(t *testing.T) {
	// 6 pages -> threshold 3. "Draft" appears on 2 pages only.
	pages := []string{
		"Header\nDraft\nbody one",
		"Header\nDraft\nbody two",
		"Header\nbody three",
		"Header\nbody four",
		"Header\nbody five",
		"Header\nbody six",
	}
	got := StripHeadersFooters(pages)
	for i, p := range got {
		if strings.Contains(p, "Header") {
			t.Errorf("page %d: Header should be suppressed: %q", i, p)
		}
	}
	if !strings.Contains(got[0], "Draft") || !strings.Contains(got[1], "Draft") {
		t.Errorf("Draft is below threshold and must survive: %q", got[:2])
	}
}

func TestStripHeadersFootersSmallDocumentFloor(t *testing.T) {
	// 3 pages -> threshold max(2, 1) = 2; a line on 2 pages is suppressed.
	pages := []string{"Intro\nshared line", "Other\nshared line", "Third\nunique"}
	got := StripHeadersFooters(pages)
	if strings.Contains(got[0], "shared line") || strings.Contains(got[1], "shared line") {
		t.Errorf("line on 2 of 3 pages should be suppressed: %q", got)
	}
}

func TestStripHeadersFootersOnlyEdgesCount(t *testing.T) {
	// The repeated line sits in the middle of long pages, so it is never a candidate.
	body := func(tag string) string {
		return strings.Join([]string{tag + "1", tag + "2", tag + "3", "Repeated middle", tag + "4", tag + "5", tag + "6"}, "\n")
	}
	pages := []string{body("a"), body("b"), body("c")}
	got := StripHeadersFooters(pages)
	for i, p := range got {
		if !strings.Contains(p, "Repeated middle") {
			t.Errorf("page %d: middle line removed: %q", i, p)
		}
	}
}

func TestStripHeadersFootersDropsBlankLines(t *testing.T) {
	pages := []string{"a\n\n\nb", "c\n   \nd", "e\r\nf", "  Indented body one  \n\tg "}
	got := StripHeadersFooters(pages)
	want := []string{"a\nb", "c\nd", "e\nf", "Indented body one\ng"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}
