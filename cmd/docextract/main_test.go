package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(txt, []byte("hello from a text file"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOG_LEVEL", "error")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no file", nil, 2},
		{"two files", []string{txt, txt}, 2},
		{"unknown flag", []string{"-bogus", txt}, 2},
		{"bad lang", []string{"-lang", "eng deu", txt}, 2},
		{"missing config", []string{"-config", filepath.Join(dir, "nope.yaml"), txt}, 2},
		{"text file", []string{"-validate", txt}, 0},
		{"unsupported type", []string{"-validate", filepath.Join(dir, "x.xyz")}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%q) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}
