//go:build gosseract

package ocr

import (
	"os"
	"testing"
)

func TestWriteLSTMConfig(t *testing.T) {
	path, err := writeLSTMConfig(t.TempDir())
	if err != nil {
		t.Fatalf("writeLSTMConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "tessedit_ocr_engine_mode 1\n" {
		t.Errorf("config = %q", data)
	}
}

func TestNewGosseractEngineLoadsConfig(t *testing.T) {
	eng, err := NewGosseractEngine(Config{}, nil)
	if err != nil {
		t.Fatalf("NewGosseractEngine: %v", err)
	}
	g := eng.(*GosseractEngine)
	if _, err := os.Stat(g.configFile); err != nil {
		t.Errorf("config file missing: %v", err)
	}
}
