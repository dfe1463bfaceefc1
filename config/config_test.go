package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsZeroValue(t *testing.T) {
	cfg := Default()
	if cfg.FrameRateHz != 0 || cfg.CoalesceGap != 0 || cfg.HiddenCursor {
		t.Errorf("Default() should be the zero value, got %+v", cfg)
	}
}

func TestLoadDecodesPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flywheel.toml")
	contents := `
frame_rate_hz = 30
coalesce_gap = 5
hidden_cursor = true
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FrameRateHz != 30 {
		t.Errorf("expected FrameRateHz 30, got %d", cfg.FrameRateHz)
	}
	if cfg.CoalesceGap != 5 {
		t.Errorf("expected CoalesceGap 5, got %d", cfg.CoalesceGap)
	}
	if !cfg.HiddenCursor {
		t.Errorf("expected HiddenCursor true")
	}
	if cfg.StreamMaxLines != 0 {
		t.Errorf("fields absent from the file should keep their zero default, got StreamMaxLines=%d", cfg.StreamMaxLines)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err == nil {
		t.Errorf("expected an error loading a missing file")
	}
}
