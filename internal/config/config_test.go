package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Threshold != 0.5 {
		t.Errorf("Threshold = %v, want 0.5", cfg.Threshold)
	}
	if cfg.FrameShift != 0.08 {
		t.Errorf("FrameShift = %v, want 0.08", cfg.FrameShift)
	}
	if cfg.MaxSpeakers != 4 {
		t.Errorf("MaxSpeakers = %d, want 4", cfg.MaxSpeakers)
	}
	if cfg.DatasetsDir == "" {
		t.Error("DatasetsDir should not be empty")
	}
}

func TestLoad_NoPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.toml")
	content := strings.Join([]string{
		`datasets_dir = "/mnt/corpora"`,
		`threshold = 0.6`,
		`max_speakers = 4`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatasetsDir != "/mnt/corpora" {
		t.Errorf("DatasetsDir = %s, want /mnt/corpora", cfg.DatasetsDir)
	}
	if cfg.Threshold != 0.6 {
		t.Errorf("Threshold = %v, want 0.6", cfg.Threshold)
	}
	// Unset keys keep their defaults.
	if cfg.FrameShift != 0.08 {
		t.Errorf("FrameShift = %v, want default 0.08", cfg.FrameShift)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "threshold = = 1"},
		{"threshold out of range", "threshold = 1.5"},
		{"negative frame shift", "frame_shift = -0.08"},
		{"zero speakers", "max_speakers = 0"},
		{"overlap too big", "chunk_frames = 10\nchunk_overlap = 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bench.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("writing config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
