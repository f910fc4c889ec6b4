// Package config loads the optional benchmark configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds benchmark harness settings. Flags override any value
// loaded from file.
type Config struct {
	// DatasetsDir is the root of the dataset trees (ami_official,
	// voxconverse, callhome_eng).
	DatasetsDir string `toml:"datasets_dir"`

	// RTTMCacheDir receives downloaded AMI ground truth.
	RTTMCacheDir string `toml:"rttm_cache_dir"`

	// Threshold is the speaker activity threshold.
	Threshold float64 `toml:"threshold"`

	// FrameShift is the model frame duration in seconds.
	FrameShift float64 `toml:"frame_shift"`

	// MaxSpeakers is the speaker slot capacity of the model output.
	MaxSpeakers int `toml:"max_speakers"`

	// ChunkFrames and ChunkOverlap control chunked inference for long
	// audio, both in frames.
	ChunkFrames  int `toml:"chunk_frames"`
	ChunkOverlap int `toml:"chunk_overlap"`
}

// Default returns the reference configuration.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DatasetsDir:  filepath.Join(home, "DiarizationDatasets"),
		RTTMCacheDir: filepath.Join(home, "DiarizationDatasets", "rttm_cache", "ami"),
		Threshold:    0.5,
		FrameShift:   0.08,
		MaxSpeakers:  4,
		ChunkFrames:  340,
		ChunkOverlap: 40,
	}
}

// Load reads a TOML config file over the defaults. A missing file is
// not an error when path is empty (no config requested); an explicit
// path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0,1], got %g", c.Threshold)
	}
	if c.FrameShift <= 0 {
		return fmt.Errorf("frame_shift must be positive, got %g", c.FrameShift)
	}
	if c.MaxSpeakers <= 0 {
		return fmt.Errorf("max_speakers must be positive, got %d", c.MaxSpeakers)
	}
	if c.ChunkFrames <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkFrames {
		return fmt.Errorf("invalid chunking: frames=%d overlap=%d", c.ChunkFrames, c.ChunkOverlap)
	}
	return nil
}
