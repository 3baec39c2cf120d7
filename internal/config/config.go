package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries all pipeline settings. Load starts from Default, so fields
// absent from the file keep their documented defaults.
type Config struct {
	Extraction Extraction `yaml:"extraction"`
	Zoom       float64    `yaml:"zoom"`
	Workers    int        `yaml:"workers"` // 0 means size from the machine
}

// Extraction holds the per-category switches and tuning overrides.
type Extraction struct {
	Highlights  bool `yaml:"extract_highlights"`
	Handwriting bool `yaml:"extract_handwriting"`

	// Padding around native annotation crops and around merged color groups.
	AnnotationPadding int `yaml:"annotation_padding"`
	GroupPadding      int `yaml:"group_padding"`

	Highlight CategoryOverrides `yaml:"highlight"`
	Mark      CategoryOverrides `yaml:"mark"`
}

// CategoryOverrides replaces the calibrated per-category defaults when
// non-zero.
type CategoryOverrides struct {
	MinArea         int `yaml:"min_area"`
	MergeHorizontal int `yaml:"merge_horizontal"`
	MergeVertical   int `yaml:"merge_vertical"`
}

// Default returns the reference settings: both categories enabled, 3x render
// zoom, 10px padding for metadata crops and 15px for color groups.
func Default() Config {
	return Config{
		Extraction: Extraction{
			Highlights:        true,
			Handwriting:       true,
			AnnotationPadding: 10,
			GroupPadding:      15,
		},
		Zoom: 3.0,
	}
}

// Load reads a YAML config over the defaults. A missing file yields the
// defaults without error; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
