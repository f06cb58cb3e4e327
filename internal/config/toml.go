// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Quiz     QuizConfig     `toml:"quiz"`
	Camera   CameraConfig   `toml:"camera"`
	Detector DetectorConfig `toml:"detector"`
	Phrase   PhraseConfig   `toml:"phrase"`
	Log      LogConfig      `toml:"log"`
}

// QuizConfig maps quiz-related settings.
type QuizConfig struct {
	Exploration  *float64 `toml:"exploration"`
	Alphabet     *string  `toml:"alphabet"`
	Camera       *bool    `toml:"camera"`
	VideoTimeout *string  `toml:"video-timeout"`
	ImagesDir    *string  `toml:"images-dir"`
	Seed         *int64   `toml:"seed"`
}

// CameraConfig maps capture settings.
type CameraConfig struct {
	Index   *int `toml:"index"`
	FrameMs *int `toml:"frame-ms"`
}

// DetectorConfig maps hand detection and classification settings.
type DetectorConfig struct {
	MinConfidence *float64 `toml:"min-confidence"`
	MinTracking   *float64 `toml:"min-tracking"`
	MinScore      *float64 `toml:"min-score"`
	Script        *string  `toml:"script"`
	Python        *string  `toml:"python"`
	Templates     *string  `toml:"templates"`
}

// PhraseConfig maps phrase practice settings.
type PhraseConfig struct {
	Phrases []string `toml:"phrases"`
	// File holds one phrase per line and replaces Phrases when set.
	File    *string  `toml:"file"`
}

// LogConfig maps diagnostics settings.
type LogConfig struct {
	Path  *string `toml:"path"`
	Debug *bool   `toml:"debug"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
