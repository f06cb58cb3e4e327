package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if cfg.Quiz.Exploration != nil || cfg.Camera.Index != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[quiz]
exploration = 0.25
alphabet = "ABC"
camera = false
video-timeout = "12s"

[camera]
index = 2
frame-ms = 33

[detector]
min-confidence = 0.7
templates = "/tmp/templates.json"

[phrase]
phrases = ["HELLO", "GOOD MORNING"]

[log]
debug = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Quiz.Exploration == nil || *cfg.Quiz.Exploration != 0.25 {
		t.Fatalf("unexpected exploration %v", cfg.Quiz.Exploration)
	}
	if cfg.Quiz.Alphabet == nil || *cfg.Quiz.Alphabet != "ABC" {
		t.Fatalf("unexpected alphabet %v", cfg.Quiz.Alphabet)
	}
	if cfg.Quiz.Camera == nil || *cfg.Quiz.Camera {
		t.Fatalf("expected camera=false")
	}
	if cfg.Quiz.VideoTimeout == nil || *cfg.Quiz.VideoTimeout != "12s" {
		t.Fatalf("unexpected video timeout %v", cfg.Quiz.VideoTimeout)
	}
	if cfg.Camera.Index == nil || *cfg.Camera.Index != 2 || cfg.Camera.FrameMs == nil || *cfg.Camera.FrameMs != 33 {
		t.Fatalf("unexpected camera config %+v", cfg.Camera)
	}
	if cfg.Detector.MinConfidence == nil || *cfg.Detector.MinConfidence != 0.7 {
		t.Fatalf("unexpected detector config %+v", cfg.Detector)
	}
	if cfg.Detector.MinTracking != nil {
		t.Fatalf("expected unset min-tracking to stay nil")
	}
	if len(cfg.Phrase.Phrases) != 2 {
		t.Fatalf("unexpected phrases %v", cfg.Phrase.Phrases)
	}
	if cfg.Log.Debug == nil || !*cfg.Log.Debug {
		t.Fatalf("expected debug=true")
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[quiz]\nepsilon = 0.2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "quiz.epsilon") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	if got, want := DefaultConfigPath(), filepath.Join(dir, "cfg", "signquiz", "config.toml"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got, want := DefaultDBPath(), filepath.Join(dir, "data", "signquiz", "signquiz.db"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got, want := DefaultImagesDir(), filepath.Join(dir, "data", "signquiz", "asl_images"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got, want := DefaultTemplatesPath(), filepath.Join(dir, "data", "signquiz", "templates.json"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got, want := DefaultLogPath(), filepath.Join(dir, "state", "signquiz", "signquiz.log"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
