package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	opts := &options{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--video", "talk.mp4", "--whisper-model", "small", "--skip-frames", "--fps", "2"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Paths.Video != "talk.mp4" || cfg.Whisper.Model != "small" || !cfg.Frames.Skip || cfg.Frames.FPS != 2 {
		t.Errorf("flags not applied: %+v %+v %+v", cfg.Paths, cfg.Whisper, cfg.Frames)
	}
	if cfg.Paths.Output != "output" || cfg.Quiz.ChunkSize != 400 {
		t.Errorf("defaults not filled: output=%q quiz=%+v", cfg.Paths.Output, cfg.Quiz)
	}
}

func TestLoadConfigExplicitMissingFile(t *testing.T) {
	opts := &options{}
	cmd := newRootCmd(opts)
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	if err := cmd.ParseFlags([]string{"--config", missing}); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(cmd, opts); err == nil {
		t.Error("loadConfig() error = nil, want error for missing explicit config")
	}
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("whisper:\n  model: base\npaths:\n  output: from-file\n"), 0644)

	opts := &options{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--config", path, "--whisper-model", "medium"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Whisper.Model != "medium" {
		t.Errorf("Whisper.Model = %q, want medium", cfg.Whisper.Model)
	}
	if cfg.Paths.Output != "from-file" {
		t.Errorf("Paths.Output = %q, want from-file", cfg.Paths.Output)
	}
}

func TestLoadConfigRejectsUnknownModel(t *testing.T) {
	t.Chdir(t.TempDir())
	opts := &options{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--whisper-model", "huge"}); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(cmd, opts); err == nil {
		t.Error("loadConfig() error = nil, want error for unknown model")
	}
}
