package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
	"github.com/nguyentantai21042004/lecture-flow/pkg/executor"
)

type whisperTranscriber struct {
	cfg       config.WhisperConfig
	modelPath string
	executor  executor.Executor
	logger    logger.Logger
}

// ModelPath returns the ggml checkpoint for a model size inside dir.
func ModelPath(dir, model string) string {
	return filepath.Join(dir, "ggml-"+model+".bin")
}

func newWhisper(cfg config.WhisperConfig, exec executor.Executor, log logger.Logger) (Transcriber, error) {
	if _, err := exec.LookPath(cfg.BinaryPath); err != nil {
		return nil, stageerr.NewFatal(stage, err)
	}

	modelPath, err := filepath.Abs(ModelPath(cfg.ModelDir, cfg.Model))
	if err != nil {
		return nil, stageerr.NewFatal(stage, err)
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, stageerr.NewFatal(stage, fmt.Errorf("whisper model %q: %w", cfg.Model, err))
	}

	return &whisperTranscriber{
		cfg:       cfg,
		modelPath: modelPath,
		executor:  exec,
		logger:    log,
	}, nil
}

// Transcribe runs whisper.cpp in a scratch directory and joins its text
// segments with single spaces.
func (w *whisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	absAudio, err := filepath.Abs(audioPath)
	if err != nil {
		return "", fmt.Errorf("resolve audio path: %w", err)
	}

	workDir, err := os.MkdirTemp("", "whisper-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	w.logger.Info(ctx, "Transcribing with whisper %s (%d threads): %s", w.cfg.Model, w.cfg.Threads, audioPath)

	// -otxt writes one segment per line to <output-file>.txt
	args := []string{
		"-m", w.modelPath,
		"-f", absAudio,
		"-otxt",
		"-l", w.cfg.Language,
		"-t", strconv.Itoa(w.cfg.Threads),
		"--output-file", "transcript",
	}
	if w.cfg.Prompt != "" {
		args = append(args, "--prompt", w.cfg.Prompt)
	}

	if _, err := w.executor.ExecuteInDir(ctx, workDir, w.cfg.BinaryPath, args...); err != nil {
		return "", stageerr.NewFatal(stage, fmt.Errorf("whisper transcribe: %w", err))
	}

	data, err := os.ReadFile(filepath.Join(workDir, "transcript.txt"))
	if err != nil {
		return "", stageerr.NewFatal(stage, fmt.Errorf("read whisper output: %w", err))
	}
	return joinSegments(strings.Split(string(data), "\n")), nil
}

func (w *whisperTranscriber) Close() error { return nil }

// joinSegments trims each segment, drops empty ones and joins the rest with a space.
func joinSegments(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
