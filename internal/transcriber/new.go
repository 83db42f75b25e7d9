package transcriber

import (
	"fmt"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
	"github.com/nguyentantai21042004/lecture-flow/pkg/executor"
)

const stage = "transcribe"

// New returns the backend selected by cfg.Transcription.Backend.
// Failures here are fatal: the model or service cannot be used at all.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) (Transcriber, error) {
	switch cfg.Transcription.Backend {
	case "whisper":
		return newWhisper(cfg.Whisper, exec, log)
	case "gcp":
		return newSpeech(cfg.Transcription, cfg.FFmpeg.AudioSampleRate, log)
	default:
		return nil, stageerr.NewFatal(stage, fmt.Errorf("unknown transcription backend %q", cfg.Transcription.Backend))
	}
}
