package ocr

import (
	"fmt"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
	"github.com/nguyentantai21042004/lecture-flow/pkg/executor"
)

const stage = "ocr"

// New returns the engine selected by cfg.Backend.
func New(cfg config.OCRConfig, exec executor.Executor, log logger.Logger) (Engine, error) {
	switch cfg.Backend {
	case "tesseract":
		if _, err := exec.LookPath(cfg.BinaryPath); err != nil {
			return nil, stageerr.NewFatal(stage, err)
		}
		return &tesseractEngine{cfg: cfg, executor: exec, logger: log}, nil
	case "gcp":
		return newVision(log)
	default:
		return nil, stageerr.NewFatal(stage, fmt.Errorf("unknown ocr backend %q", cfg.Backend))
	}
}
