package frames

import (
	"io"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
)

type implExtractor struct {
	cfg      config.FramesConfig
	sampler  Sampler
	logger   logger.Logger
	progress io.Writer
}

// New creates an Extractor. progress receives the progress bar, nil disables it.
func New(cfg config.FramesConfig, sampler Sampler, log logger.Logger, progress io.Writer) Extractor {
	return &implExtractor{
		cfg:      cfg,
		sampler:  sampler,
		logger:   log,
		progress: progress,
	}
}
