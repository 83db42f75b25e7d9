package media

import (
	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/pkg/executor"
)

type implMedia struct {
	cfg      config.FFmpegConfig
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Media backed by the ffmpeg binaries named in cfg.
func New(cfg config.FFmpegConfig, exec executor.Executor, log logger.Logger) Media {
	return &implMedia{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}
