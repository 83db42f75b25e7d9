package quiz

import (
	"io"
	"math/rand/v2"
	"time"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/llm"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
)

type implGenerator struct {
	cfg      config.QuizConfig
	llm      llm.Generator
	rng      *rand.Rand
	logger   logger.Logger
	progress io.Writer
}

// New creates a quiz Generator. A zero cfg.Seed seeds from the clock.
func New(cfg config.QuizConfig, gen llm.Generator, log logger.Logger, progress io.Writer) Generator {
	seed := uint64(cfg.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &implGenerator{
		cfg:      cfg,
		llm:      gen,
		rng:      rand.New(rand.NewPCG(seed, seed>>1|1)),
		logger:   log,
		progress: progress,
	}
}
