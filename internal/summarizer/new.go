package summarizer

import (
	"io"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/llm"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/textsplit"
)

type implSummarizer struct {
	summaryCfg config.SummarizerConfig
	cleanerCfg config.CleanerConfig
	generator  llm.Generator
	counter    textsplit.TokenCounter
	logger     logger.Logger
	progress   io.Writer
}

// New creates a Summarizer. progress receives the progress bars, nil disables them.
func New(summaryCfg config.SummarizerConfig, cleanerCfg config.CleanerConfig, gen llm.Generator,
	counter textsplit.TokenCounter, log logger.Logger, progress io.Writer) Summarizer {
	return &implSummarizer{
		summaryCfg: summaryCfg,
		cleanerCfg: cleanerCfg,
		generator:  gen,
		counter:    counter,
		logger:     log,
		progress:   progress,
	}
}
