package processor

import (
	"io"
	"sync"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/frames"
	"github.com/nguyentantai21042004/lecture-flow/internal/llm"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/media"
	"github.com/nguyentantai21042004/lecture-flow/internal/ocr"
	"github.com/nguyentantai21042004/lecture-flow/internal/textsplit"
	"github.com/nguyentantai21042004/lecture-flow/internal/transcriber"
	"github.com/nguyentantai21042004/lecture-flow/pkg/executor"
)

// factories build model-backed components when a stage actually has to run,
// so a fully cached run needs neither models nor credentials.
type factories struct {
	transcriber func() (transcriber.Transcriber, error)
	ocr         func() (ocr.Engine, error)
	generator   func() (llm.Generator, error)
	counter     func() (textsplit.TokenCounter, error)
}

type implProcessor struct {
	cfg      *config.Config
	media    media.Media
	frames   frames.Extractor
	build    factories
	logger   logger.Logger
	progress io.Writer

	// models serializes transcription and OCR across concurrently processed videos
	models *semaphore

	mu      sync.Mutex
	gen     llm.Generator
	counter textsplit.TokenCounter
}

// New creates a Processor. progress receives progress bars and the final
// report; nil disables both.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger, progress io.Writer) Processor {
	m := media.New(cfg.FFmpeg, exec, log)
	return &implProcessor{
		cfg:    cfg,
		media:  m,
		frames: frames.New(cfg.Frames, m, log, progress),
		build: factories{
			transcriber: func() (transcriber.Transcriber, error) {
				return transcriber.New(cfg, exec, log)
			},
			ocr: func() (ocr.Engine, error) {
				return ocr.New(cfg.OCR, exec, log)
			},
			generator: func() (llm.Generator, error) {
				return llm.New(cfg.Gemini, log)
			},
			counter: func() (textsplit.TokenCounter, error) {
				if cfg.Summarizer.TokenizerPath == "" {
					return textsplit.WordCounter(), nil
				}
				return textsplit.NewHFCounter(cfg.Summarizer.TokenizerPath)
			},
		},
		logger:   log,
		progress: progress,
		models:   newSemaphore(1),
	}
}

// generator returns the shared LLM client, creating it on first use.
func (p *implProcessor) generator() (llm.Generator, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen == nil {
		g, err := p.build.generator()
		if err != nil {
			return nil, err
		}
		p.gen = g
	}
	return p.gen, nil
}

func (p *implProcessor) tokenCounter() (textsplit.TokenCounter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.counter == nil {
		c, err := p.build.counter()
		if err != nil {
			return nil, err
		}
		p.counter = c
	}
	return p.counter, nil
}
