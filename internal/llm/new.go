package llm

import (
	"context"
	"errors"
	"sync"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
	"google.golang.org/genai"
)

const stage = "llm"

type implGenerator struct {
	apiKeys    []string
	currentKey int
	clients    map[string]*genai.Client
	model      string
	logger     logger.Logger
	mu         sync.Mutex

	// call performs one request with one key; replaced in tests.
	call func(ctx context.Context, key, prompt string) (string, error)
}

// New creates a Generator that rotates through the configured Gemini API keys.
func New(cfg config.GeminiConfig, log logger.Logger) (Generator, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, stageerr.NewFatal(stage, errors.New("no Gemini API keys configured (gemini.api_keys or GEMINI_API_KEYS)"))
	}

	g := &implGenerator{
		apiKeys: cfg.APIKeys,
		clients: make(map[string]*genai.Client),
		model:   cfg.Model,
		logger:  log,
	}
	g.call = g.callGemini
	return g, nil
}
