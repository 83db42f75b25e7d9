package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/mocks"
	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
	"github.com/nguyentantai21042004/lecture-flow/internal/textsplit"
)

func newTestSummarizer(gen *mocks.MockGenerator, maxTokens, chunkSize int) Summarizer {
	return New(
		config.SummarizerConfig{MaxTokens: maxTokens, MinWords: 30, MaxWords: 130},
		config.CleanerConfig{ChunkSize: chunkSize},
		gen, textsplit.WordCounter(), logger.NewNop(), nil,
	)
}

func TestSummarize(t *testing.T) {
	// 25 words with a 15 token budget (5 usable) gives 5 windows
	transcript := strings.TrimSpace(strings.Repeat("alpha beta gamma delta epsilon ", 5))
	n := 0
	gen := &mocks.MockGenerator{Respond: func(prompt string) (string, error) {
		n++
		return " summary " + string(rune('0'+n)) + " ", nil
	}}

	got, err := newTestSummarizer(gen, 15, 700).Summarize(context.Background(), transcript)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	want := "summary 1\n\nsummary 2\n\nsummary 3\n\nsummary 4\n\nsummary 5"
	if got != want {
		t.Errorf("Summarize() = %q, want %q", got, want)
	}
	if !strings.Contains(gen.Prompts[0], "30 to 130 words") || !strings.HasSuffix(gen.Prompts[0], "alpha beta gamma delta epsilon") {
		t.Errorf("prompt = %q", gen.Prompts[0])
	}
}

func TestSummarizeSkipsRecoverableChunks(t *testing.T) {
	n := 0
	gen := &mocks.MockGenerator{Respond: func(prompt string) (string, error) {
		n++
		if n == 2 {
			return "", stageerr.NewRecoverable("llm", errors.New("blocked by safety filter"))
		}
		return "ok", nil
	}}

	got, err := newTestSummarizer(gen, 12, 700).Summarize(context.Background(), "a b c d e f")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "ok\n\nok" {
		t.Errorf("Summarize() = %q, want two surviving chunks", got)
	}
	if gen.CallCount() != 3 {
		t.Errorf("calls = %d, want 3 (no retry)", gen.CallCount())
	}
}

func TestSummarizeFatalAborts(t *testing.T) {
	gen := &mocks.MockGenerator{Respond: func(string) (string, error) {
		return "", stageerr.NewFatal("llm", errors.New("invalid api key"))
	}}
	_, err := newTestSummarizer(gen, 12, 700).Summarize(context.Background(), "a b c d e f")
	if !stageerr.IsFatal(err) {
		t.Errorf("Summarize() error = %v, want fatal", err)
	}
	if gen.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", gen.CallCount())
	}
}

func TestSummarizeEmpty(t *testing.T) {
	gen := &mocks.MockGenerator{}
	got, err := newTestSummarizer(gen, 1024, 700).Summarize(context.Background(), "  ")
	if err != nil || got != "" {
		t.Errorf("Summarize(empty) = %q, %v; want empty", got, err)
	}
	if gen.CallCount() != 0 {
		t.Errorf("calls = %d, want 0", gen.CallCount())
	}
}

func TestClean(t *testing.T) {
	gen := &mocks.MockGenerator{Respond: func(prompt string) (string, error) {
		chunk := strings.TrimPrefix(prompt, CleanInstruction+"\n\n")
		return strings.ToUpper(chunk), nil
	}}

	got, err := newTestSummarizer(gen, 1024, 20).Clean(context.Background(), "hello and welcome. loss functions measure error.")
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	want := "HELLO AND WELCOME.\n\nLOSS FUNCTIONS\n\nMEASURE ERROR."
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
	for _, p := range gen.Prompts {
		if !strings.HasPrefix(p, CleanInstruction+"\n\n") {
			t.Errorf("prompt missing instruction prefix: %q", p)
		}
	}
}

func TestEveryChunkFailingIsFatal(t *testing.T) {
	gen := &mocks.MockGenerator{Respond: func(string) (string, error) {
		return "", stageerr.NewRecoverable("llm", errors.New("blocked by safety filter"))
	}}
	s := newTestSummarizer(gen, 12, 5)

	if _, err := s.Summarize(context.Background(), "a b c d e f"); !stageerr.IsFatal(err) {
		t.Errorf("Summarize() error = %v, want fatal", err)
	}
	if _, err := s.Clean(context.Background(), "alpha beta gamma"); !stageerr.IsFatal(err) {
		t.Errorf("Clean() error = %v, want fatal", err)
	}
}
