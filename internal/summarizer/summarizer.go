package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
	"github.com/nguyentantai21042004/lecture-flow/internal/textsplit"
	"github.com/nguyentantai21042004/lecture-flow/internal/ui"
)

// tokens kept free in every window for the prompt
const windowMargin = 10

const summaryPrompt = `Summarize the following excerpt of a lecture transcript in %d to %d words.
Keep definitions, technical terms, formulas and worked examples. Write plain prose without headings or lists and reply with the summary only.

%s`

// CleanInstruction prefixes every chunk sent for cleaning.
const CleanInstruction = "Refine the following text by keeping only technical, academic, or educational content. " +
	"Remove introductions, greetings, conclusions, and any non-informative sentences."

func (s *implSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	chunks, err := textsplit.SplitTokens(transcript, s.summaryCfg.MaxTokens-windowMargin, s.counter)
	if err != nil {
		return "", stageerr.NewFatal("summarize", fmt.Errorf("split transcript: %w", err))
	}
	s.logger.Info(ctx, "Summarizing %d chunks...", len(chunks))

	return s.each(ctx, "summarize", "Summarizing chunks", chunks, func(chunk string) string {
		return fmt.Sprintf(summaryPrompt, s.summaryCfg.MinWords, s.summaryCfg.MaxWords, chunk)
	})
}

func (s *implSummarizer) Clean(ctx context.Context, summary string) (string, error) {
	chunks := textsplit.Wrap(summary, s.cleanerCfg.ChunkSize)
	s.logger.Info(ctx, "Split text into %d chunks.", len(chunks))

	return s.each(ctx, "clean", "Cleaning chunks", chunks, func(chunk string) string {
		return CleanInstruction + "\n\n" + chunk
	})
}

// each sends one prompt per chunk and joins the replies with blank lines.
// Recoverable failures skip the chunk; anything else, or every chunk
// failing, aborts.
func (s *implSummarizer) each(ctx context.Context, stage, desc string, chunks []string, prompt func(string) string) (string, error) {
	bar := ui.NewBar(s.progress, len(chunks), desc)
	defer bar.Finish()

	results := make([]string, 0, len(chunks))
	var lastErr error
	failed := 0
	for i, chunk := range chunks {
		_ = bar.Add(1)

		out, err := s.generator.Generate(ctx, prompt(chunk))
		if err != nil {
			if stageerr.IsRecoverable(err) {
				s.logger.Error(ctx, "[%s] Skipping chunk %d/%d: %v", stage, i+1, len(chunks), err)
				failed++
				lastErr = err
				continue
			}
			return "", fmt.Errorf("%s chunk %d: %w", stage, i+1, err)
		}
		if out = strings.TrimSpace(out); out != "" {
			results = append(results, out)
		}
	}

	// an output built from nothing must not be written or cached
	if failed > 0 && failed == len(chunks) {
		return "", stageerr.NewFatal(stage, fmt.Errorf("all %d chunks failed: %w", failed, lastErr))
	}
	return strings.Join(results, "\n\n"), nil
}
