package summarizer

import "context"

// Summarizer condenses a lecture transcript with an LLM.
type Summarizer interface {
	// Summarize splits transcript into token windows and summarizes each one.
	Summarize(ctx context.Context, transcript string) (string, error)
	// Clean re-summarizes text in fixed-width chunks keeping only technical content.
	Clean(ctx context.Context, summary string) (string, error)
}
