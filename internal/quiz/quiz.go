package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
	"github.com/nguyentantai21042004/lecture-flow/internal/textsplit"
	"github.com/nguyentantai21042004/lecture-flow/internal/ui"
)

const stage = "quiz"

const answerPrompt = `Answer the question using the shortest span copied word for word from the context.
Reply with the span only. Reply with an empty line if the context does not answer the question.

Context: %s

Question: %s`

var errNotExtractive = errors.New("answer is not a span of the context")

func (g *implGenerator) Generate(ctx context.Context, text string) ([]MCQ, error) {
	chunks := textsplit.SplitSentences(text, g.cfg.ChunkSize)
	g.logger.Info(ctx, "Generating MCQs from %d chunks...", len(chunks))

	bar := ui.NewBar(g.progress, len(chunks), "Generating questions")
	defer bar.Finish()

	var mcqs []MCQ
	var lastErr error
	failed := 0
	for i, chunk := range chunks {
		_ = bar.Add(1)

		m, ok, err := g.fromChunk(ctx, chunk)
		if err != nil {
			if stageerr.IsRecoverable(err) {
				g.logger.Warn(ctx, "Skipping chunk %d/%d due to error: %v", i+1, len(chunks), err)
				failed++
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("chunk %d: %w", i+1, err)
		}
		if ok {
			mcqs = append(mcqs, m)
		}
	}

	if failed > 0 && failed == len(chunks) {
		return nil, stageerr.NewFatal(stage, fmt.Errorf("all %d chunks failed: %w", failed, lastErr))
	}

	g.logger.Info(ctx, "Generated %d MCQs", len(mcqs))
	return mcqs, nil
}

// fromChunk builds one question; ok is false when the answer is empty or too long.
func (g *implGenerator) fromChunk(ctx context.Context, chunk string) (MCQ, bool, error) {
	raw, err := g.llm.Generate(ctx, "generate question: "+chunk)
	if err != nil {
		return MCQ{}, false, err
	}
	question := ParseQuestion(raw)

	reply, err := g.llm.Generate(ctx, fmt.Sprintf(answerPrompt, chunk, question))
	if err != nil {
		return MCQ{}, false, err
	}
	answer, err := ExtractSpan(chunk, reply)
	if err != nil {
		return MCQ{}, false, stageerr.NewRecoverable(stage, err)
	}
	if answer == "" || len(strings.Fields(answer)) > g.cfg.MaxAnswerWords {
		g.logger.Debug(ctx, "Discarding answer %q", answer)
		return MCQ{}, false, nil
	}

	m, err := Assemble(question, answer, Distractors(chunk, answer, g.rng), g.rng)
	if err != nil {
		return MCQ{}, false, stageerr.NewRecoverable(stage, err)
	}
	return m, true, nil
}

// ParseQuestion keeps the first "<sep>"-separated part longer than five
// characters, or the whole trimmed output when there is none.
func ParseQuestion(raw string) string {
	for _, part := range strings.Split(raw, "<sep>") {
		if q := strings.TrimSpace(part); len(q) > 5 {
			return q
		}
	}
	return strings.TrimSpace(raw)
}

// ExtractSpan locates reply inside chunk ignoring case and returns the
// chunk's own text for it. An empty reply yields an empty span.
func ExtractSpan(chunk, reply string) (string, error) {
	candidate := strings.Trim(strings.TrimSpace(reply), "\"'`")
	if candidate == "" {
		return "", nil
	}

	lowerCtx := strings.ToLower(chunk)
	for _, c := range []string{candidate, strings.TrimRight(candidate, ".")} {
		if c == "" {
			continue
		}
		lc := strings.ToLower(c)
		idx := strings.Index(lowerCtx, lc)
		if idx < 0 {
			continue
		}
		// lowercasing may change byte lengths outside ASCII
		if len(lowerCtx) == len(chunk) && len(lc) == len(c) {
			return chunk[idx : idx+len(c)], nil
		}
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", errNotExtractive, candidate)
}
