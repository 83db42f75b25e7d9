package quiz

import "context"

// Generator turns cleaned lecture notes into multiple-choice questions.
type Generator interface {
	Generate(ctx context.Context, text string) ([]MCQ, error)
}
