package llm

import "context"

// Generator sends a prompt to a text model and returns its reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
