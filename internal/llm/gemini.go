package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
	"google.golang.org/genai"
)

var (
	errEmptyResponse = errors.New("empty response from Gemini")
	errClient        = errors.New("create Gemini client")
)

// Generate tries each key at most once, rotating on rate limits and rejected
// keys. It fails fatally when the context ends or no key is accepted.
func (g *implGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	clientFailures := 0

	for range len(g.apiKeys) {
		if err := ctx.Err(); err != nil {
			return "", stageerr.NewFatal(stage, err)
		}

		idx, key := g.key()
		text, err := g.call(ctx, key, prompt)
		if err == nil {
			return text, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", stageerr.NewFatal(stage, ctxErr)
		}
		lastErr = err

		switch {
		case errors.Is(err, errClient):
			clientFailures++
			g.rotateKey()
		case isAuthFailure(err):
			g.logger.Warn(ctx, "Key %d rejected: %v", idx+1, err)
			clientFailures++
			g.rotateKey()
		case isRateLimited(err):
			g.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
			g.rotateKey()
		default:
			return "", stageerr.NewRecoverable(stage, fmt.Errorf("generate content: %w", err))
		}
	}

	if clientFailures == len(g.apiKeys) {
		return "", stageerr.NewFatal(stage, lastErr)
	}
	return "", stageerr.NewRecoverable(stage, fmt.Errorf("all API keys exhausted: %w", lastErr))
}

func (g *implGenerator) callGemini(ctx context.Context, key, prompt string) (string, error) {
	client, err := g.client(ctx, key)
	if err != nil {
		return "", err
	}

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var sb strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text, nil
		}
	}
	return "", errEmptyResponse
}

// client returns the cached client for key, creating it on first use.
func (g *implGenerator) client(ctx context.Context, key string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[key]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errClient, err)
	}
	g.clients[key] = c
	return c, nil
}

func (g *implGenerator) key() (int, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.apiKeys[g.currentKey]
}

func (g *implGenerator) rotateKey() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
}

// isAuthFailure reports whether the API rejected the key itself.
func isAuthFailure(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return true
		case apiErr.Status == "UNAUTHENTICATED" || apiErr.Status == "PERMISSION_DENIED":
			return true
		case apiErr.Code == 400:
			for _, d := range apiErr.Details {
				if reason, _ := d["reason"].(string); reason == "API_KEY_INVALID" {
					return true
				}
			}
			return strings.Contains(apiErr.Message, "API key not valid")
		}
		return false
	}
	// errors that lost their type on the way, e.g. wrapped by a proxy
	msg := err.Error()
	return strings.Contains(msg, "API_KEY_INVALID") || strings.Contains(msg, "API key not valid")
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
