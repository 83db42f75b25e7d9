package textsplit

import (
	"fmt"

	tokenizer "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// TokenCounter reports how many model tokens each text occupies.
type TokenCounter interface {
	CountTokens(texts []string) ([]int, error)
}

type wordCounter struct{}

// WordCounter counts every text as a single token. Used when no tokenizer file is configured.
func WordCounter() TokenCounter {
	return wordCounter{}
}

func (wordCounter) CountTokens(texts []string) ([]int, error) {
	counts := make([]int, len(texts))
	for i := range counts {
		counts[i] = 1
	}
	return counts, nil
}

type hfCounter struct {
	tok *tokenizer.Tokenizer
}

// NewHFCounter loads a HuggingFace tokenizer.json file.
func NewHFCounter(path string) (TokenCounter, error) {
	tok, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return &hfCounter{tok: tok}, nil
}

func (c *hfCounter) CountTokens(texts []string) ([]int, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make([]tokenizer.EncodeInput, len(texts))
	for i, t := range texts {
		inputs[i] = tokenizer.NewSingleEncodeInput(tokenizer.NewInputSequence(t))
	}

	encodings, err := c.tok.EncodeBatch(inputs, false)
	if err != nil {
		return nil, fmt.Errorf("tokenization failed: %w", err)
	}

	counts := make([]int, len(encodings))
	for i, enc := range encodings {
		// padding configured in tokenizer.json must not count
		n := 0
		for _, m := range enc.GetAttentionMask() {
			if m == 1 {
				n++
			}
		}
		counts[i] = n
	}
	return counts, nil
}
