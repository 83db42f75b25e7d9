package textsplit

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode"
)

type lenCounter struct{}

func (lenCounter) CountTokens(texts []string) ([]int, error) {
	out := make([]int, len(texts))
	for i, t := range texts {
		out[i] = len(t)
	}
	return out, nil
}

type failingCounter struct{}

func (failingCounter) CountTokens([]string) ([]int, error) {
	return nil, errors.New("tokenizer broke")
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func TestSplitTokens(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		max     int
		counter TokenCounter
		want    []string
	}{
		{"word windows", "a b c d e f g", 3, WordCounter(), []string{"a b c", "d e f", "g"}},
		{"weighted words", "aaaa bb c", 5, lenCounter{}, []string{"aaaa", "bb c"}},
		{"oversized word", "xxxxxxxx y", 5, lenCounter{}, []string{"xxxxxxxx", "y"}},
		{"keeps inner whitespace", "a\n\nb  c", 10, WordCounter(), []string{"a\n\nb  c"}},
		{"trims outer whitespace", "  a b  ", 10, WordCounter(), []string{"a b"}},
		{"empty", "   ", 10, WordCounter(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitTokens(tt.text, tt.max, tt.counter)
			if err != nil {
				t.Fatalf("SplitTokens() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitTokens() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitTokensErrors(t *testing.T) {
	if _, err := SplitTokens("a b", 0, WordCounter()); err == nil {
		t.Error("SplitTokens() should reject a zero window")
	}
	if _, err := SplitTokens("a b", 5, failingCounter{}); err == nil {
		t.Error("SplitTokens() should surface counter errors")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"greedy fill", "the quick brown fox", 10, []string{"the quick", "brown fox"}},
		{"long word kept whole", "a supercalifragilistic b", 5, []string{"a", "supercalifragilistic", "b"}},
		{"newline preserved", "one\ntwo three", 20, []string{"one\ntwo three"}},
		{"leading whitespace dropped", "   hi there", 20, []string{"hi there"}},
		{"empty", "", 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Wrap(tt.text, tt.width); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Wrap() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChunksReconstructInput(t *testing.T) {
	text := strings.Repeat("Gradient descent updates the weights.\nLearning rate matters!  ", 40)

	tokenChunks, err := SplitTokens(text, 17, WordCounter())
	if err != nil {
		t.Fatalf("SplitTokens() error = %v", err)
	}
	if got := stripSpace(strings.Join(tokenChunks, "")); got != stripSpace(text) {
		t.Error("token chunks do not reconstruct the input")
	}

	wrapped := Wrap(text, 70)
	if got := stripSpace(strings.Join(wrapped, "")); got != stripSpace(text) {
		t.Error("wrapped chunks do not reconstruct the input")
	}
	for _, line := range wrapped {
		if len([]rune(line)) > 70 {
			t.Errorf("Wrap() line of %d chars exceeds width 70", len([]rune(line)))
		}
	}
}

func TestSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"three kinds", "Hello world. How are you? Fine!", []string{"Hello world.", "How are you?", "Fine!"}},
		{"decimal not split", "3.14 is pi. Yes.", []string{"3.14 is pi.", "Yes."}},
		{"no terminator", "just words", []string{"just words"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sentences(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sentences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"packs under limit", "Aaaa bbbb. Cccc dddd. Ee.", 20, []string{"Aaaa bbbb.", "Cccc dddd. Ee."}},
		{"oversized first sentence", "Toolong sentence.", 5, []string{"Toolong sentence."}},
		{"empty", "", 400, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitSentences(tt.text, tt.limit); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWordCounter(t *testing.T) {
	got, err := WordCounter().CountTokens([]string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("CountTokens() error = %v", err)
	}
	if !reflect.DeepEqual(got, []int{1, 1, 1}) {
		t.Errorf("CountTokens() = %v, want [1 1 1]", got)
	}
}

func TestNewHFCounterMissingFile(t *testing.T) {
	if _, err := NewHFCounter("does-not-exist/tokenizer.json"); err == nil {
		t.Error("NewHFCounter() should fail for a missing file")
	}
}
