package quiz

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	numDistractors = 3
	filler         = "Unrelated concept"
	letters        = "abcd"
)

// MCQ is one four-option question. Answer is the letter of the correct option.
type MCQ struct {
	Question string
	Options  [4]string
	Answer   byte
}

// String renders the question block followed by a blank line.
func (m MCQ) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Q: %s\n", m.Question)
	for i, opt := range m.Options {
		fmt.Fprintf(&sb, "%c) %s\n", letters[i], opt)
	}
	fmt.Fprintf(&sb, "Answer: %c\n\n", m.Answer)
	return sb.String()
}

// Format concatenates question blocks.
func Format(mcqs []MCQ) string {
	var sb strings.Builder
	for _, m := range mcqs {
		sb.WriteString(m.String())
	}
	return sb.String()
}

// Distractors picks up to three words of chunk as wrong answers: unique
// word tokens longer than three characters whose lowercase form does not
// occur inside the lowercased answer. Missing slots are filled with a
// fixed placeholder.
func Distractors(chunk, answer string, rng *rand.Rand) []string {
	lowerAnswer := strings.ToLower(answer)

	seen := make(map[string]bool)
	var candidates []string
	for _, w := range wordTokens(chunk) {
		if seen[w] {
			continue
		}
		seen[w] = true
		if utf8.RuneCountInString(w) <= 3 || strings.Contains(lowerAnswer, strings.ToLower(w)) {
			continue
		}
		candidates = append(candidates, w)
	}

	// map order is random, sort so the seeded shuffle is reproducible
	sort.Strings(candidates)
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	out := candidates[:min(numDistractors, len(candidates))]
	out = append([]string(nil), out...)
	for len(out) < numDistractors {
		out = append(out, filler)
	}
	return out
}

// wordTokens returns maximal runs of letters, digits and underscores.
func wordTokens(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.Is(unicode.Mn, r)
		if isWord {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// Assemble shuffles the answer among the distractors.
func Assemble(question, answer string, distractors []string, rng *rand.Rand) (MCQ, error) {
	if len(distractors) != numDistractors {
		return MCQ{}, fmt.Errorf("need %d distractors, got %d", numDistractors, len(distractors))
	}

	options := append(append([]string(nil), distractors...), answer)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	m := MCQ{Question: question}
	copy(m.Options[:], options)
	for i, opt := range options {
		if opt == answer {
			m.Answer = letters[i]
			break
		}
	}
	return m, nil
}
