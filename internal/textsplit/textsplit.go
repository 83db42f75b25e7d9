// Package textsplit chunks text for model calls: by token budget, by
// character width and by sentence boundaries.
package textsplit

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type span struct {
	start, end int
}

// words returns the byte spans of whitespace-delimited words in text.
func words(text string) []span {
	var out []span
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, span{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, span{start, len(text)})
	}
	return out
}

// SplitTokens packs consecutive words into windows of at most maxTokens
// tokens. Each chunk is the original text from its first to its last word,
// so internal whitespace and punctuation survive. A single word larger than
// the budget becomes its own chunk.
func SplitTokens(text string, maxTokens int, counter TokenCounter) ([]string, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("token window must be positive, got %d", maxTokens)
	}

	spans := words(text)
	if len(spans) == 0 {
		return nil, nil
	}

	ws := make([]string, len(spans))
	for i, s := range spans {
		ws[i] = text[s.start:s.end]
	}
	counts, err := counter.CountTokens(ws)
	if err != nil {
		return nil, fmt.Errorf("count tokens: %w", err)
	}
	if len(counts) != len(ws) {
		return nil, fmt.Errorf("token counter returned %d counts for %d words", len(counts), len(ws))
	}

	var chunks []string
	first, used := 0, 0
	for i, n := range counts {
		if used > 0 && used+n > maxTokens {
			chunks = append(chunks, text[spans[first].start:spans[i-1].end])
			first, used = i, 0
		}
		used += n
	}
	chunks = append(chunks, text[spans[first].start:spans[len(spans)-1].end])
	return chunks, nil
}

// Wrap greedily fills lines of at most width characters without breaking
// words. Whitespace inside a line is kept as is, whitespace at line
// boundaries is dropped. A word longer than width gets a line of its own.
func Wrap(text string, width int) []string {
	if width <= 0 {
		width = 1
	}

	var lines []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		line := strings.TrimRightFunc(cur.String(), unicode.IsSpace)
		if line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
		curLen = 0
	}

	for _, run := range runs(strings.ReplaceAll(text, "\t", " ")) {
		space := isSpaceRun(run)
		if space && curLen == 0 {
			continue
		}

		n := utf8.RuneCountInString(run)
		if curLen+n <= width {
			cur.WriteString(run)
			curLen += n
			continue
		}

		if space {
			flush()
			continue
		}
		if curLen > 0 {
			flush()
		}
		cur.WriteString(run)
		curLen = n
	}
	flush()

	return lines
}

// runs splits text into alternating whitespace and non-whitespace runs.
func runs(text string) []string {
	var out []string
	start := 0
	prev := -1
	for i, r := range text {
		kind := 0
		if unicode.IsSpace(r) {
			kind = 1
		}
		if prev >= 0 && kind != prev {
			out = append(out, text[start:i])
			start = i
		}
		prev = kind
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func isSpaceRun(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

// Sentences splits text after '.', '!' or '?' followed by whitespace.
func Sentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != '.' && r != '!' && r != '?' {
			i += size
			continue
		}
		j := i + size
		k := j
		for k < len(text) {
			sr, ssize := utf8.DecodeRuneInString(text[k:])
			if !unicode.IsSpace(sr) {
				break
			}
			k += ssize
		}
		if k == j {
			i = j
			continue
		}
		out = append(out, text[start:j])
		start = k
		i = k
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

// SplitSentences joins sentences with a single space while the running
// chunk plus the next sentence stays under limit characters. Empty chunks
// are dropped.
func SplitSentences(text string, limit int) []string {
	var (
		chunks []string
		cur    string
	)
	push := func() {
		if c := strings.TrimSpace(cur); c != "" {
			chunks = append(chunks, c)
		}
	}

	for _, sent := range Sentences(text) {
		if utf8.RuneCountInString(cur)+utf8.RuneCountInString(sent) < limit {
			cur += " " + sent
			continue
		}
		push()
		cur = sent
	}
	push()

	return chunks
}
