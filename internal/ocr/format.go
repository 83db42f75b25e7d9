package ocr

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
	"github.com/nguyentantai21042004/lecture-flow/internal/ui"
)

// Format renders detections as a Python-style list of
// (box, text, confidence) tuples, "[]" when empty.
func Format(ds []Detection) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, d := range ds {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("([")
		for j, p := range d.Box {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "[%d, %d]", p[0], p[1])
		}
		sb.WriteString("], ")
		sb.WriteString(quote(d.Text))
		sb.WriteString(", ")
		sb.WriteString(formatFloat(d.Confidence))
		sb.WriteByte(')')
	}
	sb.WriteByte(']')
	return sb.String()
}

// quote mimics Python's repr for str: single quotes unless the text
// contains a single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var sb strings.Builder
	sb.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == rune(q):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// RecognizeAll runs engine over frames in order and returns one formatted
// line per frame. A frame that fails with a recoverable error is logged and
// recorded as "[]".
func RecognizeAll(ctx context.Context, engine Engine, frames []string, log logger.Logger, progress io.Writer) ([]string, error) {
	bar := ui.NewBar(progress, len(frames), "Performing OCR")
	defer bar.Finish()

	lines := make([]string, 0, len(frames))
	for _, frame := range frames {
		_ = bar.Add(1)

		ds, err := engine.Recognize(ctx, frame)
		if err != nil {
			if !stageerr.IsRecoverable(err) || ctx.Err() != nil {
				return nil, fmt.Errorf("ocr %s: %w", frame, err)
			}
			log.Warn(ctx, "OCR failed for %s, skipping: %v", frame, err)
			ds = nil
		}
		lines = append(lines, Format(ds))
	}
	return lines, nil
}
