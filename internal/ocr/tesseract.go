package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
	"github.com/nguyentantai21042004/lecture-flow/pkg/executor"
)

type tesseractEngine struct {
	cfg      config.OCRConfig
	executor executor.Executor
	logger   logger.Logger
}

func (e *tesseractEngine) Recognize(ctx context.Context, imagePath string) ([]Detection, error) {
	out, err := e.executor.Execute(ctx, e.cfg.BinaryPath, imagePath, "stdout", "-l", e.cfg.Language, "tsv")
	if err != nil {
		return nil, stageerr.NewRecoverable(stage, fmt.Errorf("tesseract: %w", err))
	}
	ds, err := parseTSV(out)
	if err != nil {
		return nil, stageerr.NewRecoverable(stage, fmt.Errorf("parse tesseract output: %w", err))
	}
	return ds, nil
}

func (e *tesseractEngine) Close() error { return nil }

type lineKey struct {
	page, block, par, line int
}

type lineAcc struct {
	words          []string
	x1, y1, x2, y2 int
	confSum        float64
}

// parseTSV groups tesseract's word rows (level 5) into one detection per text line.
func parseTSV(tsv string) ([]Detection, error) {
	var order []lineKey
	lines := make(map[lineKey]*lineAcc)

	rows := strings.Split(strings.TrimRight(tsv, "\n"), "\n")
	for i, row := range rows {
		if i == 0 || strings.TrimSpace(row) == "" {
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < 12 {
			return nil, fmt.Errorf("tsv row %d: want 12 columns, got %d", i, len(cols))
		}

		nums := make([]int, 10)
		for j := 0; j < 10; j++ {
			n, err := strconv.Atoi(cols[j])
			if err != nil {
				return nil, fmt.Errorf("tsv row %d column %d: %w", i, j, err)
			}
			nums[j] = n
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil {
			return nil, fmt.Errorf("tsv row %d conf: %w", i, err)
		}
		text := strings.TrimSpace(strings.Join(cols[11:], "\t"))
		if nums[0] != 5 || text == "" || conf < 0 {
			continue
		}

		key := lineKey{nums[1], nums[2], nums[3], nums[4]}
		left, top, width, height := nums[6], nums[7], nums[8], nums[9]

		acc, ok := lines[key]
		if !ok {
			acc = &lineAcc{x1: left, y1: top, x2: left + width, y2: top + height}
			lines[key] = acc
			order = append(order, key)
		}
		acc.words = append(acc.words, text)
		acc.confSum += conf
		acc.x1 = min(acc.x1, left)
		acc.y1 = min(acc.y1, top)
		acc.x2 = max(acc.x2, left+width)
		acc.y2 = max(acc.y2, top+height)
	}

	out := make([]Detection, 0, len(order))
	for _, k := range order {
		acc := lines[k]
		out = append(out, Detection{
			Box:        [4][2]int{{acc.x1, acc.y1}, {acc.x2, acc.y1}, {acc.x2, acc.y2}, {acc.x1, acc.y2}},
			Text:       strings.Join(acc.words, " "),
			Confidence: acc.confSum / float64(len(acc.words)) / 100,
		})
	}
	return out, nil
}
