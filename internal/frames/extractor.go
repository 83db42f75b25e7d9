package frames

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/lecture-flow/internal/ui"
)

func (e *implExtractor) Extract(ctx context.Context, videoPath, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}
	if err := removeOldFrames(outDir); err != nil {
		return nil, err
	}

	tmp, err := os.MkdirTemp("", "lecture-samples-*")
	if err != nil {
		return nil, fmt.Errorf("create sample dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	samples, err := e.sampler.SampleFrames(ctx, videoPath, tmp, e.cfg.FPS)
	if err != nil {
		return nil, fmt.Errorf("sample frames: %w", err)
	}
	e.logger.Info(ctx, "Sampled %d frames at %v fps", len(samples), e.cfg.FPS)

	dedup := NewDeduplicator(e.cfg.Threshold, e.cfg.CompareWidth)
	bar := ui.NewBar(e.progress, len(samples), "Selecting frames")
	defer bar.Finish()

	var kept []string
	for _, sample := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_ = bar.Add(1)

		img, err := decodeJPEG(sample)
		if err != nil {
			return nil, err
		}

		keep, score, err := dedup.Keep(img)
		if err != nil {
			return nil, fmt.Errorf("compare %s: %w", filepath.Base(sample), err)
		}
		if !keep {
			e.logger.Debug(ctx, "Dropping %s (ssim %.3f)", filepath.Base(sample), score)
			continue
		}

		dst := filepath.Join(outDir, fmt.Sprintf("frame_%d.jpg", len(kept)))
		if err := encodeJPEG(dst, img, e.cfg.JPEGQuality); err != nil {
			return nil, err
		}
		kept = append(kept, dst)
	}

	e.logger.Info(ctx, "Kept %d of %d frames", len(kept), len(samples))
	return kept, nil
}

func decodeJPEG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	img, err := jpeg.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func encodeJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// removeOldFrames deletes frame_N.jpg files left by a previous run.
func removeOldFrames(dir string) error {
	old, err := filepath.Glob(filepath.Join(dir, "frame_*.jpg"))
	if err != nil {
		return fmt.Errorf("list old frames: %w", err)
	}
	for _, f := range old {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("remove old frame: %w", err)
		}
	}
	return nil
}

// WriteList stores frame paths one per line.
func WriteList(path string, frames []string) error {
	if err := os.WriteFile(path, []byte(strings.Join(frames, "\n")), 0644); err != nil {
		return fmt.Errorf("write frame list: %w", err)
	}
	return nil
}

// ReadList loads a frame list written by WriteList.
func ReadList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read frame list: %w", err)
	}
	var frames []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			frames = append(frames, line)
		}
	}
	return frames, nil
}
