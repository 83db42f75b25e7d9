package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

func (m *implMedia) Available() error {
	for _, bin := range []string{m.cfg.BinaryPath, m.cfg.ProbePath} {
		if _, err := m.executor.LookPath(bin); err != nil {
			return err
		}
	}
	return nil
}

type ffprobeOutput struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		CodecType    string `json:"codec_type"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Format   string `json:"format_name"`
	} `json:"format"`
}

func (m *implMedia) Probe(ctx context.Context, videoPath string) (*Info, error) {
	out, err := m.executor.Execute(ctx, m.cfg.ProbePath,
		"-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", videoPath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &Info{Path: videoPath, Format: probe.Format.Format}
	for _, s := range probe.Streams {
		if s.CodecType == "video" {
			info.Width = s.Width
			info.Height = s.Height
			info.FrameRate = parseRate(s.AvgFrameRate)
			break
		}
	}
	if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = d
	}
	return info, nil
}

// parseRate turns ffprobe's "30000/1001" into frames per second.
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func (m *implMedia) ExtractAudio(ctx context.Context, videoPath, outPath string) error {
	m.logger.Info(ctx, "Extracting audio: %s -> %s", videoPath, outPath)

	// -vn drops video, pcm_s16le at 16 kHz mono is what speech models expect
	args := []string{
		"-i", videoPath,
		"-vn",
		"-ar", strconv.Itoa(m.cfg.AudioSampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		outPath,
	}
	if _, err := m.executor.Execute(ctx, m.cfg.BinaryPath, args...); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return nil
}

func (m *implMedia) SampleFrames(ctx context.Context, videoPath, dir string, fps float64) ([]string, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", fps)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create sample dir: %w", err)
	}

	m.logger.Debug(ctx, "Sampling %s at %v fps into %s", videoPath, fps, dir)

	args := []string{
		"-i", videoPath,
		"-vf", "fps=" + strconv.FormatFloat(fps, 'f', -1, 64),
		"-q:v", "2",
		"-y",
		filepath.Join(dir, "sample_%06d.jpg"),
	}
	if _, err := m.executor.Execute(ctx, m.cfg.BinaryPath, args...); err != nil {
		return nil, fmt.Errorf("ffmpeg sample frames: %w", err)
	}

	samples, err := filepath.Glob(filepath.Join(dir, "sample_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	// zero-padded names sort in time order
	sort.Strings(samples)
	return samples, nil
}
