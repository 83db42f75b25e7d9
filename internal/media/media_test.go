package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/mocks"
)

func testConfig() config.FFmpegConfig {
	return config.FFmpegConfig{BinaryPath: "ffmpeg", ProbePath: "ffprobe", AudioSampleRate: 16000}
}

func TestExtractAudio(t *testing.T) {
	exec := &mocks.MockExecutor{}
	m := New(testConfig(), exec, logger.NewNop())

	if err := m.ExtractAudio(context.Background(), "in.mp4", "out/audio.wav"); err != nil {
		t.Fatalf("ExtractAudio() error = %v", err)
	}
	if len(exec.Calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(exec.Calls))
	}
	got := strings.Join(exec.Calls[0].Args, " ")
	want := "-i in.mp4 -vn -ar 16000 -ac 1 -c:a pcm_s16le -threads 0 -y out/audio.wav"
	if got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestExtractAudioError(t *testing.T) {
	exec := &mocks.MockExecutor{Run: func(string, []string) (string, error) {
		return "", errors.New("no audio stream")
	}}
	m := New(testConfig(), exec, logger.NewNop())
	if err := m.ExtractAudio(context.Background(), "in.mp4", "a.wav"); err == nil {
		t.Error("ExtractAudio() should fail when ffmpeg fails")
	}
}

func TestSampleFrames(t *testing.T) {
	dir := t.TempDir()
	exec := &mocks.MockExecutor{Run: func(name string, args []string) (string, error) {
		for _, n := range []string{"sample_000002.jpg", "sample_000001.jpg", "sample_000010.jpg"} {
			if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644); err != nil {
				return "", err
			}
		}
		return "", nil
	}}
	m := New(testConfig(), exec, logger.NewNop())

	got, err := m.SampleFrames(context.Background(), "in.mp4", dir, 0.5)
	if err != nil {
		t.Fatalf("SampleFrames() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "sample_000001.jpg"),
		filepath.Join(dir, "sample_000002.jpg"),
		filepath.Join(dir, "sample_000010.jpg"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SampleFrames() = %v, want %v", got, want)
	}
	if args := strings.Join(exec.Calls[0].Args, " "); !strings.Contains(args, "-vf fps=0.5") {
		t.Errorf("args = %q, want fps filter", args)
	}

	if _, err := m.SampleFrames(context.Background(), "in.mp4", dir, 0); err == nil {
		t.Error("SampleFrames() should reject fps 0")
	}
}

func TestProbe(t *testing.T) {
	out := `{"streams":[{"codec_type":"audio"},{"codec_type":"video","width":1280,"height":720,"avg_frame_rate":"30000/1001"}],
		"format":{"duration":"61.5","format_name":"mov,mp4"}}`
	exec := &mocks.MockExecutor{Run: func(string, []string) (string, error) { return out, nil }}
	m := New(testConfig(), exec, logger.NewNop())

	info, err := m.Probe(context.Background(), "in.mp4")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.Width != 1280 || info.Height != 720 {
		t.Errorf("size = %dx%d, want 1280x720", info.Width, info.Height)
	}
	if info.Duration != 61.5 {
		t.Errorf("Duration = %v, want 61.5", info.Duration)
	}
	if info.FrameRate < 29.9 || info.FrameRate > 30 {
		t.Errorf("FrameRate = %v, want ~29.97", info.FrameRate)
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"25/1", 25},
		{"24", 24},
		{"0/0", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseRate(tt.in); got != tt.want {
			t.Errorf("parseRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAvailable(t *testing.T) {
	exec := &mocks.MockExecutor{}
	if err := New(testConfig(), exec, logger.NewNop()).Available(); err != nil {
		t.Errorf("Available() error = %v", err)
	}

	exec.Missing = map[string]bool{"ffprobe": true}
	if err := New(testConfig(), exec, logger.NewNop()).Available(); err == nil {
		t.Error("Available() should fail when ffprobe is missing")
	}
}
