package media

import "context"

// Media wraps the ffmpeg toolchain.
type Media interface {
	// Available fails when ffmpeg or ffprobe is not installed.
	Available() error
	Probe(ctx context.Context, videoPath string) (*Info, error)
	// ExtractAudio writes 16 kHz mono PCM WAV to outPath.
	ExtractAudio(ctx context.Context, videoPath, outPath string) error
	// SampleFrames writes fps frames per second of video as JPEGs into dir
	// and returns their paths in time order.
	SampleFrames(ctx context.Context, videoPath, dir string, fps float64) ([]string, error)
}

// Info describes the probed input video.
type Info struct {
	Path      string
	Duration  float64
	Width     int
	Height    int
	FrameRate float64
	Format    string
}
