package frames

import "context"

// Sampler produces candidate frames from a video, e.g. ffmpeg at a fixed rate.
type Sampler interface {
	SampleFrames(ctx context.Context, videoPath, dir string, fps float64) ([]string, error)
}

// Extractor selects visually distinct frames of a video.
type Extractor interface {
	// Extract writes kept frames as frame_N.jpg into outDir and returns their paths in order.
	Extract(ctx context.Context, videoPath, outDir string) ([]string, error)
}
