package processor

import "context"

// Processor runs the lecture pipeline for one video.
type Processor interface {
	// Process writes every stage artifact for videoPath into outputDir.
	Process(ctx context.Context, videoPath, outputDir string) error
}
