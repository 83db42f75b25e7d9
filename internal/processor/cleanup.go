package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// writeOutput replaces path with content through a temp file in the same
// directory so an interrupted run never leaves a truncated artifact.
func (p *implProcessor) writeOutput(ctx context.Context, path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		p.cleanupTempFile(ctx, tmpPath)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		p.cleanupTempFile(ctx, tmpPath)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		p.cleanupTempFile(ctx, tmpPath)
		return fmt.Errorf("move %s into place: %w", filepath.Base(path), err)
	}
	return nil
}

// removeStale deletes an output about to be recomputed so a failed stage
// cannot leave the previous result looking current.
func (p *implProcessor) removeStale(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	p.logger.Debug(ctx, "Removing stale output: %s", path)
	p.cleanupTempFile(ctx, path)
}

// cleanupTempFile removes a file, logs warning if fails
func (p *implProcessor) cleanupTempFile(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup file %s: %v", filePath, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up file: %s", filePath)
	}
}
