package cache

import "context"

// Cache decides whether a stage output on disk is still valid.
type Cache interface {
	// Hit reports whether outputPath can be reused for the given content key.
	Hit(ctx context.Context, stage, outputPath, key string) (bool, error)
	// Store records that outputPath was produced from key.
	Store(ctx context.Context, stage, outputPath, key string) error
	Close() error
}

// Mode selects how cache hits are decided.
type Mode string

const (
	// ModeHash reuses an output only when its recorded content key matches.
	ModeHash Mode = "hash"
	// ModeExists reuses any output file that exists.
	ModeExists Mode = "exists"
)
