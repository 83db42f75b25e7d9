package watcher

import "context"

// Watcher hands new lecture videos dropped into a directory to a handler.
type Watcher interface {
	// Start blocks until ctx is done, then waits for running handlers.
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one video file.
type EventHandler func(ctx context.Context, filePath string) error
