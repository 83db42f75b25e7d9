package executor

import "context"

// Executor runs external tools such as ffmpeg, whisper-cli and tesseract.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	// LookPath reports the resolved path of a binary, or an error when it is not installed.
	LookPath(name string) (string, error)
}
