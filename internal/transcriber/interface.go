package transcriber

import "context"

// Transcriber converts a 16 kHz mono WAV file to plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Close() error
}
