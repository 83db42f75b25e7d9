package ocr

import "context"

// Detection is one recognized text region. Box holds the corners
// top-left, top-right, bottom-right, bottom-left in pixels.
type Detection struct {
	Box        [4][2]int
	Text       string
	Confidence float64
}

// Engine recognizes text in a single image.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) ([]Detection, error)
	Close() error
}
