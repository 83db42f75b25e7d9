package frames

import "image"

// Deduplicator keeps a frame only when it differs enough from the last kept one.
type Deduplicator struct {
	threshold    float64
	compareWidth int
	last         *image.Gray
}

// NewDeduplicator returns a Deduplicator that drops frames scoring at least
// threshold against the last kept frame, compared at compareWidth pixels wide.
func NewDeduplicator(threshold float64, compareWidth int) *Deduplicator {
	return &Deduplicator{threshold: threshold, compareWidth: compareWidth}
}

// Keep reports whether img should be kept along with its similarity to the
// previously kept frame. The first frame is always kept with score 0.
func (d *Deduplicator) Keep(img image.Image) (bool, float64, error) {
	gray := toGray(img, d.compareWidth)
	if d.last == nil {
		d.last = gray
		return true, 0, nil
	}

	score, err := SSIM(d.last, gray)
	if err != nil {
		return false, 0, err
	}
	if score >= d.threshold {
		return false, score, nil
	}
	d.last = gray
	return true, score, nil
}
