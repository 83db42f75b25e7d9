package frames

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

const (
	winSize   = 7
	k1        = 0.01
	k2        = 0.03
	dataRange = 255.0
)

// toGray converts img to 8-bit luma, downscaling to maxWidth when it is wider.
// maxWidth <= 0 keeps the original size.
func toGray(img image.Image, maxWidth int) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth > 0 && w > maxWidth {
		h = h * maxWidth / w
		if h < 1 {
			h = 1
		}
		w = maxWidth
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SSIM computes the mean structural similarity of two equally sized
// grayscale images over every 7x7 window that fits inside them, using
// sample (co)variances.
func SSIM(a, b *image.Gray) (float64, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return 0, fmt.Errorf("image sizes differ: %dx%d vs %dx%d", ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}
	w, h := ab.Dx(), ab.Dy()
	if w < winSize || h < winSize {
		return 0, fmt.Errorf("image %dx%d smaller than %dx%d window", w, h, winSize, winSize)
	}

	// integral images of x, y, x*x, y*y, x*y with a zero first row and column
	stride := w + 1
	sx := make([]float64, stride*(h+1))
	sy := make([]float64, stride*(h+1))
	sxx := make([]float64, stride*(h+1))
	syy := make([]float64, stride*(h+1))
	sxy := make([]float64, stride*(h+1))

	for y := 0; y < h; y++ {
		var rx, ry, rxx, ryy, rxy float64
		for x := 0; x < w; x++ {
			px := float64(a.GrayAt(ab.Min.X+x, ab.Min.Y+y).Y)
			py := float64(b.GrayAt(bb.Min.X+x, bb.Min.Y+y).Y)
			rx += px
			ry += py
			rxx += px * px
			ryy += py * py
			rxy += px * py

			i := (y+1)*stride + x + 1
			up := y*stride + x + 1
			sx[i] = sx[up] + rx
			sy[i] = sy[up] + ry
			sxx[i] = sxx[up] + rxx
			syy[i] = syy[up] + ryy
			sxy[i] = sxy[up] + rxy
		}
	}

	boxSum := func(s []float64, x, y int) float64 {
		x1, y1 := x+winSize, y+winSize
		return s[y1*stride+x1] - s[y*stride+x1] - s[y1*stride+x] + s[y*stride+x]
	}

	const np = winSize * winSize
	covNorm := float64(np) / float64(np-1)
	c1 := (k1 * dataRange) * (k1 * dataRange)
	c2 := (k2 * dataRange) * (k2 * dataRange)

	var total float64
	count := 0
	for y := 0; y+winSize <= h; y++ {
		for x := 0; x+winSize <= w; x++ {
			ux := boxSum(sx, x, y) / np
			uy := boxSum(sy, x, y) / np
			vx := covNorm * (boxSum(sxx, x, y)/np - ux*ux)
			vy := covNorm * (boxSum(syy, x, y)/np - uy*uy)
			vxy := covNorm * (boxSum(sxy, x, y)/np - ux*uy)

			num := (2*ux*uy + c1) * (2*vxy + c2)
			den := (ux*ux + uy*uy + c1) * (vx + vy + c2)
			total += num / den
			count++
		}
	}
	return total / float64(count), nil
}
