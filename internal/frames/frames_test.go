package frames

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand/v2"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
)

func noise(w, h int, seed uint64) *image.RGBA {
	r := rand.New(rand.NewPCG(seed, seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(r.IntN(256))
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// patch copies src and overwrites the top fraction of rows with fresh noise.
func patch(src *image.RGBA, frac float64, seed uint64) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(b)
	copy(out.Pix, src.Pix)
	fresh := noise(b.Dx(), b.Dy(), seed)
	rows := int(float64(b.Dy()) * frac)
	for y := 0; y < rows; y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, fresh.At(x, y))
		}
	}
	return out
}

func TestSSIM(t *testing.T) {
	a := toGray(noise(64, 64, 1), 0)
	b := toGray(noise(64, 64, 2), 0)

	same, err := SSIM(a, a)
	if err != nil {
		t.Fatalf("SSIM() error = %v", err)
	}
	if same < 0.9999 {
		t.Errorf("SSIM(identical) = %v, want 1", same)
	}

	diff, err := SSIM(a, b)
	if err != nil {
		t.Fatalf("SSIM() error = %v", err)
	}
	if diff >= 0.9 {
		t.Errorf("SSIM(independent noise) = %v, want < 0.9", diff)
	}

	partial, err := SSIM(a, toGray(patch(noise(64, 64, 1), 0.3, 9), 0))
	if err != nil {
		t.Fatalf("SSIM() error = %v", err)
	}
	if partial >= 0.9 || partial <= diff {
		t.Errorf("SSIM(30%% changed) = %v, want between %v and 0.9", partial, diff)
	}
}

func TestSSIMErrors(t *testing.T) {
	small := image.NewGray(image.Rect(0, 0, 5, 5))
	if _, err := SSIM(small, small); err == nil {
		t.Error("SSIM() should reject images smaller than the window")
	}
	a := image.NewGray(image.Rect(0, 0, 10, 10))
	b := image.NewGray(image.Rect(0, 0, 10, 12))
	if _, err := SSIM(a, b); err == nil {
		t.Error("SSIM() should reject images of different sizes")
	}
}

func TestToGrayDownscale(t *testing.T) {
	g := toGray(noise(200, 100, 3), 50)
	if g.Bounds().Dx() != 50 || g.Bounds().Dy() != 25 {
		t.Errorf("toGray() size = %v, want 50x25", g.Bounds().Size())
	}
	g = toGray(noise(40, 20, 3), 50)
	if g.Bounds().Dx() != 40 {
		t.Errorf("toGray() should not upscale, got width %d", g.Bounds().Dx())
	}
}

func TestDeduplicator(t *testing.T) {
	a := noise(64, 64, 1)
	b := noise(64, 64, 2)

	d := NewDeduplicator(0.9, 640)
	steps := []struct {
		img  image.Image
		want bool
	}{
		{a, true},
		{a, false},
		{b, true},
		{b, false},
		{a, true},
	}
	for i, s := range steps {
		keep, _, err := d.Keep(s.img)
		if err != nil {
			t.Fatalf("Keep() step %d error = %v", i, err)
		}
		if keep != s.want {
			t.Errorf("Keep() step %d = %v, want %v", i, keep, s.want)
		}
	}
}

type fakeSampler struct {
	images []image.Image
}

func (f *fakeSampler) SampleFrames(ctx context.Context, videoPath, dir string, fps float64) ([]string, error) {
	var out []string
	for i, img := range f.images {
		p := filepath.Join(dir, "sample_"+string(rune('a'+i))+".jpg")
		if err := encodeJPEG(p, img, 95); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func TestExtract(t *testing.T) {
	a := noise(64, 64, 1)
	b := noise(64, 64, 2)
	outDir := filepath.Join(t.TempDir(), "frames")

	// stale output from an earlier run must not survive
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "frame_7.jpg"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.FramesConfig{FPS: 1, Threshold: 0.9, CompareWidth: 640, JPEGQuality: 90}
	e := New(cfg, &fakeSampler{images: []image.Image{a, a, b}}, logger.NewNop(), nil)

	got, err := e.Extract(context.Background(), "lecture.mp4", outDir)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := []string{filepath.Join(outDir, "frame_0.jpg"), filepath.Join(outDir, "frame_1.jpg")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %v, want %v", got, want)
	}
	for _, p := range want {
		f, err := os.Open(p)
		if err != nil {
			t.Fatalf("open %s: %v", p, err)
		}
		if _, err := jpeg.Decode(f); err != nil {
			t.Errorf("decode %s: %v", p, err)
		}
		f.Close()
	}
	if _, err := os.Stat(filepath.Join(outDir, "frame_7.jpg")); !os.IsNotExist(err) {
		t.Error("stale frame_7.jpg should be removed")
	}
}

func TestFrameList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.txt")
	frames := []string{"frames/frame_0.jpg", "frames/frame_1.jpg"}
	if err := WriteList(path, frames); err != nil {
		t.Fatalf("WriteList() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "frames/frame_0.jpg\nframes/frame_1.jpg" {
		t.Errorf("file content = %q", data)
	}

	got, err := ReadList(path)
	if err != nil {
		t.Fatalf("ReadList() error = %v", err)
	}
	if !reflect.DeepEqual(got, frames) {
		t.Errorf("ReadList() = %v, want %v", got, frames)
	}

	if err := WriteList(path, nil); err != nil {
		t.Fatal(err)
	}
	if got, _ := ReadList(path); len(got) != 0 {
		t.Errorf("ReadList(empty) = %v, want none", got)
	}
}
