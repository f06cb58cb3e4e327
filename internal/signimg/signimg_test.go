package signimg

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// leftHalf returns an image whose left half is opaque and right half transparent.
func leftHalf(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestFromImageMirrorsAlpha(t *testing.T) {
	m := FromImage(leftHalf(20, 20), 10, 10)
	if m.At(1, 5) {
		t.Fatalf("expected mirrored left edge to be empty")
	}
	if !m.At(8, 5) {
		t.Fatalf("expected mirrored right edge to be ink")
	}
	if m.At(-1, 0) || m.At(10, 0) {
		t.Fatalf("expected out of range pixels to be empty")
	}
}

func TestFromImageOpaqueUsesLuminance(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if x >= 4 {
				c = color.NRGBA{A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	m := FromImage(img, 8, 8)
	if !m.At(0, 0) || m.At(7, 0) {
		t.Fatalf("expected dark right half to appear mirrored on the left")
	}
}

func TestRender(t *testing.T) {
	m := Mask{Width: 2, Height: 3, ink: []bool{true, false, true, true, false, true}}
	got := Render(m)
	want := "█▄\n ▀"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestLoadAndCache(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "A.png"), leftHalf(16, 16))

	m, err := Load(dir, 'A', 8, 8)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Width != 8 || m.Height != 8 {
		t.Fatalf("unexpected size %dx%d", m.Width, m.Height)
	}
	if _, err := Load(dir, 'B', 8, 8); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
	if !Exists(dir, 'A') || Exists(dir, 'B') {
		t.Fatalf("unexpected Exists results")
	}

	cache := NewCache(dir, 8, 8)
	s, err := cache.Get('A')
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if strings.Count(s, "\n") != 3 {
		t.Fatalf("expected 4 rendered lines, got %q", s)
	}
	if _, err := cache.Get('B'); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected cached miss, got %v", err)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "C.png"), []byte("not a png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(dir, 'C', 8, 8); err == nil || errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
