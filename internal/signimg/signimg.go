// Package signimg loads reference sign images and renders them as terminal silhouettes.
package signimg

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/verte-zerg/signquiz/internal/alphabet"
)

// Default render size in pixels. Two pixel rows map to one terminal row.
const (
	DefaultWidth  = 40
	DefaultHeight = 40
)

// ErrImageNotFound is returned when a letter has no image file.
var ErrImageNotFound = errors.New("image not found")

// Mask is a scaled, mirrored silhouette of a sign image.
type Mask struct {
	Width  int
	Height int
	ink    []bool
}

// At reports whether the pixel at x, y is part of the silhouette.
func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.ink[y*m.Width+x]
}

// Path returns the image file for letter under dir.
func Path(dir string, letter alphabet.Letter) string {
	return filepath.Join(dir, letter.String()+".png")
}

// Exists reports whether letter has an image under dir.
func Exists(dir string, letter alphabet.Letter) bool {
	_, err := os.Stat(Path(dir, letter))
	return err == nil
}

// Load reads <dir>/<letter>.png, scales it to width x height and mirrors it.
func Load(dir string, letter alphabet.Letter, width, height int) (Mask, error) {
	path := Path(dir, letter)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Mask{}, fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return Mask{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			_ = cerr
		}
	}()
	src, _, err := image.Decode(f)
	if err != nil {
		return Mask{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return FromImage(src, width, height), nil
}

// FromImage scales src and builds a mirrored mask. Transparent images use the
// alpha channel; fully opaque ones treat dark pixels as the hand.
func FromImage(src image.Image, width, height int) Mask {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	opaque := true
	for i := 3; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] < 0xff {
			opaque = false
			break
		}
	}

	m := Mask{Width: width, Height: height, ink: make([]bool, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := dst.NRGBAAt(x, y)
			var on bool
			if opaque {
				lum := (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
				on = lum < 128
			} else {
				on = c.A >= 128
			}
			m.ink[y*width+(width-1-x)] = on
		}
	}
	return m
}

// Render draws the mask with half-block runes, two pixel rows per line.
func Render(m Mask) string {
	lines := make([]string, 0, (m.Height+1)/2)
	for y := 0; y < m.Height; y += 2 {
		var b strings.Builder
		for x := 0; x < m.Width; x++ {
			top, bottom := m.At(x, y), m.At(x, y+1)
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// Cache memoizes rendered images per letter.
type Cache struct {
	dir    string
	width  int
	height int
	items  map[alphabet.Letter]string
	errs   map[alphabet.Letter]error
}

// NewCache returns a cache reading from dir.
func NewCache(dir string, width, height int) *Cache {
	return &Cache{
		dir:    dir,
		width:  width,
		height: height,
		items:  map[alphabet.Letter]string{},
		errs:   map[alphabet.Letter]error{},
	}
}

// Get returns the rendered silhouette for letter.
func (c *Cache) Get(letter alphabet.Letter) (string, error) {
	if s, ok := c.items[letter]; ok {
		return s, nil
	}
	if err, ok := c.errs[letter]; ok {
		return "", err
	}
	m, err := Load(c.dir, letter, c.width, c.height)
	if err != nil {
		c.errs[letter] = err
		return "", err
	}
	s := Render(m)
	c.items[letter] = s
	return s, nil
}
