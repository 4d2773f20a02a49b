package document

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Fonts holds the parsed typefaces shared by composition and rasterization.
// Faces returned by Face are not safe for concurrent use; callers create
// their own.
type Fonts struct {
	byFont map[Font]*truetype.Font
}

// LoadFonts parses the embedded Go font family.
func LoadFonts() (*Fonts, error) {
	sources := map[Font][]byte{
		Regular:    goregular.TTF,
		Bold:       gobold.TTF,
		Italic:     goitalic.TTF,
		BoldItalic: gobolditalic.TTF,
	}
	f := &Fonts{byFont: make(map[Font]*truetype.Font, len(sources))}
	for k, ttf := range sources {
		parsed, err := truetype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse font %d: %w", k, err)
		}
		f.byFont[k] = parsed
	}
	return f, nil
}

// Face returns a face for font at size points rendered at dpi.
func (f *Fonts) Face(which Font, size, dpi float64) font.Face {
	return truetype.NewFace(f.byFont[which], &truetype.Options{
		Size: size,
		DPI:  dpi,
	})
}

// faceCache memoizes faces for one goroutine.
type faceCache struct {
	fonts *Fonts
	dpi   float64
	faces map[faceKey]font.Face
}

type faceKey struct {
	font Font
	size float64
}

func newFaceCache(fonts *Fonts, dpi float64) *faceCache {
	return &faceCache{fonts: fonts, dpi: dpi, faces: make(map[faceKey]font.Face)}
}

func (c *faceCache) face(which Font, size float64) font.Face {
	k := faceKey{which, size}
	if f, ok := c.faces[k]; ok {
		return f
	}
	f := c.fonts.Face(which, size, c.dpi)
	c.faces[k] = f
	return f
}

// width is the advance of s in pixels at the cache's dpi.
func (c *faceCache) width(st Style, s string) float64 {
	return float64(font.MeasureString(c.face(st.Font, st.Size), s)) / 64
}

func (c *faceCache) close() {
	for _, f := range c.faces {
		_ = f.Close()
	}
}
