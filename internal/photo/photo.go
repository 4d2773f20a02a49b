// Package photo converts uploaded inspection photos into the data URL payload
// stored on damage entries, and decodes them back for document rendering.
package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // registered decoders for uploads
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

const (
	dataURLPrefix  = "data:image/jpeg;base64,"
	defaultQuality = 85
	defaultMaxDim  = 1600
)

// ErrNotImage is returned when an upload cannot be decoded as an image.
var ErrNotImage = errors.New("not a supported image")

// File is one uploaded image.
type File struct {
	Name string
	Data []byte
}

// Encoder normalizes uploads to upright JPEGs bounded by a maximum dimension.
type Encoder struct {
	maxDimension int
	quality      int
	logger       *slog.Logger
}

// NewEncoder creates an Encoder. Non-positive values select the defaults.
func NewEncoder(maxDimension, quality int, logger *slog.Logger) *Encoder {
	if maxDimension <= 0 {
		maxDimension = defaultMaxDim
	}
	if quality <= 0 || quality > 100 {
		quality = defaultQuality
	}
	return &Encoder{maxDimension: maxDimension, quality: quality, logger: logger}
}

// EncodeAll converts every file concurrently and returns the data URLs in
// input order. Either all files convert or none are returned.
func (e *Encoder) EncodeAll(ctx context.Context, files []File) ([]string, error) {
	out := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			encoded, err := e.Encode(gctx, f)
			if err != nil {
				return fmt.Errorf("encode %q: %w", f.Name, err)
			}
			out[i] = encoded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Encode converts one upload into a JPEG data URL, applying its EXIF
// orientation and scaling it down to fit the maximum dimension.
func (e *Encoder) Encode(ctx context.Context, f File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	if o := orientation(f.Data); o != 1 {
		img = orient(img, o)
		e.logger.Debug("applied photo orientation", "file", f.Name, "orientation", o)
	}

	img = flatten(img, e.maxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode parses a data URL produced by Encode (or any base64 image data URL).
func Decode(dataURL string) (image.Image, error) {
	comma := strings.IndexByte(dataURL, ',')
	if !strings.HasPrefix(dataURL, "data:") || comma < 0 || !strings.Contains(dataURL[:comma], ";base64") {
		return nil, fmt.Errorf("%w: not a base64 data URL", ErrNotImage)
	}
	raw, err := base64.StdEncoding.DecodeString(dataURL[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return img, nil
}

// orientation reads the EXIF orientation tag, defaulting to 1 (upright).
func orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// orient applies an EXIF orientation (2-8) so the result displays upright.
func orient(img image.Image, o int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	// Orientations 5-8 swap width and height.
	dw, dh := w, h
	if o >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch o {
			case 2:
				dx, dy = w-1-x, y
			case 3:
				dx, dy = w-1-x, h-1-y
			case 4:
				dx, dy = x, h-1-y
			case 5:
				dx, dy = y, x
			case 6:
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8:
				dx, dy = y, w-1-x
			default:
				dx, dy = x, y
			}
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// flatten scales img to fit within maxDim, preserving aspect ratio, and
// composites it over white so transparent uploads do not turn black in JPEG.
func flatten(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxDim || h > maxDim {
		scale := min(float64(maxDim)/float64(w), float64(maxDim)/float64(h))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
