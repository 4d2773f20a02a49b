package document

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/couchcryptid/laudo-service/internal/photo"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// Scene is a layout with every image it references decoded, ready to draw.
type Scene struct {
	Layout     Layout
	Background image.Image // nil draws a white page
	Photos     []image.Image
}

// Prepare decodes the layout's photos.
func Prepare(ctx context.Context, layout Layout, background image.Image) (Scene, error) {
	s := Scene{Layout: layout, Background: background, Photos: make([]image.Image, len(layout.Images))}
	for i, im := range layout.Images {
		if err := ctx.Err(); err != nil {
			return Scene{}, err
		}
		decoded, err := photo.Decode(im.Source)
		if err != nil {
			return Scene{}, fmt.Errorf("decode photo %d: %w", i, err)
		}
		s.Photos[i] = decoded
	}
	return s, nil
}

// Rasterizer draws scenes onto an RGBA canvas.
type Rasterizer struct {
	fonts *Fonts
}

func NewRasterizer(fonts *Fonts) *Rasterizer {
	return &Rasterizer{fonts: fonts}
}

// Rasterize draws the scene at scale times its layout size.
func (r *Rasterizer) Rasterize(ctx context.Context, s Scene, scale float64) (image.Image, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale %v", scale)
	}
	if len(s.Photos) != len(s.Layout.Images) {
		return nil, fmt.Errorf("scene has %d photos for %d images", len(s.Photos), len(s.Layout.Images))
	}

	w := int(math.Round(s.Layout.Width * scale))
	h := int(math.Round(s.Layout.Height * scale))
	dc := gg.NewContext(w, h)

	dc.SetColor(color.White)
	dc.Clear()
	if s.Background != nil {
		dc.DrawImage(fit(s.Background, w, h, false), 0, 0)
	}

	for _, b := range s.Layout.Boxes {
		dc.DrawRoundedRectangle(b.X*scale, b.Y*scale, b.W*scale, b.H*scale, b.Radius*scale)
		dc.SetColor(b.Fill)
		if b.Stroke.A == 0 {
			dc.Fill()
			continue
		}
		dc.FillPreserve()
		dc.SetColor(b.Stroke)
		dc.SetLineWidth(scale)
		dc.Stroke()
	}

	for _, l := range s.Layout.Rules {
		dc.SetColor(l.Color)
		dc.SetLineWidth(l.Width * scale)
		dc.DrawLine(l.X1*scale, l.Y1*scale, l.X2*scale, l.Y2*scale)
		dc.Stroke()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, im := range s.Layout.Images {
		fw := int(math.Round(im.W * scale))
		fh := int(math.Round(im.H * scale))
		thumb := fit(s.Photos[i], fw, fh, true)
		tb := thumb.Bounds()
		x := int(math.Round(im.X*scale)) + (fw-tb.Dx())/2
		y := int(math.Round(im.Y*scale)) + (fh-tb.Dy())/2
		dc.DrawImage(thumb, x, y)
	}

	// Faces are rendered at the scaled resolution so glyphs stay sharp.
	faces := newFaceCache(r.fonts, DPI*scale)
	defer faces.close()
	for _, t := range s.Layout.Texts {
		dc.SetFontFace(faces.face(t.Style.Font, t.Style.Size))
		dc.SetColor(t.Style.Color)
		dc.DrawString(t.Content, t.X*scale, t.Y*scale)
	}

	return dc.Image(), nil
}

// fit scales src to w x h. With keepAspect the result fits inside the box
// and may be smaller on one axis.
func fit(src image.Image, w, h int, keepAspect bool) image.Image {
	sb := src.Bounds()
	if keepAspect && sb.Dx() > 0 && sb.Dy() > 0 {
		ratio := min(float64(w)/float64(sb.Dx()), float64(h)/float64(sb.Dy()))
		w = max(1, int(math.Round(float64(sb.Dx())*ratio)))
		h = max(1, int(math.Round(float64(sb.Dy())*ratio)))
	}
	if sb.Dx() == w && sb.Dy() == h && sb.Min == (image.Point{}) {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	return dst
}
