// Package document lays out the printable report page and rasterizes it.
//
// Composition is pure: the same report, engineer and time always produce the
// same Layout. Coordinates are CSS pixels on an A4 page at 96 dpi; the
// rasterizer multiplies them by the capture scale.
package document

import "image/color"

const (
	// DPI is the resolution layout coordinates are expressed in.
	DPI = 96.0
	// PageWidth and PageHeight are A4 (210x297mm) at DPI, rounded.
	PageWidth  = 794.0
	PageHeight = 1123.0
)

// Font selects one of the embedded typefaces.
type Font int

const (
	Regular Font = iota
	Bold
	Italic
	BoldItalic
)

// Style is how a run of text is drawn. Size is in points.
type Style struct {
	Font  Font
	Size  float64
	Color color.RGBA
}

// Text is a single pre-wrapped line. Y is the baseline.
type Text struct {
	X, Y    float64
	Content string
	Style   Style
}

// Rule is a straight line segment.
type Rule struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Color          color.RGBA
}

// Box is a filled and optionally stroked rounded rectangle.
type Box struct {
	X, Y, W, H float64
	Radius     float64
	Fill       color.RGBA
	Stroke     color.RGBA // zero alpha means no stroke
}

// Image is a photo placed inside a frame, scaled to fit and centered.
// Source is the photo's data URL.
type Image struct {
	X, Y, W, H float64
	Source     string
}

// Layout is a composed page. Elements draw in the order boxes, rules, images,
// texts. Overflow is set when content was cut to fit the page: a field value
// or damage description ending in an ellipsis, or damage blocks summarized by
// a "+N avarias não exibidas" note.
type Layout struct {
	Width, Height float64
	Boxes         []Box
	Rules         []Rule
	Images        []Image
	Texts         []Text
	Overflow      bool
}

// Margins of the area left blank by the letterhead template, in pixels.
var (
	MarginTop    = mm(55)
	MarginSide   = mm(20)
	MarginBottom = mm(40)
)

func mm(v float64) float64 { return v * DPI / 25.4 }

// px converts a point size to pixels at DPI.
func px(pt float64) float64 { return pt * DPI / 72 }

// Palette.
var (
	colorNavy      = color.RGBA{0x00, 0x2e, 0x6d, 0xff}
	colorOrange    = color.RGBA{0xf3, 0x92, 0x00, 0xff}
	colorOrange600 = color.RGBA{0xea, 0x58, 0x0c, 0xff}
	colorOrange400 = color.RGBA{0xfb, 0x92, 0x3c, 0xff}
	colorOrange100 = color.RGBA{0xff, 0xed, 0xd5, 0xff}
	colorOrange50  = color.RGBA{0xff, 0xf7, 0xed, 0xff}
	colorSlate900  = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
	colorSlate800  = color.RGBA{0x1e, 0x29, 0x3b, 0xff}
	colorSlate600  = color.RGBA{0x47, 0x55, 0x69, 0xff}
	colorSlate500  = color.RGBA{0x64, 0x74, 0x8b, 0xff}
	colorSlate400  = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
	colorSlate200  = color.RGBA{0xe2, 0xe8, 0xf0, 0xff}
	colorSlate100  = color.RGBA{0xf1, 0xf5, 0xf9, 0xff}
	colorSlate50   = color.RGBA{0xf8, 0xfa, 0xfc, 0xff}
)
