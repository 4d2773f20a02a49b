// Package pdf wraps a captured page image into a single-page A4 PDF.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/go-pdf/fpdf"
	"github.com/jonboulle/clockwork"
)

// A4 portrait in millimeters.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
)

// Packager embeds a page image as the only page of a PDF document.
type Packager struct {
	quality int
	creator string
	clock   clockwork.Clock
}

// NewPackager creates a Packager encoding pages as JPEG at quality.
func NewPackager(quality int, creator string, clock clockwork.Clock) *Packager {
	return &Packager{quality: quality, creator: creator, clock: clock}
}

// Package encodes page as JPEG and places it over the full A4 page.
func (p *Packager) Package(ctx context.Context, page image.Image, title string) ([]byte, error) {
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, page, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("encode page jpeg: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle(title, true)
	doc.SetCreator(p.creator, true)
	doc.SetCreationDate(p.clock.Now())
	doc.AddPage()

	opts := fpdf.ImageOptions{ImageType: "JPG"}
	doc.RegisterImageOptionsReader("page", opts, &jpg)
	doc.ImageOptions("page", 0, 0, pageWidthMM, pageHeightMM, false, opts, 0, "")

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return out.Bytes(), nil
}
