package document

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // template formats
	_ "image/png"
	"os"
)

// TemplateSource provides the letterhead drawn behind the page.
type TemplateSource interface {
	Load(ctx context.Context) (image.Image, error)
}

// FileTemplate reads a PNG or JPEG letterhead from disk on every load, so the
// file can be replaced without a restart.
type FileTemplate struct {
	Path string
}

func (t FileTemplate) Load(_ context.Context) (image.Image, error) {
	f, err := os.Open(t.Path)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode template %s: %w", t.Path, err)
	}
	return img, nil
}

// BlankTemplate is a plain white page.
type BlankTemplate struct{}

func (BlankTemplate) Load(_ context.Context) (image.Image, error) {
	return nil, nil
}

// NewTemplateSource returns a FileTemplate for path, or BlankTemplate when
// path is empty.
func NewTemplateSource(path string) TemplateSource {
	if path == "" {
		return BlankTemplate{}
	}
	return FileTemplate{Path: path}
}
