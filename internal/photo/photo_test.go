package photo

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestEncode_DownscalesLargePhotos(t *testing.T) {
	enc := NewEncoder(200, 85, discardLogger())

	out, err := enc.Encode(context.Background(), File{Name: "casa.jpg", Data: jpegBytes(t, 400, 100)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))

	img, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestEncode_KeepsSmallPhotos(t *testing.T) {
	enc := NewEncoder(200, 85, discardLogger())

	out, err := enc.Encode(context.Background(), File{Name: "telhado.jpg", Data: jpegBytes(t, 120, 80)})
	require.NoError(t, err)

	img, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 120, 80), img.Bounds())
}

func TestEncode_TransparentPNGBecomesWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := NewEncoder(0, 0, discardLogger()).Encode(context.Background(), File{Name: "vazio.png", Data: buf.Bytes()})
	require.NoError(t, err)

	img, err := Decode(out)
	require.NoError(t, err)
	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestEncode_RejectsNonImages(t *testing.T) {
	_, err := NewEncoder(0, 0, discardLogger()).Encode(context.Background(), File{Name: "notas.txt", Data: []byte("hello")})
	require.ErrorIs(t, err, ErrNotImage)
}

func TestEncode_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEncoder(0, 0, discardLogger()).Encode(ctx, File{Name: "a.jpg", Data: jpegBytes(t, 4, 4)})
	require.ErrorIs(t, err, context.Canceled)
}

func TestEncodeAll_PreservesOrder(t *testing.T) {
	enc := NewEncoder(0, 0, discardLogger())
	files := []File{
		{Name: "a.jpg", Data: jpegBytes(t, 10, 10)},
		{Name: "b.jpg", Data: jpegBytes(t, 20, 10)},
		{Name: "c.jpg", Data: jpegBytes(t, 30, 10)},
	}

	out, err := enc.EncodeAll(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, out, 3)

	for i, want := range []int{10, 20, 30} {
		img, err := Decode(out[i])
		require.NoError(t, err)
		assert.Equal(t, want, img.Bounds().Dx())
	}
}

func TestEncodeAll_AllOrNothing(t *testing.T) {
	enc := NewEncoder(0, 0, discardLogger())
	files := []File{
		{Name: "a.jpg", Data: jpegBytes(t, 10, 10)},
		{Name: "quebrada.jpg", Data: []byte("not an image")},
	}

	out, err := enc.EncodeAll(context.Background(), files)
	require.ErrorIs(t, err, ErrNotImage)
	assert.Contains(t, err.Error(), "quebrada.jpg")
	assert.Nil(t, out)
}

func TestDecode_Invalid(t *testing.T) {
	for _, in := range []string{"", "http://example.com/a.jpg", "data:image/jpeg,abc", "data:image/jpeg;base64,!!!"} {
		_, err := Decode(in)
		assert.ErrorIs(t, err, ErrNotImage, "input %q", in)
	}
}

func TestOrient(t *testing.T) {
	// 2x1 image: red then blue.
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	src.Set(1, 0, color.RGBA{B: 255, A: 255})

	tests := []struct {
		name        string
		orientation int
		bounds      image.Rectangle
		redAt       image.Point
	}{
		{"mirror", 2, image.Rect(0, 0, 2, 1), image.Pt(1, 0)},
		{"rotate 180", 3, image.Rect(0, 0, 2, 1), image.Pt(1, 0)},
		{"rotate 90 cw", 6, image.Rect(0, 0, 1, 2), image.Pt(0, 0)},
		{"rotate 90 ccw", 8, image.Rect(0, 0, 1, 2), image.Pt(0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := orient(src, tt.orientation)
			assert.Equal(t, tt.bounds, out.Bounds())
			r, _, _, _ := out.At(tt.redAt.X, tt.redAt.Y).RGBA()
			assert.Equal(t, uint32(0xffff), r)
		})
	}
}

func TestOrientation_DefaultsWithoutExif(t *testing.T) {
	assert.Equal(t, 1, orientation(jpegBytes(t, 4, 4)))
	assert.Equal(t, 1, orientation([]byte("junk")))
}
