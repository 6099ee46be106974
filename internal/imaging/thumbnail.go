// Package imaging scales uploaded images into thumbnails.
package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/oxtoacart/bpool"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels bounds the decoded size of an original, about 160 MB as RGBA
const DefaultMaxPixels = 40_000_000

var (
	ErrInvalidWidth = errors.New("width must be positive")
	ErrTooLarge     = errors.New("image dimensions exceed the pixel limit")
)

// Source is a decoded original. One Source serves every thumbnail width.
type Source struct {
	img    image.Image
	format string
}

func (s *Source) Format() string {
	return s.format
}

func (s *Source) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// Resizer decodes an original once and produces an encoded raster of it
// scaled to a width, keeping the aspect ratio.
type Resizer interface {
	Decode(r io.Reader) (*Source, error)
	Resize(src *Source, width int) ([]byte, error)
}

// Thumbnailer is the production Resizer. It is safe for concurrent use.
type Thumbnailer struct {
	buffers     *bpool.BufferPool
	jpegQuality int
	maxPixels   int64
}

// NewThumbnailer refuses originals larger than maxPixels, DefaultMaxPixels
// when maxPixels is not positive.
func NewThumbnailer(maxPixels int) *Thumbnailer {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Thumbnailer{
		buffers:     bpool.NewBufferPool(16),
		jpegQuality: 85,
		maxPixels:   int64(maxPixels),
	}
}

// Decode reads png, jpeg, gif or webp. The header is checked against the
// pixel limit before any pixel data is allocated.
func (t *Thumbnailer) Decode(r io.Reader) (*Source, error) {
	header := t.buffers.Get()
	defer t.buffers.Put(header)

	cfg, format, err := image.DecodeConfig(io.TeeReader(r, header))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("failed to decode image: empty %dx%d %s", cfg.Width, cfg.Height, format)
	}
	if int64(cfg.Width)*int64(cfg.Height) > t.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	// header holds every byte DecodeConfig consumed, replay it before the rest
	img, format, err := image.Decode(io.MultiReader(header, r))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &Source{img: img, format: format}, nil
}

// Resize re-encodes jpeg sources as jpeg, everything else as png.
func (t *Thumbnailer) Resize(src *Source, width int) ([]byte, error) {
	if width <= 0 {
		return nil, ErrInvalidWidth
	}

	scaled := scale(src.img, width)

	buf := t.buffers.Get()
	defer t.buffers.Put(buf)

	var err error
	switch src.format {
	case "jpeg":
		err = jpeg.Encode(buf, scaled, &jpeg.Options{Quality: t.jpegQuality})
	default:
		err = png.Encode(buf, scaled)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s thumbnail: %w", src.format, err)
	}

	// buf goes back to the pool, hand out a copy
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func scale(img image.Image, width int) image.Image {
	b := img.Bounds()
	height := int(float64(b.Dy())*float64(width)/float64(b.Dx()) + 0.5)
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
