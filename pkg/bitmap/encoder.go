package bitmap

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// DefaultThreshold splits the Rec. 601 luma range: pixels at or above it
// count as white and are left unburned.
const DefaultThreshold = 128

type converter struct {
	threshold uint8
	dither    bool
}

type Option func(*converter)

// WithThreshold moves the white cutoff. 0 turns every pixel white.
func WithThreshold(threshold uint8) Option {
	return func(c *converter) {
		c.threshold = threshold
	}
}

// WithDithering trades the hard threshold for Floyd-Steinberg diffusion,
// which keeps midtone texture. The threshold is not consulted.
func WithDithering() Option {
	return func(c *converter) {
		c.dither = true
	}
}

// Convert runs the upload pipeline: scale to 512x512 (cover and crop,
// Lanczos), monochromize, mirror, invert. The result burns the dark areas
// of the source.
func Convert(src image.Image, opts ...Option) (*Mono, error) {
	c := &converter{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(c)
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrInvalidImage
	}

	gray := imaging.Grayscale(imaging.Fill(src, Width, Height, imaging.Center, imaging.Lanczos))

	m := NewMono()
	if c.dither {
		ditherInto(m, gray)
	} else {
		thresholdInto(m, gray, c.threshold)
	}

	m.Mirror()
	m.Invert()
	return m, nil
}

// Encode converts src straight to the packed upload payload.
func Encode(src image.Image, opts ...Option) ([]byte, error) {
	m, err := Convert(src, opts...)
	if err != nil {
		return nil, err
	}
	return m.Packed(), nil
}

// thresholdInto sets the white pixels; Invert later turns them into
// don't-burn bits. Grayscale output has R==G==B, so one channel is the luma.
func thresholdInto(m *Mono, gray *image.NRGBA, threshold uint8) {
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if gray.NRGBAAt(x, y).R >= threshold {
				m.Set(x, y, true)
			}
		}
	}
}

func ditherInto(m *Mono, gray *image.NRGBA) {
	pal := color.Palette{color.Black, color.White}
	dst := image.NewPaletted(gray.Bounds(), pal)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), gray, image.Point{})

	const white = 1 // index into pal
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if dst.ColorIndexAt(x, y) == white {
				m.Set(x, y, true)
			}
		}
	}
}
