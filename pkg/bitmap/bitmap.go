// Package bitmap converts raster images into the packed monochrome grid
// the engraver firmware consumes.
package bitmap

import (
	"image"
	"image/color"
	"math/bits"

	"github.com/pkg/errors"
)

// Grid dimensions fixed by the device EEPROM layout.
const (
	Width  = 512
	Height = 512

	// PackedSize is Width*Height/8: one bit per pixel.
	PackedSize = Width * Height / 8

	rowBytes = Width / 8
)

var (
	ErrInvalidImage       = errors.New("source image has no pixels")
	ErrInvalidPayloadSize = errors.Errorf("payload must be exactly %d bytes", PackedSize)
)

// Mono is a 512x512 monochrome grid packed one bit per pixel, row-major,
// most significant bit first: x=0 maps to bit 7 of a row's first byte.
// A set bit means the engraver burns that pixel.
type Mono struct {
	pix []byte
}

// NewMono returns an all-clear grid: nothing burns.
func NewMono() *Mono {
	return &Mono{pix: make([]byte, PackedSize)}
}

// Unpack copies a raw packed payload into a grid. The payload length must
// match PackedSize exactly; the device cannot represent anything else.
func Unpack(raw []byte) (*Mono, error) {
	if len(raw) != PackedSize {
		return nil, errors.Wrapf(ErrInvalidPayloadSize, "got %d bytes", len(raw))
	}
	m := NewMono()
	copy(m.pix, raw)
	return m, nil
}

// Packed serializes the grid into the upload payload, always PackedSize
// bytes. The returned slice is a copy.
func (m *Mono) Packed() []byte {
	out := make([]byte, PackedSize)
	copy(out, m.pix)
	return out
}

// Set marks whether the pixel at (x, y) burns. Out-of-range coordinates
// are ignored, as with the stdlib image types.
func (m *Mono) Set(x, y int, burn bool) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	idx := y*rowBytes + x/8
	mask := byte(0x80) >> (x % 8)
	if burn {
		m.pix[idx] |= mask
	} else {
		m.pix[idx] &^= mask
	}
}

// At reports whether the pixel at (x, y) burns.
func (m *Mono) At(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return m.pix[y*rowBytes+x/8]&(byte(0x80)>>(x%8)) != 0
}

// Mirror flips the grid horizontally in place. The scan head reads rows
// in mirrored order, so uploads flip the source to come out upright.
func (m *Mono) Mirror() {
	for y := 0; y < Height; y++ {
		row := m.pix[y*rowBytes : (y+1)*rowBytes]
		for i, j := 0, rowBytes-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = bits.Reverse8(row[j]), bits.Reverse8(row[i])
		}
	}
}

// Invert toggles every pixel in place.
func (m *Mono) Invert() {
	for i, b := range m.pix {
		m.pix[i] = ^b
	}
}

// Image renders the grid for previews, burned pixels in black.
func (m *Mono) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, Width, Height))
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if !m.At(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0xFF})
			}
		}
	}
	return img
}
