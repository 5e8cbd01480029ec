package tilize

import (
	"fmt"
	"image"
	"image/color"
	"math/bits"
)

// MaxPixels bounds the number of pixels any single buffer or atlas may
// hold. Requests above it fail with ErrAllocation instead of panicking in
// make.
var MaxPixels = 1 << 30

// PixelBuffer is an owned rectangular array of RGB samples stored row
// major. len(Pix) is always Width*Height.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []RGB
}

// pixelCount multiplies dimensions, rejecting negative values, overflow and
// totals above MaxPixels.
func pixelCount(dims ...int) (int, error) {
	total := uint64(1)
	for _, d := range dims {
		if d < 0 {
			return 0, fmt.Errorf("%w: negative dimension %d", ErrAllocation, d)
		}
		hi, lo := bits.Mul64(total, uint64(d))
		if hi != 0 || lo > uint64(MaxPixels) {
			return 0, fmt.Errorf("%w: %v pixels exceeds limit of %d",
				ErrAllocation, dims, MaxPixels)
		}
		total = lo
	}
	return int(total), nil
}

// NewPixelBuffer allocates a zeroed (black) buffer.
func NewPixelBuffer(width, height int) (*PixelBuffer, error) {
	n, err := pixelCount(width, height)
	if err != nil {
		return nil, err
	}
	return &PixelBuffer{Width: width, Height: height, Pix: make([]RGB, n)}, nil
}

// PixelBufferFromImage copies any image.Image into a new buffer. Alpha is
// discarded.
func PixelBufferFromImage(img image.Image) (*PixelBuffer, error) {
	bounds := img.Bounds()
	buf, err := NewPixelBuffer(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < buf.Height; y++ {
			row := rgba.Pix[(y+bounds.Min.Y-rgba.Rect.Min.Y)*rgba.Stride:]
			off := (bounds.Min.X - rgba.Rect.Min.X) * 4
			for x := 0; x < buf.Width; x++ {
				p := row[off+x*4:]
				buf.Pix[y*buf.Width+x] = RGB{R: p[0], G: p[1], B: p[2]}
			}
		}
		return buf, nil
	}

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			buf.Pix[y*buf.Width+x] = RGBFromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return buf, nil
}

// At returns the pixel at (x, y). It panics when out of range.
func (b *PixelBuffer) At(x, y int) RGB {
	return b.Pix[y*b.Width+x]
}

// Set writes the pixel at (x, y). It panics when out of range.
func (b *PixelBuffer) Set(x, y int, c RGB) {
	b.Pix[y*b.Width+x] = c
}

// Clone returns a deep copy of the buffer.
func (b *PixelBuffer) Clone() *PixelBuffer {
	pix := make([]RGB, len(b.Pix))
	copy(pix, b.Pix)
	return &PixelBuffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Image converts the buffer to an opaque *image.RGBA for encoding.
func (b *PixelBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			c := b.Pix[y*b.Width+x]
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return img
}

// Equal reports whether two buffers have the same size and pixels.
func (b *PixelBuffer) Equal(other *PixelBuffer) bool {
	if b.Width != other.Width || b.Height != other.Height {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}
