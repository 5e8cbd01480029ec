package tilize

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ForegroundThreshold is the red channel value at or above which a pattern
// pixel marks a foreground position.
const ForegroundThreshold = 0x80

// RGB represents a color in the RGB color space with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// toUint32 converts an RGB color to a 32-bit unsigned integer
func (c RGB) toUint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// rgbFromUint32 converts a 32-bit unsigned integer to an RGB color
func rgbFromUint32(v uint32) RGB {
	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}

// RGBFromColor converts a color.Color to RGB, dropping alpha.
func RGBFromColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// RGBA implements color.Color with a fully opaque alpha.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Hex formats the color as six lowercase hex digits without a leading '#'.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c RGB) String() string {
	return "#" + c.Hex()
}

// ParseHex parses a color written as "rrggbb" or "#rrggbb".
func ParseHex(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("error parsing color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("error parsing color %q: %w", s, err)
	}
	return rgbFromUint32(uint32(v)), nil
}

// IsForeground reports whether c, read as a pattern pixel, marks a
// foreground position.
func (c RGB) IsForeground() bool {
	return c.R >= ForegroundThreshold
}

// Diff returns the summed absolute per-channel difference between two
// colors.
func (c RGB) Diff(other RGB) uint64 {
	return absDiff(c.R, other.R) + absDiff(c.G, other.G) + absDiff(c.B, other.B)
}

func absDiff(a, b uint8) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}
