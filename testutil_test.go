package tilize

import "testing"

var (
	black = RGB{0, 0, 0}
	white = RGB{0xff, 0xff, 0xff}
)

// bufferFromRows builds a buffer from rows of colors.
func bufferFromRows(t *testing.T, rows ...[]RGB) *PixelBuffer {
	t.Helper()
	buf, err := NewPixelBuffer(len(rows[0]), len(rows))
	if err != nil {
		t.Fatalf("Failed to allocate buffer: %v", err)
	}
	for y, row := range rows {
		for x, c := range row {
			buf.Set(x, y, c)
		}
	}
	return buf
}

// numberedBuffer gives every pixel a distinct color encoding (x, y).
func numberedBuffer(t *testing.T, w, h int) *PixelBuffer {
	t.Helper()
	buf, err := NewPixelBuffer(w, h)
	if err != nil {
		t.Fatalf("Failed to allocate buffer: %v", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf.Set(x, y, RGB{R: uint8(x), G: uint8(y), B: 7})
		}
	}
	return buf
}

// libraryFromMasks builds a library from per-pattern strings of '#'
// (foreground) and '.' (background), each tw*th characters long.
func libraryFromMasks(t *testing.T, tw, th int, patterns ...string) *PatternLibrary {
	t.Helper()
	masks := make([]bool, 0, len(patterns)*tw*th)
	for _, p := range patterns {
		if len(p) != tw*th {
			t.Fatalf("Pattern %q has %d pixels, want %d", p, len(p), tw*th)
		}
		for _, ch := range p {
			masks = append(masks, ch == '#')
		}
	}
	// One pattern per row of the grid keeps the mask order trivial.
	lib, err := patternLibraryFromMasks(tw, th, 1, len(patterns), masks)
	if err != nil {
		t.Fatalf("Failed to build library: %v", err)
	}
	return lib
}

func mustPalette(t *testing.T, colors []RGB, fg, bg *int) *Palette {
	t.Helper()
	p, err := NewPalette(colors, fg, bg)
	if err != nil {
		t.Fatalf("Failed to build palette: %v", err)
	}
	return p
}

func intPtr(v int) *int {
	return &v
}
