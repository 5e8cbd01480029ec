package tilize

import "fmt"

// PatternLibrary is an atlas of two-tone template tiles. Each template pixel
// is tagged foreground when its red channel is at least ForegroundThreshold
// and background otherwise. The library is immutable after construction
// and shared read-only by all workers.
type PatternLibrary struct {
	atlas *Atlas
	masks []bool
}

// NewPatternLibrary splits a template image into tileWidth x tileHeight
// pattern tiles.
func NewPatternLibrary(template *PixelBuffer, tileWidth, tileHeight int) (*PatternLibrary, error) {
	if template == nil || template.Width <= 0 || template.Height <= 0 {
		return nil, fmt.Errorf("%w: template image has no pixels", ErrEmptyLibrary)
	}
	a, err := AtlasFromBuffer(template, tileWidth, tileHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to split pattern template: %w", err)
	}
	return PatternLibraryFromAtlas(a)
}

// PatternLibraryFromAtlas tags every pixel of an existing atlas.
func PatternLibraryFromAtlas(a *Atlas) (*PatternLibrary, error) {
	if a == nil || a.TileCount() == 0 {
		return nil, ErrEmptyLibrary
	}
	masks := make([]bool, len(a.pix))
	for i, c := range a.pix {
		masks[i] = c.IsForeground()
	}
	return &PatternLibrary{atlas: a, masks: masks}, nil
}

// patternLibraryFromMasks rebuilds a library from foreground flags, painting
// foreground white and background black.
func patternLibraryFromMasks(tileWidth, tileHeight, tilesX, tilesY int, masks []bool) (*PatternLibrary, error) {
	a, err := NewAtlas(tileWidth, tileHeight, tilesX, tilesY, -1, -1)
	if err != nil {
		return nil, err
	}
	if a.TileCount() == 0 {
		return nil, ErrEmptyLibrary
	}
	if len(masks) != len(a.pix) {
		return nil, fmt.Errorf("%w: %d mask bits for %d pixels",
			ErrLibraryFormat, len(masks), len(a.pix))
	}
	white := RGB{0xff, 0xff, 0xff}
	for i, fg := range masks {
		if fg {
			a.pix[i] = white
		}
	}
	m := make([]bool, len(masks))
	copy(m, masks)
	return &PatternLibrary{atlas: a, masks: m}, nil
}

// Len returns the number of pattern tiles.
func (l *PatternLibrary) Len() int {
	return l.atlas.TileCount()
}

// TileWidth returns the pattern tile width in pixels.
func (l *PatternLibrary) TileWidth() int {
	return l.atlas.TileWidth
}

// TileHeight returns the pattern tile height in pixels.
func (l *PatternLibrary) TileHeight() int {
	return l.atlas.TileHeight
}

// Atlas returns the underlying template atlas. Callers must not modify it.
func (l *PatternLibrary) Atlas() *Atlas {
	return l.atlas
}

// Mask returns the foreground flags of pattern i, one per tile pixel in
// row-major order. Callers must not modify the slice.
func (l *PatternLibrary) Mask(i int) []bool {
	n := l.atlas.TileSize()
	return l.masks[i*n : (i+1)*n : (i+1)*n]
}

// Recolor returns a copy of pattern i with foreground pixels set to fg and
// background pixels set to bg.
func (l *PatternLibrary) Recolor(i int, fg, bg RGB) *PixelBuffer {
	out := &PixelBuffer{
		Width:  l.atlas.TileWidth,
		Height: l.atlas.TileHeight,
		Pix:    make([]RGB, l.atlas.TileSize()),
	}
	for j, isFg := range l.Mask(i) {
		if isFg {
			out.Pix[j] = fg
		} else {
			out.Pix[j] = bg
		}
	}
	return out
}
