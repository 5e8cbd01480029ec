package tilize

import "fmt"

// IndexRange is a half-open range [Min, Max) of palette indices.
type IndexRange struct {
	Min, Max int
}

// Len returns the number of indices in the range.
func (r IndexRange) Len() int {
	return r.Max - r.Min
}

// Palette is the ordered set of output colors together with the index
// ranges searched for the foreground and background roles. It is immutable
// after construction and safe for concurrent reads.
type Palette struct {
	colors []RGB
	fg     IndexRange
	bg     IndexRange
}

// NewPalette builds a palette from colors. A nil foreground or background
// index searches the whole palette for that role; a non-nil one pins the
// role to exactly that color.
func NewPalette(colors []RGB, foreground, background *int) (*Palette, error) {
	if len(colors) == 0 {
		return nil, ErrEmptyPalette
	}
	fg, err := roleRange(len(colors), foreground, "foreground")
	if err != nil {
		return nil, err
	}
	bg, err := roleRange(len(colors), background, "background")
	if err != nil {
		return nil, err
	}

	p := &Palette{colors: make([]RGB, len(colors)), fg: fg, bg: bg}
	copy(p.colors, colors)
	return p, nil
}

func roleRange(n int, fixed *int, role string) (IndexRange, error) {
	if fixed == nil {
		return IndexRange{0, n}, nil
	}
	if *fixed < 0 || *fixed >= n {
		return IndexRange{}, fmt.Errorf("%w: %s index %d, palette has %d colors",
			ErrColorIndex, role, *fixed, n)
	}
	return IndexRange{*fixed, *fixed + 1}, nil
}

// Len returns the number of colors.
func (p *Palette) Len() int {
	return len(p.colors)
}

// Color returns the color at index i.
func (p *Palette) Color(i int) RGB {
	return p.colors[i]
}

// Colors returns a copy of the palette colors.
func (p *Palette) Colors() []RGB {
	out := make([]RGB, len(p.colors))
	copy(out, p.colors)
	return out
}

// Foreground returns the index range searched for the foreground color.
func (p *Palette) Foreground() IndexRange {
	return p.fg
}

// Background returns the index range searched for the background color.
func (p *Palette) Background() IndexRange {
	return p.bg
}
