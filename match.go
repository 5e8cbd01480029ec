package tilize

import (
	"fmt"
	"math"
)

// MatchResult is the winning combination for one input tile.
type MatchResult struct {
	Pattern    int
	Foreground int
	Background int
	Score      uint64
}

// Matcher finds, for an input tile, the pattern and foreground/background
// palette colors that minimise the summed absolute channel difference.
// It holds no mutable state and may be shared by any number of goroutines.
type Matcher struct {
	patterns *PatternLibrary
	palette  *Palette
}

// NewMatcher pairs a pattern library with a palette.
func NewMatcher(patterns *PatternLibrary, palette *Palette) (*Matcher, error) {
	if patterns == nil || patterns.Len() == 0 {
		return nil, ErrEmptyLibrary
	}
	if palette == nil || palette.Len() == 0 {
		return nil, ErrEmptyPalette
	}
	return &Matcher{patterns: patterns, palette: palette}, nil
}

// Patterns returns the pattern library searched by the matcher.
func (m *Matcher) Patterns() *PatternLibrary {
	return m.patterns
}

// Palette returns the palette searched by the matcher.
func (m *Matcher) Palette() *Palette {
	return m.palette
}

// Score computes the difference between tile and pattern p recolored with
// palette colors fg and bg.
func (m *Matcher) Score(tile []RGB, p, fg, bg int) uint64 {
	fgColor, bgColor := m.palette.Color(fg), m.palette.Color(bg)
	var score uint64
	for i, isFg := range m.patterns.Mask(p) {
		if isFg {
			score += fgColor.Diff(tile[i])
		} else {
			score += bgColor.Diff(tile[i])
		}
	}
	return score
}

// Match searches every (pattern, foreground, background) triple, patterns
// ascending, then foreground indices, then background indices. Only a
// strictly lower score replaces the running best, so ties go to the first
// triple in that order.
//
// For a fixed pattern the score splits into a part that depends only on the
// foreground color and a part that depends only on the background color, so
// both are summed once per color and the pairs are combined afterwards. The
// result is identical to scoring every triple directly.
func (m *Matcher) Match(tile []RGB) (MatchResult, error) {
	size := m.patterns.atlas.TileSize()
	if len(tile) != size {
		return MatchResult{}, fmt.Errorf("%w: tile has %d pixels, patterns have %d",
			ErrTileSize, len(tile), size)
	}

	fgRange, bgRange := m.palette.Foreground(), m.palette.Background()
	fgCost := make([]uint64, fgRange.Len())
	bgCost := make([]uint64, bgRange.Len())

	best := MatchResult{Score: math.MaxUint64}
	for p := 0; p < m.patterns.Len(); p++ {
		clear(fgCost)
		clear(bgCost)
		for i, isFg := range m.patterns.Mask(p) {
			px := tile[i]
			if isFg {
				for c := range fgCost {
					fgCost[c] += m.palette.colors[fgRange.Min+c].Diff(px)
				}
			} else {
				for c := range bgCost {
					bgCost[c] += m.palette.colors[bgRange.Min+c].Diff(px)
				}
			}
		}

		for f, fc := range fgCost {
			for b, bc := range bgCost {
				if score := fc + bc; score < best.Score {
					best = MatchResult{
						Pattern:    p,
						Foreground: fgRange.Min + f,
						Background: bgRange.Min + b,
						Score:      score,
					}
				}
			}
		}
	}
	return best, nil
}

// Render returns the winning pattern recolored with its palette colors.
func (m *Matcher) Render(r MatchResult) *PixelBuffer {
	return m.patterns.Recolor(r.Pattern, m.palette.Color(r.Foreground), m.palette.Color(r.Background))
}

// MatchTile runs Match and renders the result.
func (m *Matcher) MatchTile(tile []RGB) (MatchResult, *PixelBuffer, error) {
	r, err := m.Match(tile)
	if err != nil {
		return MatchResult{}, nil, err
	}
	return r, m.Render(r), nil
}
