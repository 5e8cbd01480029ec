package tilize

import (
	"fmt"
	"image"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// FontTemplateOptions controls RenderFontTemplate.
type FontTemplateOptions struct {
	TileWidth  int
	TileHeight int
	// Columns is the number of glyph tiles per template row. Zero means 16.
	Columns int
	// Size is the font size in points. Zero means TileHeight.
	Size float64
	// Threshold is the glyph coverage (alpha) above which a pixel becomes
	// foreground. Nil means DefaultFontThreshold; zero makes every touched
	// pixel foreground.
	Threshold *uint8
}

// DefaultFontThreshold is a 25% coverage threshold that keeps thin strokes.
const DefaultFontThreshold uint8 = 64

// LoadFont parses a TrueType font file.
func LoadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	f, err := freetype.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return f, nil
}

// DefaultFont returns the embedded Go Mono font.
func DefaultFont() (*truetype.Font, error) {
	return freetype.ParseFont(gomono.TTF)
}

// DefaultRunes returns printable ASCII followed by the Unicode block
// elements.
func DefaultRunes() []rune {
	runes := make([]rune, 0, 128)
	for r := rune(32); r <= 126; r++ {
		runes = append(runes, r)
	}
	return append(runes,
		'▀', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█',
		'▌', '▍', '▎', '▏', '▐', '░', '▒', '▓',
		'▔', '▕', '▖', '▗', '▘', '▙', '▚', '▛', '▜', '▝', '▞', '▟',
	)
}

// RenderFontTemplate draws one glyph per tile into a two-tone template:
// covered pixels are white (foreground), everything else black. Glyphs are
// laid out row by row, Columns per row; unused cells of the last row stay
// black and so act as a solid background pattern.
func RenderFontTemplate(ttf *truetype.Font, runes []rune, opts FontTemplateOptions) (*PixelBuffer, error) {
	if len(runes) == 0 {
		return nil, fmt.Errorf("%w: no glyphs requested", ErrEmptyLibrary)
	}
	if opts.TileWidth <= 0 || opts.TileHeight <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrTileSize, opts.TileWidth, opts.TileHeight)
	}
	if opts.Columns <= 0 {
		opts.Columns = 16
	}
	if opts.Size <= 0 {
		opts.Size = float64(opts.TileHeight)
	}
	threshold := DefaultFontThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	cols := min(opts.Columns, len(runes))
	rows := (len(runes) + cols - 1) / cols

	out, err := NewPixelBuffer(cols*opts.TileWidth, rows*opts.TileHeight)
	if err != nil {
		return nil, err
	}

	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    opts.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()
	metrics := face.Metrics()
	baseline := (opts.TileHeight + metrics.Ascent.Round() - metrics.Descent.Round()) / 2

	glyph := image.NewAlpha(image.Rect(0, 0, opts.TileWidth, opts.TileHeight))
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(opts.Size)
	ctx.SetClip(glyph.Bounds())
	ctx.SetDst(glyph)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	white := RGB{0xff, 0xff, 0xff}
	for i, r := range runes {
		clear(glyph.Pix)
		x := 0
		if adv, ok := face.GlyphAdvance(r); ok {
			x = max((opts.TileWidth-adv.Round())/2, 0)
		}
		if _, err := ctx.DrawString(string(r), freetype.Pt(x, baseline)); err != nil {
			return nil, fmt.Errorf("failed to draw glyph %q: %w", r, err)
		}

		ox, oy := (i%cols)*opts.TileWidth, (i/cols)*opts.TileHeight
		for py := 0; py < opts.TileHeight; py++ {
			for px := 0; px < opts.TileWidth; px++ {
				if glyph.AlphaAt(px, py).A > threshold {
					out.Set(ox+px, oy+py, white)
				}
			}
		}
	}
	return out, nil
}
