package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wbrown/tilize"
)

func newPatternsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Create pattern templates and compiled pattern libraries",
	}
	cmd.AddCommand(newPatternsFontCmd(a), newPatternsCompileCmd(a))
	return cmd
}

type tileSizeFlags struct {
	width, height int
}

func (t *tileSizeFlags) add(cmd *cobra.Command) {
	cmd.Flags().IntVar(&t.width, "tile-width", 8, "Tile width in pixels")
	cmd.Flags().IntVar(&t.height, "tile-height", 8, "Tile height in pixels")
}

// resolve takes any size flag the user left unset from the configuration,
// when one can be loaded.
func (t *tileSizeFlags) resolve(a *app, cmd *cobra.Command) {
	fw, fh := cmd.Flags().Changed("tile-width"), cmd.Flags().Changed("tile-height")
	if fw && fh {
		return
	}
	cfg, err := a.loadConfig()
	if err != nil {
		tilize.Logger().Debug("using default tile size", "error", err)
		return
	}
	if !fw {
		t.width = cfg.TileWidth
	}
	if !fh {
		t.height = cfg.TileHeight
	}
}

// savePatterns writes a template image, or a compiled library for .tlib
// paths.
func savePatterns(buf *tilize.PixelBuffer, tileWidth, tileHeight int, path string) (*tilize.PatternLibrary, error) {
	lib, err := tilize.NewPatternLibrary(buf, tileWidth, tileHeight)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), tilize.LibraryExt) {
		return lib, tilize.SaveLibraryFile(path, lib)
	}
	return lib, tilize.SaveImageFile(buf, path)
}

func newPatternsFontCmd(a *app) *cobra.Command {
	var (
		size      tileSizeFlags
		fontPath  string
		runes     string
		columns   int
		points    float64
		threshold uint8
	)
	cmd := &cobra.Command{
		Use:   "font [flags] <output>",
		Short: "Render font glyphs into a pattern template",
		Long: `Render font glyphs into a pattern template.

Each glyph becomes one tile: covered pixels are foreground (white), the
rest background (black). The output is an image, or a compiled library
when it ends in .tlib. Without --font the built-in Go Mono font is used.

Examples:
  tilize patterns font --tile-width 8 --tile-height 16 glyphs.png
  tilize patterns font --font PxPlus_IBM_VGA.ttf --runes " ░▒▓█▀▄" shades.tlib`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size.resolve(a, cmd)
			ttf, err := tilize.DefaultFont()
			if fontPath != "" {
				ttf, err = tilize.LoadFont(fontPath)
			}
			if err != nil {
				return err
			}
			rs := tilize.DefaultRunes()
			if runes != "" {
				rs = []rune(runes)
			}
			buf, err := tilize.RenderFontTemplate(ttf, rs, tilize.FontTemplateOptions{
				TileWidth:  size.width,
				TileHeight: size.height,
				Columns:    columns,
				Size:       points,
				Threshold:  &threshold,
			})
			if err != nil {
				return err
			}
			lib, err := savePatterns(buf, size.width, size.height, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Wrote %d patterns (%dx%d) to %s\n",
				lib.Len(), size.width, size.height, args[0])
			return nil
		},
	}
	size.add(cmd)
	f := cmd.Flags()
	f.StringVar(&fontPath, "font", "", "TrueType font file (default: Go Mono)")
	f.StringVar(&runes, "runes", "", "Characters to render (default: printable ASCII and block elements)")
	f.IntVar(&columns, "columns", 16, "Glyph tiles per template row")
	f.Float64Var(&points, "size", 0, "Font size in points (default: tile height)")
	f.Uint8Var(&threshold, "threshold", tilize.DefaultFontThreshold,
		"Coverage (0-255) above which a pixel is foreground; 0 keeps every touched pixel")
	return cmd
}

func newPatternsCompileCmd(a *app) *cobra.Command {
	var size tileSizeFlags
	cmd := &cobra.Command{
		Use:   "compile [flags] <template> <output.tlib>",
		Short: "Compile a pattern template image into a library file",
		Long: `Compile a pattern template image into a library file.

The library stores the foreground masks of every tile and loads without
decoding an image. Tile size defaults to the configuration's.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size.resolve(a, cmd)
			buf, err := tilize.LoadImageFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to load pattern template: %w", err)
			}
			out := args[1]
			if !strings.EqualFold(filepath.Ext(out), tilize.LibraryExt) {
				out += tilize.LibraryExt
			}
			lib, err := savePatterns(buf, size.width, size.height, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Compiled %d patterns (%dx%d) to %s\n",
				lib.Len(), size.width, size.height, out)
			return nil
		},
	}
	size.add(cmd)
	return cmd
}
