package tilize

import "errors"

var (
	// ErrAllocation is returned when backing storage for a buffer or atlas
	// cannot be obtained, including sizes that overflow.
	ErrAllocation = errors.New("tilize: allocation failed")

	// ErrEmptyLibrary is returned when a pattern library has no tiles.
	ErrEmptyLibrary = errors.New("tilize: pattern library is empty")

	// ErrEmptyPalette is returned when a palette has no colors.
	ErrEmptyPalette = errors.New("tilize: palette is empty")

	// ErrEmptyImage is returned for buffers with a zero dimension.
	ErrEmptyImage = errors.New("tilize: image has no pixels")

	// ErrTileSize is returned for non-positive tile dimensions or a tile
	// size that does not match the atlas it is used with.
	ErrTileSize = errors.New("tilize: invalid tile size")

	// ErrColorIndex is returned when a fixed foreground or background
	// index lies outside the palette.
	ErrColorIndex = errors.New("tilize: color index out of range")

	// ErrLibraryFormat is returned when a compiled pattern library cannot
	// be decoded.
	ErrLibraryFormat = errors.New("tilize: malformed pattern library")
)
