package tilize

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// LibraryExt is the file extension of compiled pattern libraries.
const LibraryExt = ".tlib"

const libraryVersion = 1

// MaxLibraryPixels bounds the total pattern pixels a decoded library may
// declare. The header is checked against it before anything is allocated.
var MaxLibraryPixels = 1 << 24

// libraryFile is the gob payload of a compiled library. Masks holds one bit
// per pattern pixel, tile after tile, least significant bit first.
type libraryFile struct {
	Version    int
	TileWidth  int
	TileHeight int
	TilesX     int
	TilesY     int
	Masks      []byte
}

// WriteLibrary stores the foreground masks of l as a zstd-compressed gob
// stream. Only the two-tone tagging survives; template colors do not.
func WriteLibrary(w io.Writer, l *PatternLibrary) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	lf := libraryFile{
		Version:    libraryVersion,
		TileWidth:  l.atlas.TileWidth,
		TileHeight: l.atlas.TileHeight,
		TilesX:     l.atlas.TilesX,
		TilesY:     l.atlas.TilesY,
		Masks:      packBits(l.masks),
	}
	if err := gob.NewEncoder(enc).Encode(&lf); err != nil {
		enc.Close()
		return fmt.Errorf("failed to encode pattern library: %w", err)
	}
	return enc.Close()
}

// ReadLibrary decodes a library written by WriteLibrary.
func ReadLibrary(r io.Reader) (*PatternLibrary, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLibraryFormat, err)
	}
	defer dec.Close()

	var lf libraryFile
	if err := gob.NewDecoder(dec).Decode(&lf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLibraryFormat, err)
	}
	if lf.Version != libraryVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrLibraryFormat, lf.Version)
	}
	n, err := pixelCount(lf.TilesX, lf.TilesY, lf.TileWidth, lf.TileHeight)
	if err != nil {
		return nil, err
	}
	if n > MaxLibraryPixels {
		return nil, fmt.Errorf("%w: library declares %d pixels, limit is %d",
			ErrAllocation, n, MaxLibraryPixels)
	}
	if len(lf.Masks) != (n+7)/8 {
		return nil, fmt.Errorf("%w: %d mask bytes for %d pixels", ErrLibraryFormat, len(lf.Masks), n)
	}
	return patternLibraryFromMasks(lf.TileWidth, lf.TileHeight, lf.TilesX, lf.TilesY,
		unpackBits(lf.Masks, n))
}

// SaveLibraryFile writes l to path.
func SaveLibraryFile(path string, l *PatternLibrary) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteLibrary(f, l)
}

// LoadLibraryFile reads a compiled library from path.
func LoadLibraryFile(path string) (*PatternLibrary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern library: %w", err)
	}
	defer f.Close()
	return ReadLibrary(f)
}

// LoadPatternLibrary loads a compiled library when path ends in LibraryExt
// and otherwise decodes path as a template image and splits it into
// tileWidth x tileHeight patterns. A compiled library must have the
// requested tile size.
func LoadPatternLibrary(path string, tileWidth, tileHeight int) (*PatternLibrary, error) {
	if strings.EqualFold(filepath.Ext(path), LibraryExt) {
		l, err := LoadLibraryFile(path)
		if err != nil {
			return nil, err
		}
		if l.TileWidth() != tileWidth || l.TileHeight() != tileHeight {
			return nil, fmt.Errorf("%w: library %s has %dx%d tiles, want %dx%d",
				ErrTileSize, path, l.TileWidth(), l.TileHeight(), tileWidth, tileHeight)
		}
		return l, nil
	}

	buf, err := LoadImageFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern template: %w", err)
	}
	return NewPatternLibrary(buf, tileWidth, tileHeight)
}

func packBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

// unpackBits expects len(data) >= (n+7)/8.
func unpackBits(data []byte, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = data[i/8]&(1<<(i%8)) != 0
	}
	return out
}
