package tilize

import "fmt"

// Atlas is a regular grid decomposition of an image into fixed-size tiles.
//
// All tiles live in one contiguous backing slice; tile i occupies
// pix[i*TileWidth*TileHeight : (i+1)*TileWidth*TileHeight] in row-major
// order. TotalWidth and TotalHeight record the size of the source image and
// may be smaller than TilesX*TileWidth and TilesY*TileHeight. Tile slots
// past the source edge are filled by edge clamping, see clampCopy.
type Atlas struct {
	TileWidth   int
	TileHeight  int
	TilesX      int
	TilesY      int
	TotalWidth  int
	TotalHeight int

	pix []RGB
}

// NewAtlas allocates an atlas of tilesX*tilesY zeroed tiles. A negative
// totalWidth or totalHeight means "exactly the grid size".
func NewAtlas(tileWidth, tileHeight, tilesX, tilesY, totalWidth, totalHeight int) (*Atlas, error) {
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrTileSize, tileWidth, tileHeight)
	}
	if totalWidth < 0 {
		totalWidth = tilesX * tileWidth
	}
	if totalHeight < 0 {
		totalHeight = tilesY * tileHeight
	}
	n, err := pixelCount(tilesX, tilesY, tileWidth, tileHeight)
	if err != nil {
		return nil, err
	}
	return &Atlas{
		TileWidth:   tileWidth,
		TileHeight:  tileHeight,
		TilesX:      tilesX,
		TilesY:      tilesY,
		TotalWidth:  totalWidth,
		TotalHeight: totalHeight,
		pix:         make([]RGB, n),
	}, nil
}

// AtlasFromBuffer splits buf into tileWidth x tileHeight tiles. The grid is
// ceil(width/tileWidth) by ceil(height/tileHeight); pixels of the last row
// and column of tiles that fall outside buf are edge clamped.
func AtlasFromBuffer(buf *PixelBuffer, tileWidth, tileHeight int) (*Atlas, error) {
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
		return nil, ErrEmptyImage
	}
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrTileSize, tileWidth, tileHeight)
	}
	tilesX := (buf.Width + tileWidth - 1) / tileWidth
	tilesY := (buf.Height + tileHeight - 1) / tileHeight

	a, err := NewAtlas(tileWidth, tileHeight, tilesX, tilesY, buf.Width, buf.Height)
	if err != nil {
		return nil, err
	}
	for i := 0; i < a.TileCount(); i++ {
		ox, oy := a.TileOrigin(i)
		clampCopy(a.TileAt(i), tileWidth, tileHeight, buf, ox, oy)
	}
	return a, nil
}

// ToBuffer reassembles the atlas into a TotalWidth x TotalHeight buffer.
// Tile pixels beyond the source size are dropped.
func (a *Atlas) ToBuffer() (*PixelBuffer, error) {
	out, err := NewPixelBuffer(a.TotalWidth, a.TotalHeight)
	if err != nil {
		return nil, err
	}
	for i := 0; i < a.TileCount(); i++ {
		tile := a.TileAt(i)
		ox, oy := a.TileOrigin(i)
		w := min(a.TileWidth, a.TotalWidth-ox)
		if w <= 0 {
			continue
		}
		for y := 0; y < a.TileHeight && oy+y < a.TotalHeight; y++ {
			row := tile[y*a.TileWidth : y*a.TileWidth+w]
			copy(out.Pix[(oy+y)*out.Width+ox:], row)
		}
	}
	return out, nil
}

// TileCount returns TilesX*TilesY.
func (a *Atlas) TileCount() int {
	return a.TilesX * a.TilesY
}

// TileSize returns the number of pixels in one tile.
func (a *Atlas) TileSize() int {
	return a.TileWidth * a.TileHeight
}

// TileOrigin returns the source-image coordinates of the top-left pixel of
// tile i. Tiles are numbered row by row.
func (a *Atlas) TileOrigin(i int) (x, y int) {
	return (i % a.TilesX) * a.TileWidth, (i / a.TilesX) * a.TileHeight
}

// TileAt returns the pixels of tile i as a view into the backing storage.
// Writes through the returned slice modify the atlas.
func (a *Atlas) TileAt(i int) []RGB {
	n := a.TileSize()
	return a.pix[i*n : (i+1)*n : (i+1)*n]
}

func (a *Atlas) index(tx, ty int) (int, error) {
	if tx < 0 || tx >= a.TilesX || ty < 0 || ty >= a.TilesY {
		return 0, fmt.Errorf("tile (%d,%d) outside %dx%d grid", tx, ty, a.TilesX, a.TilesY)
	}
	return ty*a.TilesX + tx, nil
}

// Tile returns a copy of the tile at grid position (tx, ty).
func (a *Atlas) Tile(tx, ty int) (*PixelBuffer, error) {
	i, err := a.index(tx, ty)
	if err != nil {
		return nil, err
	}
	out, err := NewPixelBuffer(a.TileWidth, a.TileHeight)
	if err != nil {
		return nil, err
	}
	copy(out.Pix, a.TileAt(i))
	return out, nil
}

// SetTile overwrites the tile at (tx, ty) with src. A source smaller than
// the tile is edge clamped; a larger one contributes its top-left corner.
func (a *Atlas) SetTile(tx, ty int, src *PixelBuffer) error {
	i, err := a.index(tx, ty)
	if err != nil {
		return err
	}
	if src == nil || src.Width <= 0 || src.Height <= 0 {
		return ErrEmptyImage
	}
	clampCopy(a.TileAt(i), a.TileWidth, a.TileHeight, src, 0, 0)
	return nil
}

// clampCopy fills a dstW x dstH tile with src pixels starting at (ox, oy).
// Coordinates past the right or bottom edge of src are clamped to the last
// valid column or row, so a pixel beyond both edges takes the bottom-right
// source pixel.
func clampCopy(dst []RGB, dstW, dstH int, src *PixelBuffer, ox, oy int) {
	lastX, lastY := src.Width-1, src.Height-1
	for y := 0; y < dstH; y++ {
		sy := min(oy+y, lastY)
		srow := src.Pix[sy*src.Width : (sy+1)*src.Width]
		drow := dst[y*dstW : (y+1)*dstW]

		// Fast path for the in-range span, then replicate the last column.
		n := 0
		if ox <= lastX {
			n = copy(drow, srow[ox:])
		}
		for x := n; x < dstW; x++ {
			drow[x] = srow[lastX]
		}
	}
}
