package tilize

import (
	"errors"
	"testing"
)

func TestAtlasFromBufferEdgeClamp(t *testing.T) {
	// 5x5 source with 4x4 tiles: a 2x2 grid where the right column, bottom
	// row and corner tiles are mostly clamped.
	src := numberedBuffer(t, 5, 5)
	a, err := AtlasFromBuffer(src, 4, 4)
	if err != nil {
		t.Fatalf("AtlasFromBuffer failed: %v", err)
	}
	if a.TilesX != 2 || a.TilesY != 2 {
		t.Fatalf("Expected 2x2 grid, got %dx%d", a.TilesX, a.TilesY)
	}
	if a.TotalWidth != 5 || a.TotalHeight != 5 {
		t.Errorf("Expected total 5x5, got %dx%d", a.TotalWidth, a.TotalHeight)
	}

	for ty := 0; ty < 2; ty++ {
		for tx := 0; tx < 2; tx++ {
			tile, err := a.Tile(tx, ty)
			if err != nil {
				t.Fatalf("Tile(%d,%d) failed: %v", tx, ty, err)
			}
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					sx, sy := min(tx*4+x, 4), min(ty*4+y, 4)
					if got, want := tile.At(x, y), src.At(sx, sy); got != want {
						t.Errorf("Tile(%d,%d) pixel (%d,%d): expected %v, got %v",
							tx, ty, x, y, want, got)
					}
				}
			}
		}
	}

	// Spot-check the three clamp cases explicitly.
	right, _ := a.Tile(1, 0)
	if got := right.At(3, 2); got != src.At(4, 2) {
		t.Errorf("x out of range: expected last column %v, got %v", src.At(4, 2), got)
	}
	bottom, _ := a.Tile(0, 1)
	if got := bottom.At(2, 3); got != src.At(2, 4) {
		t.Errorf("y out of range: expected last row %v, got %v", src.At(2, 4), got)
	}
	corner, _ := a.Tile(1, 1)
	if got := corner.At(3, 3); got != src.At(4, 4) {
		t.Errorf("both out of range: expected bottom-right %v, got %v", src.At(4, 4), got)
	}
}

func TestAtlasRoundTrip(t *testing.T) {
	sizes := []struct{ w, h, tw, th int }{
		{8, 8, 4, 4},
		{5, 5, 4, 4},
		{7, 3, 2, 5},
		{1, 1, 3, 3},
		{10, 6, 1, 1},
	}
	for _, s := range sizes {
		src := numberedBuffer(t, s.w, s.h)
		a, err := AtlasFromBuffer(src, s.tw, s.th)
		if err != nil {
			t.Fatalf("AtlasFromBuffer(%dx%d, %dx%d) failed: %v", s.w, s.h, s.tw, s.th, err)
		}
		out, err := a.ToBuffer()
		if err != nil {
			t.Fatalf("ToBuffer failed: %v", err)
		}
		if !out.Equal(src) {
			t.Errorf("Round trip of %dx%d with %dx%d tiles changed the image", s.w, s.h, s.tw, s.th)
		}
	}
}

func TestAtlasSetTileClamps(t *testing.T) {
	a, err := NewAtlas(3, 3, 2, 1, -1, -1)
	if err != nil {
		t.Fatalf("NewAtlas failed: %v", err)
	}
	if a.TotalWidth != 6 || a.TotalHeight != 3 {
		t.Errorf("Expected grid-sized total 6x3, got %dx%d", a.TotalWidth, a.TotalHeight)
	}

	small := bufferFromRows(t,
		[]RGB{{1, 0, 0}, {2, 0, 0}},
		[]RGB{{3, 0, 0}, {4, 0, 0}},
	)
	if err := a.SetTile(1, 0, small); err != nil {
		t.Fatalf("SetTile failed: %v", err)
	}
	tile, _ := a.Tile(1, 0)
	want := [][]uint8{
		{1, 2, 2},
		{3, 4, 4},
		{3, 4, 4},
	}
	for y, row := range want {
		for x, r := range row {
			if got := tile.At(x, y).R; got != r {
				t.Errorf("Pixel (%d,%d): expected %d, got %d", x, y, r, got)
			}
		}
	}

	// The neighbouring tile is untouched.
	other, _ := a.Tile(0, 0)
	for _, c := range other.Pix {
		if c != black {
			t.Fatalf("SetTile wrote outside its slot: %v", c)
		}
	}
}

func TestAtlasTileIsCopy(t *testing.T) {
	a, _ := AtlasFromBuffer(numberedBuffer(t, 4, 4), 2, 2)
	tile, _ := a.Tile(0, 0)
	tile.Set(0, 0, white)
	again, _ := a.Tile(0, 0)
	if again.At(0, 0) == white {
		t.Error("Modifying a copied tile changed the atlas")
	}
}

func TestAtlasErrors(t *testing.T) {
	a, _ := AtlasFromBuffer(numberedBuffer(t, 4, 4), 2, 2)

	if _, err := a.Tile(2, 0); err == nil {
		t.Error("Expected error for tile outside grid")
	}
	if err := a.SetTile(0, -1, numberedBuffer(t, 1, 1)); err == nil {
		t.Error("Expected error for negative tile coordinate")
	}
	if err := a.SetTile(0, 0, &PixelBuffer{}); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
	if _, err := AtlasFromBuffer(numberedBuffer(t, 4, 4), 0, 2); !errors.Is(err, ErrTileSize) {
		t.Errorf("Expected ErrTileSize, got %v", err)
	}
	if _, err := AtlasFromBuffer(&PixelBuffer{}, 2, 2); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
}

func TestAtlasAllocationError(t *testing.T) {
	if _, err := NewAtlas(1<<16, 1<<16, 1<<16, 1<<16, -1, -1); !errors.Is(err, ErrAllocation) {
		t.Errorf("Expected ErrAllocation, got %v", err)
	}
	if _, err := NewPixelBuffer(-1, 4); !errors.Is(err, ErrAllocation) {
		t.Errorf("Expected ErrAllocation for negative size, got %v", err)
	}
}
