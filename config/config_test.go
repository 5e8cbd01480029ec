package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/tilize"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tilize.json", `{
		"pattern_path": "patterns/blocks.png",
		"tile_width": 8,
		"tile_height": 16,
		"colors": ["000000", "#FF8000", "ffffff"],
		"background_color_index": 0
	}`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, c.TileWidth)
	assert.Equal(t, 16, c.TileHeight)
	assert.Equal(t, filepath.Join(dir, "patterns", "blocks.png"), c.ResolvedPatternPath())
	require.NotNil(t, c.BackgroundColorIndex)
	assert.Nil(t, c.ForegroundColorIndex)

	p, err := c.Palette()
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, tilize.RGB{R: 0xff, G: 0x80, B: 0x00}, p.Color(1))
	assert.Equal(t, tilize.IndexRange{Min: 0, Max: 1}, p.Background())
	assert.Equal(t, tilize.IndexRange{Min: 0, Max: 3}, p.Foreground())
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tilize.yaml", `
pattern_path: /abs/patterns.tlib
tile_width: 4
tile_height: 4
colors:
  - "112233"
  - "445566"
foreground_color_index: 1
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/abs/patterns.tlib", c.ResolvedPatternPath())
	require.NotNil(t, c.ForegroundColorIndex)
	assert.Equal(t, 1, *c.ForegroundColorIndex)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing pattern", `{"tile_width": 8, "tile_height": 8, "colors": ["000000"]}`},
		{"zero tile width", `{"pattern_path": "p.png", "tile_width": 0, "tile_height": 8, "colors": ["000000"]}`},
		{"no colors", `{"pattern_path": "p.png", "tile_width": 8, "tile_height": 8, "colors": []}`},
		{"bad color", `{"pattern_path": "p.png", "tile_width": 8, "tile_height": 8, "colors": ["zz0000"]}`},
		{"short color", `{"pattern_path": "p.png", "tile_width": 8, "tile_height": 8, "colors": ["fff"]}`},
		{"bg out of range", `{"pattern_path": "p.png", "tile_width": 8, "tile_height": 8, "colors": ["000000"], "background_color_index": 1}`},
		{"fg negative", `{"pattern_path": "p.png", "tile_width": 8, "tile_height": 8, "colors": ["000000"], "foreground_color_index": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "c.json", tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.json", `{not json`)
	_, err := Load(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	fg := 1
	orig := Default()
	orig.ForegroundColorIndex = &fg

	for _, name := range []string{"out.json", "out.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, orig.Save(path))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, orig.PatternPath, got.PatternPath)
			assert.Equal(t, orig.TileWidth, got.TileWidth)
			assert.Equal(t, orig.TileHeight, got.TileHeight)
			assert.Equal(t, orig.Colors, got.Colors)
			require.NotNil(t, got.ForegroundColorIndex)
			assert.Equal(t, 1, *got.ForegroundColorIndex)
			assert.Nil(t, got.BackgroundColorIndex)
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	p, err := Default().Palette()
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
}

func TestDefaultThreads(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultThreads(), 1)
}
