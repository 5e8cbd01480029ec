// Package config loads, validates and saves tilize configuration files.
//
// A configuration names the pattern template, the tile size and the palette.
// Files ending in .yaml or .yml are read as YAML, anything else as JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wbrown/tilize"
)

// ErrInvalid is returned for configurations that fail validation.
var ErrInvalid = errors.New("invalid configuration")

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("rgbhex", validateRGBHex)
	validate.RegisterStructValidation(validateIndices, Config{})
}

func validateRGBHex(fl validator.FieldLevel) bool {
	_, err := tilize.ParseHex(fl.Field().String())
	return err == nil
}

func validateIndices(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	check := func(idx *int, field string) {
		if idx != nil && (*idx < 0 || *idx >= len(c.Colors)) {
			sl.ReportError(*idx, field, field, "colorindex", "")
		}
	}
	check(c.BackgroundColorIndex, "BackgroundColorIndex")
	check(c.ForegroundColorIndex, "ForegroundColorIndex")
}

// Config is the on-disk configuration.
type Config struct {
	// PatternPath is the pattern template image or compiled library. A
	// relative path is resolved against the directory of the config file.
	PatternPath string `json:"pattern_path" yaml:"pattern_path" validate:"required"`

	TileWidth  int `json:"tile_width" yaml:"tile_width" validate:"min=1,max=4096"`
	TileHeight int `json:"tile_height" yaml:"tile_height" validate:"min=1,max=4096"`

	// Colors are hex rrggbb values with an optional leading '#'.
	Colors []string `json:"colors" yaml:"colors" validate:"min=1,dive,rgbhex"`

	// Absent indices search the whole palette for that role.
	BackgroundColorIndex *int `json:"background_color_index,omitempty" yaml:"background_color_index,omitempty"`
	ForegroundColorIndex *int `json:"foreground_color_index,omitempty" yaml:"foreground_color_index,omitempty"`

	// dir is the directory the config was loaded from.
	dir string
}

// Default returns a black and white palette with 8x8 tiles.
func Default() *Config {
	return &Config{
		PatternPath: "patterns.png",
		TileWidth:   8,
		TileHeight:  8,
		Colors:      []string{"000000", "ffffff"},
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	c, err := Parse(data, isYAML(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.dir = filepath.Dir(path)
	return c, nil
}

// Parse decodes and validates a configuration held in memory.
func Parse(data []byte, asYAML bool) (*Config, error) {
	var c Config
	if asYAML {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks field ranges, color syntax and pinned indices.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Save writes the configuration to path, as YAML or JSON depending on the
// extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ResolvedPatternPath returns PatternPath, joined with the config file's
// directory when it is relative.
func (c *Config) ResolvedPatternPath() string {
	if filepath.IsAbs(c.PatternPath) || c.dir == "" {
		return c.PatternPath
	}
	return filepath.Join(c.dir, c.PatternPath)
}

// Palette builds the palette described by Colors and the pinned indices.
func (c *Config) Palette() (*tilize.Palette, error) {
	colors := make([]tilize.RGB, len(c.Colors))
	for i, s := range c.Colors {
		rgb, err := tilize.ParseHex(s)
		if err != nil {
			return nil, fmt.Errorf("color %d: %w", i, err)
		}
		colors[i] = rgb
	}
	return tilize.NewPalette(colors, c.ForegroundColorIndex, c.BackgroundColorIndex)
}

// PatternLibrary loads the configured pattern template or compiled library.
func (c *Config) PatternLibrary() (*tilize.PatternLibrary, error) {
	return tilize.LoadPatternLibrary(c.ResolvedPatternPath(), c.TileWidth, c.TileHeight)
}

// DefaultThreads returns the number of logical CPUs.
func DefaultThreads() int {
	return max(runtime.NumCPU(), 1)
}
