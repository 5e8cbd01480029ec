package tilize

import (
	"image/color"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"000000", RGB{0, 0, 0}, false},
		{"ffffff", RGB{255, 255, 255}, false},
		{"#FF8000", RGB{255, 128, 0}, false},
		{" 1a2b3c ", RGB{0x1a, 0x2b, 0x3c}, false},
		{"fff", RGB{}, true},
		{"gg0000", RGB{}, true},
		{"#1234567", RGB{}, true},
		{"", RGB{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q): expected error=%v, got %v", tt.in, tt.wantErr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := RGB{0x12, 0xab, 0x07}
	if c.Hex() != "12ab07" {
		t.Errorf("Expected 12ab07, got %s", c.Hex())
	}
	if c.String() != "#12ab07" {
		t.Errorf("Expected #12ab07, got %s", c.String())
	}
	back, err := ParseHex(c.String())
	if err != nil || back != c {
		t.Errorf("Expected %v, got %v (%v)", c, back, err)
	}
}

func TestIsForeground(t *testing.T) {
	tests := []struct {
		c    RGB
		want bool
	}{
		{RGB{0x7f, 255, 255}, false},
		{RGB{0x80, 0, 0}, true},
		{RGB{255, 0, 0}, true},
		{RGB{0, 0, 0}, false},
	}
	for _, tt := range tests {
		if got := tt.c.IsForeground(); got != tt.want {
			t.Errorf("%v.IsForeground(): expected %v, got %v", tt.c, tt.want, got)
		}
	}
}

func TestDiff(t *testing.T) {
	a, b := RGB{10, 200, 30}, RGB{20, 100, 30}
	if got := a.Diff(b); got != 110 {
		t.Errorf("Expected 110, got %d", got)
	}
	if a.Diff(b) != b.Diff(a) {
		t.Error("Diff should be symmetric")
	}
	if got := black.Diff(white); got != 765 {
		t.Errorf("Expected 765, got %d", got)
	}
}

func TestRGBFromColor(t *testing.T) {
	got := RGBFromColor(color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	if got != (RGB{1, 2, 3}) {
		t.Errorf("Expected {1 2 3}, got %v", got)
	}
	r, g, b, a := RGB{0xff, 0x80, 0}.RGBA()
	if r != 0xffff || g != 0x8080 || b != 0 || a != 0xffff {
		t.Errorf("Unexpected RGBA() = %x %x %x %x", r, g, b, a)
	}
}
