package display

import (
	"fmt"
	"strings"

	"github.com/wbrown/tilize"
)

const (
	// ESC is the escape character that starts every control sequence.
	ESC = "\x1b"

	upperHalf = "▀"

	// Home moves the cursor to the top-left corner without clearing.
	Home = ESC + "[H"
	// Clear erases the screen and moves the cursor home.
	Clear = ESC + "[2J" + ESC + "[H"
)

// cell is one terminal character: the upper half block drawn in fg over bg.
type cell struct {
	fg, bg tilize.RGB
}

// RenderANSI renders frame as rows of upper half blocks using 24-bit color,
// two pixel rows per line. When cols is positive and smaller than the frame
// width, the frame is sampled down to cols columns, preserving aspect ratio.
// Adjacent cells with identical colors share one escape sequence.
func RenderANSI(frame *tilize.PixelBuffer, cols int) string {
	if frame == nil || frame.Width == 0 || frame.Height == 0 {
		return ""
	}
	w, h := frame.Width, frame.Height
	if cols > 0 && cols < w {
		h = max(h*cols/w, 1)
		w = cols
	}
	sample := func(x, y int) tilize.RGB {
		return frame.At(x*frame.Width/w, min(y, h-1)*frame.Height/h)
	}

	var sb strings.Builder
	row := make([]cell, w)
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			bottom := sample(x, y)
			if y+1 < h {
				bottom = sample(x, y+1)
			}
			row[x] = cell{fg: sample(x, y), bg: bottom}
		}
		writeRow(&sb, row)
	}
	return sb.String()
}

// writeRow writes a run-length encoded row followed by a reset.
func writeRow(sb *strings.Builder, row []cell) {
	count := 0
	var current cell
	for _, c := range row {
		if count > 0 && c == current {
			count++
			continue
		}
		if count > 0 {
			sb.WriteString(formatANSICode(current, count))
		}
		current, count = c, 1
	}
	if count > 0 {
		sb.WriteString(formatANSICode(current, count))
	}
	sb.WriteString(ESC + "[0m\n")
}

// formatANSICode returns the color sequence for c followed by count half
// blocks.
func formatANSICode(c cell, count int) string {
	var code strings.Builder
	fmt.Fprintf(&code, "%s[38;2;%d;%d;%d;48;2;%d;%d;%dm", ESC,
		c.fg.R, c.fg.G, c.fg.B, c.bg.R, c.bg.G, c.bg.B)
	code.WriteString(strings.Repeat(upperHalf, count))
	return code.String()
}
