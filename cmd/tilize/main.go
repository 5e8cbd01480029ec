// Command tilize recreates images as mosaics of two-tone patterns.
//
// Usage:
//
//	tilize [flags] <input> <output>
//	tilize batch --out-dir out/ a.png b.png ...
//	tilize watch <input> <output>
//	tilize patterns font --tile-width 8 --tile-height 16 glyphs.png
//	tilize patterns compile --tile-width 8 --tile-height 16 glyphs.png glyphs.tlib
//	tilize config init tilize.json
//
// Exit status is 0 on success or when the user cancels (no output is
// written), and 1 on any failure.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
