package tilize

import (
	"github.com/wbrown/tilize/imageutil"
)

// LoadImageFile decodes the image at path into a PixelBuffer. PNG, JPEG,
// GIF, BMP and TIFF are supported.
func LoadImageFile(path string) (*PixelBuffer, error) {
	img, err := imageutil.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return PixelBufferFromImage(img.RGBA)
}

// SaveImageFile writes buf to path, choosing the encoder from the file
// extension.
func SaveImageFile(buf *PixelBuffer, path string) error {
	return imageutil.SaveImage(buf.Image(), path)
}
