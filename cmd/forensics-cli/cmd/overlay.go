package cmd

import (
	"image"

	"github.com/disintegration/imaging"
)

// writeOverlay saves the annotated overlay image, picking the encoder from
// the output path's extension (PNG, JPEG, TIFF, BMP, GIF all supported).
func writeOverlay(path string, img image.Image) error {
	return imaging.Save(img, path)
}
