// Package jpegcodec implements the external JPEG encoder/decoder
// collaborator from spec.md §6 using the standard library's image/jpeg,
// the same package the teacher's cmd/ctl/cmd/analyze.go imports for frame
// dumping. It is the only place in this module that performs JPEG
// recompression.
package jpegcodec

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

// Recompress encodes img as JPEG at the given quality (1..100) and
// decodes the result, returning a raster of identical dimensions.
// Deterministic for a fixed (img, quality) pair, as required by spec §6.
func Recompress(img image.Image, quality int) (image.Image, error) {
	if quality < 1 || quality > 100 {
		return nil, forensics.ErrInvalidParameter("quality must be in [1,100]")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, forensics.ErrAnalysisFailed("jpeg encode failed: " + err.Error())
	}
	decoded, err := jpeg.Decode(&buf)
	if err != nil {
		return nil, forensics.ErrImageDecode(err)
	}
	return decoded, nil
}
