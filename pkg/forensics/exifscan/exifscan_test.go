package exifscan

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJPEG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 32), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	path := filepath.Join(t.TempDir(), "plain.jpg")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExtractWithoutEXIFSegmentIsNotAnError(t *testing.T) {
	path := writeTempJPEG(t)
	meta, err := Extract(path)
	assert.NoError(t, err)
	assert.Empty(t, meta.SuspiciousIndicators)
	assert.Empty(t, meta.CameraMake)
}

func TestExtractMissingFileReturnsIOError(t *testing.T) {
	_, err := Extract("/nonexistent/path/to/image.jpg")
	assert.Error(t, err)
}
