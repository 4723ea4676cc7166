package chromatic

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edgyImage(n int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := uint8(0)
			if (x/4)%2 == 0 {
				v = 230
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestAnalyzeRejectsTooSmallImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	_, err := Analyze(img, DefaultConfig())
	assert.Error(t, err)
}

func TestAnalyzeOnNeutralImageHasNonNegativeRSquared(t *testing.T) {
	img := edgyImage(64)
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.RSquared, 0.0)
}

func TestAnalyzeDefaultsOnZeroConfig(t *testing.T) {
	img := edgyImage(64)
	result, err := Analyze(img, Config{})
	require.NoError(t, err)
	assert.NotNil(t, result)
}
