package dct

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkered(n int) image.Image {
	img := image.NewGray(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := uint8(0)
			if (x/8+y/8)%2 == 0 {
				v = 220
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestAnalyzeRejectsTooSmallImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	_, err := Analyze(img, DefaultConfig())
	assert.Error(t, err)
}

func TestAnalyzeReturnsQualityInRange(t *testing.T) {
	img := checkered(32)
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.PrimaryQuality, 1)
	assert.LessOrEqual(t, result.PrimaryQuality, 100)
}

func TestAnalyzeDoubleCompressionProbabilityInUnitRange(t *testing.T) {
	img := checkered(32)
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.DoubleCompressionProbability, 0.0)
	assert.LessOrEqual(t, result.DoubleCompressionProbability, 1.0)
}

func TestAnalyzeDefaultsOnZeroConfig(t *testing.T) {
	img := checkered(32)
	result, err := Analyze(img, Config{})
	require.NoError(t, err)
	assert.NotNil(t, result)
}
