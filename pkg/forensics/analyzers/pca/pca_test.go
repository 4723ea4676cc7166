package pca

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texturedGray(n int) image.Image {
	img := image.NewGray(image.Rect(0, 0, n, n))
	seed := uint32(13)
	next := func() uint8 {
		seed = seed*1664525 + 1013904223
		return uint8(seed >> 24)
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			img.SetGray(x, y, color.Gray{Y: next()})
		}
	}
	return img
}

func TestAnalyzeRejectsTooSmallImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	_, err := Analyze(img, DefaultConfig())
	assert.Error(t, err)
}

func TestAnalyzeReturnsErrorMapSameDimensions(t *testing.T) {
	img := texturedGray(32)
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, result.ErrorMap, 32)
	assert.Len(t, result.ErrorMap[0], 32)
}

func TestAnalyzeManipulationProbabilityInUnitRange(t *testing.T) {
	img := texturedGray(32)
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.ManipulationProbability, 0.0)
	assert.LessOrEqual(t, result.ManipulationProbability, 1.0)
}

func TestAnalyzeDefaultsOnZeroConfig(t *testing.T) {
	img := texturedGray(32)
	result, err := Analyze(img, Config{})
	require.NoError(t, err)
	assert.NotNil(t, result)
}
