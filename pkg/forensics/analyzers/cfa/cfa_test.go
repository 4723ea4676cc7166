package cfa

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texturedRGBA(n int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	seed := uint32(7)
	next := func() uint8 {
		seed = seed*1664525 + 1013904223
		return uint8(seed >> 24)
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			img.SetRGBA(x, y, color.RGBA{R: next(), G: next(), B: next(), A: 255})
		}
	}
	return img
}

func TestAnalyzeRejectsTooSmallImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	_, err := Analyze(img, Config{})
	assert.Error(t, err)
}

func TestAnalyzeReturnsBlocksForTexturedImage(t *testing.T) {
	img := texturedRGBA(64)
	result, err := Analyze(img, Config{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Blocks)
}

func TestAnalyzeManipulationProbabilityInUnitRange(t *testing.T) {
	img := texturedRGBA(64)
	result, err := Analyze(img, Config{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.ManipulationProbability, 0.0)
	assert.LessOrEqual(t, result.ManipulationProbability, 1.0)
}

func TestPatternStringNames(t *testing.T) {
	assert.Equal(t, "RGGB", RGGB.String())
	assert.Equal(t, "BGGR", BGGR.String())
	assert.Equal(t, "GRBG", GRBG.String())
	assert.Equal(t, "GBRG", GBRG.String())
}
