package noise

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatImage(n int, v uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestAnalyzeRejectsTooSmallImage(t *testing.T) {
	img := flatImage(8, 100)
	_, err := Analyze(img, DefaultConfig())
	assert.Error(t, err)
}

func TestAnalyzeOnFlatImageHasZeroGlobalLevel(t *testing.T) {
	img := flatImage(64, 100)
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.Zero(t, result.GlobalLevel)
}

func TestAnalyzeDefaultsAppliedOnZeroConfig(t *testing.T) {
	img := flatImage(64, 100)
	result, err := Analyze(img, Config{})
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestAnalyzeFlagsInjectedNoiseRegion(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	seed := uint32(42)
	next := func() uint8 {
		seed = seed*1664525 + 1013904223
		return uint8(seed>>24) % 4
	}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(120)
			if x >= 32 && y >= 32 {
				v = 120 + next()*30
			} else {
				v = 120 + next()
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.Greater(t, result.Inconsistency, 0.0)
}
