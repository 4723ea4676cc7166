package shadow

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func litImage(n int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	return img
}

func imageWithShadowBlock(n int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 210, G: 205, B: 200, A: 255})
		}
	}
	for y := n / 4; y < n/2; y++ {
		for x := n / 4; x < n/2; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 30, G: 30, B: 36, A: 255})
		}
	}
	return img
}

func TestAnalyzeRejectsTooSmallImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	_, err := Analyze(img, DefaultConfig())
	assert.Error(t, err)
}

func TestAnalyzeUniformImageHasNoShadowRegions(t *testing.T) {
	img := litImage(64)
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, result.Regions)
}

func TestAnalyzeFindsShadowBlock(t *testing.T) {
	img := imageWithShadowBlock(64)
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Regions)
}

func TestAngularDeviationWraps(t *testing.T) {
	assert.InDelta(t, 20.0, angularDeviation(10, 350), 1e-9)
	assert.InDelta(t, 0.0, angularDeviation(10, 10), 1e-9)
}
