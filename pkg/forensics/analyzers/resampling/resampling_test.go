package resampling

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upsampledLikeImage(n int) image.Image {
	img := image.NewGray(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			// Every-other-pixel replication, mimicking nearest-neighbor
			// upscaling's periodic interpolation artifact.
			v := uint8((x/2*37 + y/2*91) % 256)
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestAnalyzeRejectsTooSmallImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	_, err := Analyze(img, DefaultConfig())
	assert.Error(t, err)
}

func TestAnalyzeReturnsRowAutocorrelationForUpsampledImage(t *testing.T) {
	img := upsampledLikeImage(64)
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, result.RowAutocorrelation)
}

func TestAnalyzeFactorWithinConfiguredBounds(t *testing.T) {
	img := upsampledLikeImage(64)
	cfg := DefaultConfig()
	result, err := Analyze(img, cfg)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.ResamplingFactor, cfg.MinFactor)
	assert.LessOrEqual(t, result.ResamplingFactor, cfg.MaxFactor)
}

func TestAnalyzeDefaultsOnZeroConfig(t *testing.T) {
	img := upsampledLikeImage(64)
	result, err := Analyze(img, Config{})
	require.NoError(t, err)
	assert.NotNil(t, result)
}
