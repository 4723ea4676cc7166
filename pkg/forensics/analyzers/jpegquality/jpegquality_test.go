package jpegquality

import (
	"image"
	"image/color"
	"testing"

	"github.com/kschiffer/imgforensics/pkg/forensics/jpegcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradientImage(n int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 256 / n), G: uint8(y * 256 / n), B: 128, A: 255})
		}
	}
	return img
}

func TestAnalyzeRejectsTooSmallImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	_, err := Analyze(img, Config{})
	assert.Error(t, err)
}

func TestAnalyzeEstimatesReasonableQuality(t *testing.T) {
	img := gradientImage(32)
	result, err := Analyze(img, Config{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.QualityEstimate, 50)
	assert.LessOrEqual(t, result.QualityEstimate, 95)
}

func TestAnalyzeDoubleCompressionLikelihoodInRangeOnRecompressedImage(t *testing.T) {
	original := gradientImage(32)
	recompressed, err := jpegcodec.Recompress(original, 70)
	require.NoError(t, err)

	result, err := Analyze(recompressed, Config{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.DoubleCompressionLikelihood, 0.0)
	assert.LessOrEqual(t, result.DoubleCompressionLikelihood, 1.0)
}

func TestAnalyzeBlockingMapSameDimensions(t *testing.T) {
	img := gradientImage(32)
	result, err := Analyze(img, Config{})
	require.NoError(t, err)
	assert.Equal(t, 32, result.BlockingMap.Bounds().Dx())
}
