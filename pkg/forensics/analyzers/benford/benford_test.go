package benford

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func naturalLookingImage(n int) image.Image {
	img := image.NewGray(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := 128 + 40*math.Sin(float64(x)/3) + 30*math.Cos(float64(y)/5)
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return img
}

func TestAnalyzeRejectsTooSmallImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	_, err := Analyze(img, DefaultConfig())
	assert.Error(t, err)
}

func TestExpectedDistributionSumsToOne(t *testing.T) {
	expected := expectedDistribution()
	var sum float64
	for _, v := range expected {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestFirstDigit(t *testing.T) {
	assert.Equal(t, 1, firstDigit(123.4))
	assert.Equal(t, 9, firstDigit(0.009))
	assert.Equal(t, 0, firstDigit(0))
}

func TestAnalyzeChiSquareNonNegative(t *testing.T) {
	img := naturalLookingImage(64)
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.ChiSquare, 0.0)
}

func TestAnalyzeConformityScoreInUnitRange(t *testing.T) {
	img := naturalLookingImage(64)
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.ConformityScore, 0.0)
	assert.LessOrEqual(t, result.ConformityScore, 1.0)
}
