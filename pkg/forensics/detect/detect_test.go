package detect

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texturedImage(n int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	seed := uint32(2024)
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

func TestDetectRunsFullBattery(t *testing.T) {
	img := texturedImage(256)
	result, err := Detect(img, DefaultAnalysisConfig())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.GreaterOrEqual(t, result.OverallScore, 0.0)
	assert.LessOrEqual(t, result.OverallScore, 1.0)
	assert.Equal(t, result.OverallScore > DefaultAnalysisConfig().ManipulatedAt, result.IsManipulated)
	assert.NotNil(t, result.OverlayImage)
	assert.Equal(t, 256, result.OverlayImage.Bounds().Dx())
}

func TestOverallScoreEmptyIsZero(t *testing.T) {
	assert.Zero(t, overallScore(nil))
}

func TestOverallScoreAveragesConfidence(t *testing.T) {
	manipulations := []DetectedManipulation{
		{Confidence: 0.2},
		{Confidence: 0.8},
	}
	assert.InDelta(t, 0.5, overallScore(manipulations), 1e-9)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "CopyMove", KindCopyMove.String())
	assert.Equal(t, "Unknown", KindUnknown.String())
}

func TestUniqueStrings(t *testing.T) {
	out := uniqueStrings([]string{"a", "b", "a", "c", "b"})
	assert.ElementsMatch(t, []string{"a", "b", "c"}, out)
}
