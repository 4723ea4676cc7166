package copymove

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageWithDuplicatedPatch(size, patchSize int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := uint8((x*37 + y*91) % 256)
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	// Paste a copy of a textured patch far away from its source.
	srcX, srcY := 8, 8
	dstX, dstY := size - patchSize - 8, size - patchSize - 8
	for dy := 0; dy < patchSize; dy++ {
		for dx := 0; dx < patchSize; dx++ {
			c := img.RGBAAt(srcX+dx, srcY+dy)
			img.SetRGBA(dstX+dx, dstY+dy, c)
		}
	}
	return img
}

func TestAnalyzeRejectsInvalidBlockSize(t *testing.T) {
	img := imageWithDuplicatedPatch(64, 16)
	_, err := Analyze(img, Config{BlockSize: 2, SimilarityThreshold: 0.9})
	assert.Error(t, err)
	_, err = Analyze(img, Config{BlockSize: 128, SimilarityThreshold: 0.9})
	assert.Error(t, err)
}

func TestAnalyzeRejectsInvalidSimilarityThreshold(t *testing.T) {
	img := imageWithDuplicatedPatch(64, 16)
	_, err := Analyze(img, Config{BlockSize: 16, SimilarityThreshold: 1.5})
	assert.Error(t, err)
}

func TestAnalyzeRejectsTooSmallImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	_, err := Analyze(img, DefaultConfig())
	assert.Error(t, err)
}

func TestAnalyzeFindsDuplicatedPatch(t *testing.T) {
	img := imageWithDuplicatedPatch(128, 16)
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Matches)
	for _, m := range result.Matches {
		assert.GreaterOrEqual(t, m.Similarity, DefaultConfig().SimilarityThreshold)
	}
}

func TestAnalyzeMatchesRespectMinDistance(t *testing.T) {
	img := imageWithDuplicatedPatch(128, 16)
	cfg := DefaultConfig()
	result, err := Analyze(img, cfg)
	require.NoError(t, err)
	for _, m := range result.Matches {
		assert.GreaterOrEqual(t, m.Source.CenterDistance(m.Target), float64(cfg.MinDistance))
	}
}

func TestAnalyzeNoFalseMatchesOnRandomNoise(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	seed := uint32(12345)
	next := func() uint8 {
		seed = seed*1664525 + 1013904223
		return uint8(seed >> 24)
	}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := next()
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	result, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
}
