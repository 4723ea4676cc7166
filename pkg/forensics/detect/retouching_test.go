package detect

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

// flatWithNoisyBlock paints a uniform flat image, then fills one
// retouchBlockSize block with high-frequency checkerboard noise: every
// other block has zero variance, so the noisy block is a clear
// population outlier in per-block variance.
func flatWithNoisyBlock(n, blockX, blockY int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	for y := blockY; y < blockY+retouchBlockSize; y++ {
		for x := blockX; x < blockX+retouchBlockSize; x++ {
			v := uint8(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestTextureInconsistentRegionsFlagsOutlierBlock(t *testing.T) {
	img := flatWithNoisyBlock(128, 32, 32)
	regions := textureInconsistentRegions(img, 1.0)
	assert.NotEmpty(t, regions)
	found := false
	for _, r := range regions {
		if r.X == 32 && r.Y == 32 {
			found = true
		}
	}
	assert.True(t, found, "expected the checkerboard block to be flagged as texture-inconsistent")
}

func TestTextureInconsistentRegionsEmptyOnUniformImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	regions := textureInconsistentRegions(img, 1.0)
	assert.Empty(t, regions)
}

func TestBlurInconsistentRegionsFlagsSharpOutlierBlock(t *testing.T) {
	img := flatWithNoisyBlock(128, 64, 64)
	regions := blurInconsistentRegions(img, 1.0)
	assert.NotEmpty(t, regions)
	found := false
	for _, r := range regions {
		if r.X == 64 && r.Y == 64 {
			found = true
		}
	}
	assert.True(t, found, "expected the high-gradient checkerboard block to be flagged as blur-inconsistent")
}

func TestRetouchingManipulationsEmitsRetouchingKind(t *testing.T) {
	img := flatWithNoisyBlock(128, 32, 32)
	cfg := DefaultAnalysisConfig()
	cfg.MinRegionSize = 64

	manipulations := retouchingManipulations(img, cfg)
	assert.NotEmpty(t, manipulations)
	for _, m := range manipulations {
		assert.Equal(t, KindRetouching, m.Kind)
		assert.NotEmpty(t, m.Evidence)
	}
}
