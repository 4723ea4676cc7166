package forensics

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func grayImage(w, h int, fn func(x, y int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: fn(x, y)})
		}
	}
	return img
}

func TestExtractBlockInterior(t *testing.T) {
	img := grayImage(8, 8, func(x, y int) uint8 { return uint8(x + y*8) })
	blk := ExtractBlock(img, 2, 2, 4)
	assert.Len(t, blk, 4)
	assert.Len(t, blk[0], 4)
	assert.Equal(t, uint8(2+2*8), blk[0][0])
}

func TestExtractBlockClipsAtEdge(t *testing.T) {
	img := grayImage(8, 8, func(x, y int) uint8 { return 1 })
	blk := ExtractBlock(img, 6, 6, 4)
	assert.Len(t, blk, 2)
	assert.Len(t, blk[0], 2)
}

func TestBlockMeanVariance(t *testing.T) {
	block := [][]uint8{{0, 10}, {20, 30}}
	mean, variance := BlockMeanVariance(block)
	assert.InDelta(t, 15.0, mean, 1e-9)
	assert.InDelta(t, 125.0, variance, 1e-9)
}

func TestBlockMeanVarianceEmpty(t *testing.T) {
	mean, variance := BlockMeanVariance(nil)
	assert.Zero(t, mean)
	assert.Zero(t, variance)
}

func TestBlockPositionsRowMajorOrder(t *testing.T) {
	positions := BlockPositions(8, 4, 4, 4)
	assert.Equal(t, [][2]int{{0, 0}, {4, 0}}, positions)
}

func TestBlockPositionsNoPartialBlocks(t *testing.T) {
	positions := BlockPositions(10, 10, 4, 4)
	for _, p := range positions {
		assert.LessOrEqual(t, p[0]+4, 10)
		assert.LessOrEqual(t, p[1]+4, 10)
	}
}
