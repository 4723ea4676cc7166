package jpegcodec

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	return img
}

func TestRecompressReturnsSameDimensions(t *testing.T) {
	out, err := Recompress(testImage(), 80)
	assert.NoError(t, err)
	assert.Equal(t, 16, out.Bounds().Dx())
	assert.Equal(t, 16, out.Bounds().Dy())
}

func TestRecompressRejectsInvalidQuality(t *testing.T) {
	_, err := Recompress(testImage(), 0)
	assert.Error(t, err)
	_, err = Recompress(testImage(), 101)
	assert.Error(t, err)
}

func TestRecompressLowQualityDiffersFromHigh(t *testing.T) {
	low, err := Recompress(testImage(), 5)
	assert.NoError(t, err)
	high, err := Recompress(testImage(), 95)
	assert.NoError(t, err)

	var diff int
	b := low.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r1, _, _, _ := low.At(x, y).RGBA()
			r2, _, _, _ := high.At(x, y).RGBA()
			if r1 != r2 {
				diff++
			}
		}
	}
	assert.Greater(t, diff, 0)
}
