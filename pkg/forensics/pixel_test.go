package forensics

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestGrayscaleOfWhiteIsWhite(t *testing.T) {
	img := solidRGBA(4, 4, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	gray := Grayscale(img)
	assert.Equal(t, uint8(255), gray.GrayAt(0, 0).Y)
}

func TestGrayscaleOfBlackIsBlack(t *testing.T) {
	img := solidRGBA(4, 4, color.RGBA{A: 255})
	gray := Grayscale(img)
	assert.Equal(t, uint8(0), gray.GrayAt(0, 0).Y)
}

func TestGaussianBlurOfFlatImageIsUnchanged(t *testing.T) {
	flat := grayImage(8, 8, func(x, y int) uint8 { return 100 })
	blurred := GaussianBlur3x3(flat)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			assert.Equal(t, uint8(100), blurred.GrayAt(x, y).Y)
		}
	}
}

func TestSobelGradientsOfFlatImageIsZero(t *testing.T) {
	flat := grayImage(8, 8, func(x, y int) uint8 { return 50 })
	_, _, mag := SobelGradients(flat)
	for _, row := range mag {
		for _, v := range row {
			assert.Zero(t, v)
		}
	}
}

func TestBilinearSampleAtIntegerCoordMatchesPixel(t *testing.T) {
	img := grayImage(4, 4, func(x, y int) uint8 { return uint8(x*10 + y) })
	v := BilinearSample(img, 2, 1)
	assert.InDelta(t, 21.0, v, 1e-9)
}

func TestBilinearSampleClampsOutOfRange(t *testing.T) {
	img := grayImage(4, 4, func(x, y int) uint8 { return uint8(x*10 + y) })
	v := BilinearSample(img, -5, -5)
	assert.InDelta(t, 0.0, v, 1e-9)
}

func TestSaturation01OfGrayIsZero(t *testing.T) {
	assert.InDelta(t, 0.0, Saturation01(128, 128, 128), 1e-9)
}

func TestSaturation01OfSaturatedColorIsPositive(t *testing.T) {
	assert.Greater(t, Saturation01(255, 0, 0), 0.0)
}
