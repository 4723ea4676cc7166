package forensics

import (
	"image"
	"image/color"
	"math"
)

// Luma coefficients for RGB->gray conversion (ITU-R BT.601), matching the
// luma weights used throughout the reference corpus (e.g. gopdq's
// LUMA_FROM_{R,G,B}_COEFF).
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Grayscale converts img to an 8-bit single-channel image using
// Y = 0.299R + 0.587G + 0.114B, rounded to the nearest integer.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// RGBA() returns 16-bit-scaled channels; reduce to 8-bit first.
			rf := float64(r >> 8)
			gf := float64(g >> 8)
			bf := float64(bl >> 8)
			y8 := lumaR*rf + lumaG*gf + lumaB*bf
			out.SetGray(x, y, color.Gray{Y: clampByte(math.Round(y8))})
		}
	}
	return out
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// clampCoord implements the edge-replicate border policy used by every
// windowed operation in this package (convolution, Sobel, block-mean
// fills, Gaussian blur borders): coordinates outside [0,n) clamp to the
// nearest valid index rather than wrapping or reading out of bounds.
func clampCoord(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// grayAt reads gray at (x,y) with edge-replicate clamping.
func grayAt(g *image.Gray, x, y int) int {
	b := g.Bounds()
	x = clampCoord(x, b.Dx()) + b.Min.X
	y = clampCoord(y, b.Dy()) + b.Min.Y
	return int(g.GrayAt(x, y).Y)
}

// Convolve3x3 applies a 3x3 kernel (row-major, 9 elements) to gray,
// clamping neighbor indices at the image extent (edge-replicate).
func Convolve3x3(gray *image.Gray, kernel [9]float64) [][]float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			var sum float64
			k := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sum += kernel[k] * float64(grayAt(gray, x+dx, y+dy))
					k++
				}
			}
			out[y][x] = sum
		}
	}
	return out
}

// sobelGx and sobelGy are the standard 3x3 Sobel kernels.
var sobelGx = [9]float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}
var sobelGy = [9]float64{-1, -2, -1, 0, 0, 0, 1, 2, 1}

// SobelGradients returns per-pixel Gx, Gy and gradient magnitude,
// clamping border neighbors to the image extent.
func SobelGradients(gray *image.Gray) (gx, gy, mag [][]float64) {
	gx = Convolve3x3(gray, sobelGx)
	gy = Convolve3x3(gray, sobelGy)
	h := len(gx)
	mag = make([][]float64, h)
	for y := 0; y < h; y++ {
		w := len(gx[y])
		mag[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			mag[y][x] = math.Hypot(gx[y][x], gy[y][x])
		}
	}
	return
}

// GaussianBlur3x3 applies the 3x3 kernel [1 2 1; 2 4 2; 1 2 1]/16. Border
// pixels are blurred too: neighbor coordinates outside the image are
// clamped with clampCoord (edge-replicate), the border policy used
// throughout this package (spec §9's border-policy ambiguity).
func GaussianBlur3x3(gray *image.Gray) *image.Gray {
	kernel := [9]float64{1.0 / 16, 2.0 / 16, 1.0 / 16, 2.0 / 16, 4.0 / 16, 2.0 / 16, 1.0 / 16, 2.0 / 16, 1.0 / 16}
	vals := Convolve3x3(gray, kernel)
	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.SetGray(x, y, color.Gray{Y: clampByte(math.Round(vals[y][x]))})
		}
	}
	return out
}

// BilinearSample samples gray at real coordinates (x,y), clamping
// out-of-range coordinates to the image edge.
func BilinearSample(gray *image.Gray, x, y float64) float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > float64(w-1) {
		x = float64(w - 1)
	}
	if y > float64(h-1) {
		y = float64(h - 1)
	}
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := clampCoord(x0+1, w)
	y1 := clampCoord(y0+1, h)
	fx := x - float64(x0)
	fy := y - float64(y0)

	p00 := float64(grayAt(gray, x0, y0))
	p10 := float64(grayAt(gray, x1, y0))
	p01 := float64(grayAt(gray, x0, y1))
	p11 := float64(grayAt(gray, x1, y1))

	w00 := (1 - fx) * (1 - fy)
	w10 := fx * (1 - fy)
	w01 := (1 - fx) * fy
	w11 := fx * fy

	return p00*w00 + p10*w10 + p01*w01 + p11*w11
}

// SplitChroma separates a grayscale-equivalent luma and two chroma
// channels from RGB, adapted from the teacher's JPEG2000 reversible color
// transform (pkg/compress/jpeg2k/rct.go) — same integer lifting formulas,
// reused here as a cheap luma/chroma split instead of a lossless codec
// stage. Cb, Cr are returned un-shifted (can be negative).
func SplitChroma(r, g, bch int) (y, cb, cr int) {
	y = (r + 2*g + bch) >> 2
	cb = bch - g
	cr = r - g
	return
}

// Saturation01 returns an approximate [0,1] saturation derived from the
// SplitChroma outputs, used by the shadow analyzer in place of a full HSV
// conversion.
func Saturation01(r, g, b int) float64 {
	_, cb, cr := SplitChroma(r, g, b)
	maxV := math.Max(float64(r), math.Max(float64(g), float64(b)))
	if maxV == 0 {
		return 0
	}
	chroma := math.Hypot(float64(cb), float64(cr))
	return math.Min(1, chroma/maxV)
}
