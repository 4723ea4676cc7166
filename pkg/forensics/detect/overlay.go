package detect

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

// kindColor assigns each manipulation kind a distinct overlay outline
// color (spec.md §4.16's visualization requirement).
func kindColor(k Kind) color.RGBA {
	switch k {
	case KindCopyMove:
		return color.RGBA{R: 255, G: 0, B: 0, A: 255}
	case KindSplicing:
		return color.RGBA{R: 255, G: 165, B: 0, A: 255}
	case KindRetouching:
		return color.RGBA{R: 255, G: 255, B: 0, A: 255}
	case KindRemoval:
		return color.RGBA{R: 0, G: 255, B: 255, A: 255}
	case KindResizing:
		return color.RGBA{R: 0, G: 255, B: 0, A: 255}
	case KindRotation:
		return color.RGBA{R: 0, G: 0, B: 255, A: 255}
	case KindColorManipulation:
		return color.RGBA{R: 255, G: 0, B: 255, A: 255}
	case KindAIGenerated:
		return color.RGBA{R: 128, G: 0, B: 128, A: 255}
	default:
		return color.RGBA{R: 200, G: 200, B: 200, A: 255}
	}
}

// renderOverlay draws a rectangle outline around each manipulation's
// region atop a copy of img, colored by kind. Whole-image (zero-area)
// hypotheses like double-compression are not drawn.
func renderOverlay(img image.Image, manipulations []DetectedManipulation) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)

	for _, m := range manipulations {
		if m.Region.Area() <= 0 {
			continue
		}
		drawRect(out, b, m.Region, kindColor(m.Kind))
	}
	return out
}

// drawRect draws a 2px outline of r atop img, clipped to bounds.
func drawRect(img *image.RGBA, bounds image.Rectangle, r forensics.Region, c color.RGBA) {
	x0, y0 := bounds.Min.X+r.X, bounds.Min.Y+r.Y
	x1, y1 := x0+r.Width-1, y0+r.Height-1

	setIf := func(x, y int) {
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			img.SetRGBA(x, y, c)
		}
	}

	const thickness = 2
	for t := 0; t < thickness; t++ {
		for x := x0; x <= x1; x++ {
			setIf(x, y0+t)
			setIf(x, y1-t)
		}
		for y := y0; y <= y1; y++ {
			setIf(x0+t, y)
			setIf(x1-t, y)
		}
	}
}
