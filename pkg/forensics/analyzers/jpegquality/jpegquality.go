// Package jpegquality implements spec.md §4.5: JPEG quality estimation,
// ghost detection, blocking-artifact mapping, and double-compression
// likelihood, all via repeated recompression through pkg/forensics/jpegcodec.
package jpegquality

import (
	"image"
	"image/color"
	"math"

	"github.com/kschiffer/imgforensics/pkg/forensics"
	"github.com/kschiffer/imgforensics/pkg/forensics/jpegcodec"
)

// Config holds the JPEG analyzer's parameters.
type Config struct{}

// Result is the JPEG analyzer's output.
type Result struct {
	QualityEstimate             int
	GhostDetected                bool
	GhostQuality                 int
	GhostMap                     *image.Gray
	BlockingMap                  *image.Gray
	DoubleCompressionLikelihood float64
}

// Analyze runs the JPEG analysis battery on img.
func Analyze(img image.Image, _ Config) (*Result, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 8 || h < 8 {
		return nil, forensics.ErrImageTooSmall(8)
	}

	qEstimate, err := estimateQuality(img)
	if err != nil {
		return nil, err
	}

	ghostDetected, ghostQ, ghostMap, err := detectGhost(img)
	if err != nil {
		return nil, err
	}

	gray := forensics.Grayscale(img)
	blockingMap := blockingArtifactMap(gray)
	doubleLikelihood := doubleCompressionLikelihood(gray)

	return &Result{
		QualityEstimate:             qEstimate,
		GhostDetected:               ghostDetected,
		GhostQuality:                ghostQ,
		GhostMap:                    ghostMap,
		BlockingMap:                 blockingMap,
		DoubleCompressionLikelihood: doubleLikelihood,
	}, nil
}

// estimateQuality sweeps q in {50,55,...,95}, recompresses, and returns
// the q minimizing mean absolute RGB difference to the original.
func estimateQuality(img image.Image) (int, error) {
	best := 50
	bestDiff := math.Inf(1)
	for q := 50; q <= 95; q += 5 {
		recompressed, err := jpegcodec.Recompress(img, q)
		if err != nil {
			return 0, err
		}
		d := meanAbsDiff(img, recompressed)
		if d < bestDiff {
			bestDiff = d
			best = q
		}
	}
	return best, nil
}

// detectGhost sweeps q over [60,100) step 5; the q (below 95) minimizing
// mean difference with mean < 5 signals a "ghost" (spec.md §4.5).
func detectGhost(img image.Image) (detected bool, quality int, ghostMap *image.Gray, err error) {
	bestQ := -1
	bestDiff := math.Inf(1)
	var bestMap *image.Gray
	for q := 60; q < 100; q += 5 {
		recompressed, rerr := jpegcodec.Recompress(img, q)
		if rerr != nil {
			return false, 0, nil, rerr
		}
		d, m := meanAbsDiffMap(img, recompressed)
		if q < 95 && d < bestDiff {
			bestDiff = d
			bestQ = q
			bestMap = m
		}
	}
	if bestQ >= 0 && bestDiff < 5 {
		return true, bestQ, bestMap, nil
	}
	return false, 0, nil, nil
}

func meanAbsDiff(a, b image.Image) float64 {
	d, _ := meanAbsDiffMap(a, b)
	return d
}

func meanAbsDiffMap(a, b image.Image) (float64, *image.Gray) {
	ab := a.Bounds()
	bb := b.Bounds()
	w, h := ab.Dx(), ab.Dy()
	m := image.NewGray(image.Rect(0, 0, w, h))
	var sum float64
	var n float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r1, g1, bl1, _ := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, bl2, _ := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			dr := math.Abs(float64(r1>>8) - float64(r2>>8))
			dg := math.Abs(float64(g1>>8) - float64(g2>>8))
			db := math.Abs(float64(bl1>>8) - float64(bl2>>8))
			avg := (dr + dg + db) / 3
			sum += avg
			n++
			m.SetGray(x, y, grayClamp(avg))
		}
	}
	if n == 0 {
		return 0, m
	}
	return sum / n, m
}

func grayClamp(v float64) color.Gray {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return color.Gray{Y: uint8(v)}
}

// blockingArtifactMap stores, on the 8-pixel grid (x%8==0 or y%8==0),
// |left-right| (or |top-bottom|), averaged when on both axes; elsewhere 0
// (spec.md §4.5).
func blockingArtifactMap(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			onX := x%8 == 0
			onY := y%8 == 0
			if !onX && !onY {
				continue
			}
			var vals []float64
			if onX && x > 0 && x < w-1 {
				left := float64(gray.GrayAt(b.Min.X+x-1, b.Min.Y+y).Y)
				right := float64(gray.GrayAt(b.Min.X+x+1, b.Min.Y+y).Y)
				vals = append(vals, math.Abs(left-right))
			}
			if onY && y > 0 && y < h-1 {
				top := float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y-1).Y)
				bottom := float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y+1).Y)
				vals = append(vals, math.Abs(top-bottom))
			}
			if len(vals) == 0 {
				continue
			}
			var sum float64
			for _, v := range vals {
				sum += v
			}
			out.SetGray(x, y, grayClamp(sum/float64(len(vals))))
		}
	}
	return out
}

// doubleCompressionLikelihood builds a 256-bin histogram of per-8x8-block
// "energy" and scores it by the best autocorrelation period in [2,20]
// (spec.md §4.5).
func doubleCompressionLikelihood(gray *image.Gray) float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	hist := make([]float64, 256)
	for _, pos := range forensics.BlockPositions(w, h, 8, 8) {
		bx, by := pos[0], pos[1]
		var energy float64
		for i := 0; i < 8; i++ {
			p1 := float64(gray.GrayAt(b.Min.X+bx+i, b.Min.Y+by+i).Y)
			p2 := float64(gray.GrayAt(b.Min.X+bx+7-i, b.Min.Y+by+i).Y)
			energy += math.Abs(p1 - p2)
		}
		energy /= 64
		bin := int(energy)
		if bin > 255 {
			bin = 255
		}
		if bin < 0 {
			bin = 0
		}
		hist[bin]++
	}

	best := 0.0
	for p := 2; p <= 20; p++ {
		var diffSum, denomSum float64
		for i := p; i < 256; i++ {
			diffSum += math.Abs(hist[i] - hist[i-p])
			denomSum += hist[i] + hist[i-p]
		}
		if denomSum == 0 {
			continue
		}
		score := 1 - diffSum/denomSum
		if score > best {
			best = score
		}
	}
	return forensics.Clamp01(best)
}
