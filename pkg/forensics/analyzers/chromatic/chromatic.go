// Package chromatic implements chromatic-aberration consistency analysis
// (spec.md §4.8): measure per-block R/G and B/G channel shifts at edge
// pixels, fit a radial model centered on the optical center, and flag
// blocks whose measured shift deviates from the model.
package chromatic

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

// Config holds the chromatic-aberration analyzer's parameters.
type Config struct {
	BlockSize      int     // default 32
	SearchWindow   int     // default 5 (±5 pixels)
	EdgeThreshold  float64 // default 30, Sobel magnitude on green channel
	DeviationThreshold float64 // default 0.75 pixels
}

// DefaultConfig returns block_size=32, search_window=5, edge_threshold=30, deviation_threshold=0.75.
func DefaultConfig() Config {
	return Config{BlockSize: 32, SearchWindow: 5, EdgeThreshold: 30, DeviationThreshold: 0.75}
}

// BlockShift is the measured shift for one block.
type BlockShift struct {
	Region     forensics.Region
	RGShiftX   float64
	RGShiftY   float64
	BGShiftX   float64
	BGShiftY   float64
	Confidence float64
}

// Result is the chromatic-aberration analyzer's output.
type Result struct {
	Blocks              []BlockShift
	KRed                float64
	KBlue               float64
	RSquared            float64
	InconsistentRegions []forensics.Region
}

// Analyze runs chromatic-aberration analysis on img.
func Analyze(img image.Image, cfg Config) (*Result, error) {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 32
	}
	if cfg.SearchWindow <= 0 {
		cfg.SearchWindow = 5
	}
	if cfg.EdgeThreshold <= 0 {
		cfg.EdgeThreshold = 30
	}
	if cfg.DeviationThreshold <= 0 {
		cfg.DeviationThreshold = 0.75
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < cfg.BlockSize || h < cfg.BlockSize {
		return nil, forensics.ErrImageTooSmall(cfg.BlockSize)
	}

	red := channelGray(img, 0)
	green := channelGray(img, 1)
	blue := channelGray(img, 2)
	_, _, gmag := forensics.SobelGradients(green)

	cx := float64(w) / 2
	cy := float64(h) / 2

	var blocks []BlockShift
	for _, pos := range forensics.BlockPositions(w, h, cfg.BlockSize, cfg.BlockSize) {
		bx, by := pos[0], pos[1]
		edges := edgePoints(gmag, bx, by, cfg.BlockSize, cfg.EdgeThreshold)
		if len(edges) < 8 {
			continue
		}
		rgX, rgY, rgConf := bestShift(green, red, edges, cfg.SearchWindow)
		bgX, bgY, bgConf := bestShift(green, blue, edges, cfg.SearchWindow)

		blocks = append(blocks, BlockShift{
			Region:     forensics.Region{X: bx, Y: by, Width: cfg.BlockSize, Height: cfg.BlockSize},
			RGShiftX:   rgX,
			RGShiftY:   rgY,
			BGShiftX:   bgX,
			BGShiftY:   bgY,
			Confidence: (rgConf + bgConf) / 2,
		})
	}

	kRed, rSquaredRed, devRed := fitRadialModel(blocks, cx, cy, true)
	kBlue, rSquaredBlue, devBlue := fitRadialModel(blocks, cx, cy, false)

	var inconsistent []forensics.Region
	for i, blk := range blocks {
		if math.Abs(devRed[i]) > cfg.DeviationThreshold || math.Abs(devBlue[i]) > cfg.DeviationThreshold {
			inconsistent = append(inconsistent, blk.Region)
		}
	}

	rSquared := (rSquaredRed + rSquaredBlue) / 2

	return &Result{
		Blocks:              blocks,
		KRed:                kRed,
		KBlue:               kBlue,
		RSquared:            rSquared,
		InconsistentRegions: forensics.MergeRegions(inconsistent, cfg.BlockSize/2),
	}, nil
}

// channelGray extracts one raw 8-bit RGB channel (0=R,1=G,2=B) as an
// image.Gray, distinct from forensics.Grayscale's luma conversion.
func channelGray(img image.Image, channel int) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			var v uint32
			switch channel {
			case 0:
				v = r
			case 1:
				v = g
			default:
				v = bl
			}
			out.SetGray(x, y, color.Gray{Y: uint8(v >> 8)})
		}
	}
	return out
}

type point struct{ x, y int }

func edgePoints(mag [][]float64, bx, by, size int, threshold float64) []point {
	var pts []point
	h := len(mag)
	for dy := 0; dy < size; dy++ {
		y := by + dy
		if y >= h {
			continue
		}
		w := len(mag[y])
		for dx := 0; dx < size; dx++ {
			x := bx + dx
			if x >= w {
				continue
			}
			if mag[y][x] > threshold {
				pts = append(pts, point{x, y})
			}
		}
	}
	return pts
}

// bestShift searches an integer grid in [-window,window] then refines at
// ±1/3-pixel steps, maximizing Pearson correlation between the shifted
// channel and the green reference at the edge points.
func bestShift(green, channel *image.Gray, edges []point, window int) (dx, dy, conf float64) {
	gVals := make([]float64, len(edges))
	for i, p := range edges {
		gVals[i] = float64(green.GrayAt(p.x, p.y).Y)
	}

	bestCorr := math.Inf(-1)
	var bestDX, bestDY float64
	for iy := -window; iy <= window; iy++ {
		for ix := -window; ix <= window; ix++ {
			c := correlationAt(channel, edges, gVals, float64(ix), float64(iy))
			if c > bestCorr {
				bestCorr = c
				bestDX, bestDY = float64(ix), float64(iy)
			}
		}
	}

	// Refine at ±1/3-pixel steps around the integer optimum.
	for _, step := range []float64{-1.0 / 3, 0, 1.0 / 3} {
		for _, stepY := range []float64{-1.0 / 3, 0, 1.0 / 3} {
			c := correlationAt(channel, edges, gVals, bestDX+step, bestDY+stepY)
			if c > bestCorr {
				bestCorr = c
				bestDX, bestDY = bestDX+step, bestDY+stepY
			}
		}
	}
	if math.IsInf(bestCorr, -1) {
		bestCorr = 0
	}
	return bestDX, bestDY, forensics.Clamp01((bestCorr + 1) / 2)
}

func correlationAt(channel *image.Gray, edges []point, gVals []float64, dx, dy float64) float64 {
	cVals := make([]float64, len(edges))
	for i, p := range edges {
		cVals[i] = forensics.BilinearSample(channel, float64(p.x)+dx, float64(p.y)+dy)
	}
	varC := stat.Variance(cVals, nil)
	varG := stat.Variance(gVals, nil)
	if varC == 0 || varG == 0 {
		return 0
	}
	return stat.Correlation(cVals, gVals, nil)
}

// fitRadialModel solves k (expected shift = k * r) by weighted least
// squares over the radial component of each block's measured shift
// vector, returning k, R², and the per-block residuals.
func fitRadialModel(blocks []BlockShift, cx, cy float64, red bool) (k, rSquared float64, residuals []float64) {
	residuals = make([]float64, len(blocks))
	var num, den float64
	radii := make([]float64, len(blocks))
	rhos := make([]float64, len(blocks))
	weights := make([]float64, len(blocks))

	for i, blk := range blocks {
		rx := blk.Region.CenterX() - cx
		ry := blk.Region.CenterY() - cy
		r := math.Hypot(rx, ry)
		radii[i] = r
		weights[i] = blk.Confidence
		if r < 1e-6 {
			rhos[i] = 0
			continue
		}
		ux, uy := rx/r, ry/r
		var sx, sy float64
		if red {
			sx, sy = blk.RGShiftX, blk.RGShiftY
		} else {
			sx, sy = blk.BGShiftX, blk.BGShiftY
		}
		rho := sx*ux + sy*uy
		rhos[i] = rho
		num += weights[i] * r * rho
		den += weights[i] * r * r
	}
	if den > 0 {
		k = num / den
	}

	var ssRes, ssTot, wSum, mean float64
	for i := range blocks {
		wSum += weights[i]
		mean += weights[i] * rhos[i]
	}
	if wSum > 0 {
		mean /= wSum
	}
	for i := range blocks {
		pred := k * radii[i]
		residuals[i] = rhos[i] - pred
		ssRes += weights[i] * residuals[i] * residuals[i]
		ssTot += weights[i] * (rhos[i] - mean) * (rhos[i] - mean)
	}
	if ssTot > 0 {
		rSquared = forensics.Clamp01(1 - ssRes/ssTot)
	}
	return
}
