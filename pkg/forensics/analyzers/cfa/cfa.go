// Package cfa implements Color Filter Array interpolation consistency
// analysis (spec.md §4.7): score how well each image block matches one of
// the four canonical Bayer patterns, then flag regions whose detected
// pattern diverges from the image's dominant one.
package cfa

import (
	"image"
	"image/color"
	"math"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

// Pattern is one of the four canonical 2x2 Bayer CFA layouts.
type Pattern int

const (
	RGGB Pattern = iota
	BGGR
	GRBG
	GBRG
)

func (p Pattern) String() string {
	switch p {
	case RGGB:
		return "RGGB"
	case BGGR:
		return "BGGR"
	case GRBG:
		return "GRBG"
	case GBRG:
		return "GBRG"
	default:
		return "Unknown"
	}
}

var allPatterns = []Pattern{RGGB, BGGR, GRBG, GBRG}

// layout[p][row][col] gives the channel sampled at (row,col) mod 2 for
// pattern p: 0=R, 1=G, 2=B.
var layout = map[Pattern][2][2]int{
	RGGB: {{0, 1}, {1, 2}},
	BGGR: {{2, 1}, {1, 0}},
	GRBG: {{1, 0}, {2, 1}},
	GBRG: {{1, 2}, {0, 1}},
}

const blockSize = 32
const blockStride = 16
const minBlockVariance = 25

// Config holds the CFA analyzer's parameters.
type Config struct{}

// BlockPattern is the detected pattern and confidence for one block.
type BlockPattern struct {
	Region     forensics.Region
	Pattern    Pattern
	Confidence float64
}

// Result is the CFA analyzer's output.
type Result struct {
	Blocks                  []BlockPattern
	DominantPattern         Pattern
	ZipperMap               *image.Gray
	ManipulationProbability float64
	InconsistentRegions     []forensics.Region
}

// Analyze runs CFA consistency analysis on img.
func Analyze(img image.Image, _ Config) (*Result, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < blockSize || h < blockSize {
		return nil, forensics.ErrImageTooSmall(blockSize)
	}

	gray := forensics.Grayscale(img)
	zipperMap := zipperArtifactMap(gray)

	var blocks []BlockPattern
	counts := map[Pattern]int{}

	for _, pos := range forensics.BlockPositions(w, h, blockSize, blockStride) {
		bx, by := pos[0], pos[1]
		blk := forensics.ExtractBlock(gray, bx, by, blockSize)
		_, variance := forensics.BlockMeanVariance(blk)
		if variance < minBlockVariance {
			continue
		}

		scores := make(map[Pattern]float64, 4)
		for _, p := range allPatterns {
			scores[p] = patternScore(img, b, bx, by, p)
		}
		best, second := topTwo(scores)
		conf := 0.0
		if scores[best] > 0 {
			conf = (scores[best] - scores[second]) / scores[best]
		}

		blocks = append(blocks, BlockPattern{
			Region:     forensics.Region{X: bx, Y: by, Width: blockSize, Height: blockSize},
			Pattern:    best,
			Confidence: forensics.Clamp01(conf),
		})
		counts[best]++
	}

	dominant := RGGB
	maxCount := -1
	for _, p := range allPatterns {
		if counts[p] > maxCount {
			maxCount = counts[p]
			dominant = p
		}
	}

	var inconsistent []forensics.Region
	distinctPatterns := map[Pattern]bool{}
	var differing int
	for _, blk := range blocks {
		distinctPatterns[blk.Pattern] = true
		if blk.Pattern != dominant {
			differing++
			inconsistent = append(inconsistent, blk.Region)
		}
	}

	total := len(blocks)
	consistency := 1.0
	coverage := 0.0
	diversity := 0.0
	if total > 0 {
		consistency = float64(total-differing) / float64(total)
		coverage = float64(differing) / float64(total)
		diversity = float64(len(distinctPatterns)-1) / float64(len(allPatterns)-1)
	}

	prob := forensics.Clamp01(0.34*diversity + 0.33*coverage + 0.33*(1-consistency))

	return &Result{
		Blocks:                  blocks,
		DominantPattern:         dominant,
		ZipperMap:               zipperMap,
		ManipulationProbability: prob,
		InconsistentRegions:     forensics.MergeRegions(inconsistent, blockStride),
	}, nil
}

// patternScore implements the channel-ratio scoring function: for each of
// the four subpixel positions in the 2x2 CFA tile, it measures how much
// the pattern's assigned native channel dominates total intensity at
// pixels sampled from that position, averaged over the block. Natural
// Bayer-demosaiced images show a small but consistent bias toward the
// native channel at its own sampling phase.
func patternScore(img image.Image, bounds image.Rectangle, bx, by int, p Pattern) float64 {
	lay := layout[p]
	var totalScore float64
	var count float64
	for dy := 0; dy < blockSize; dy++ {
		for dx := 0; dx < blockSize; dx++ {
			x := bounds.Min.X + bx + dx
			y := bounds.Min.Y + by + dy
			if x >= bounds.Max.X || y >= bounds.Max.Y {
				continue
			}
			r, g, bl, _ := img.At(x, y).RGBA()
			rf, gf, bf := float64(r>>8), float64(g>>8), float64(bl>>8)
			sum := rf + gf + bf
			if sum == 0 {
				continue
			}
			ch := lay[dy%2][dx%2]
			var native float64
			switch ch {
			case 0:
				native = rf
			case 1:
				native = gf
			case 2:
				native = bf
			}
			totalScore += native / sum
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return totalScore / count
}

func topTwo(scores map[Pattern]float64) (best, second Pattern) {
	best, second = allPatterns[0], allPatterns[0]
	bestV, secondV := math.Inf(-1), math.Inf(-1)
	for _, p := range allPatterns {
		v := scores[p]
		if v > bestV {
			second, secondV = best, bestV
			best, bestV = p, v
		} else if v > secondV {
			second, secondV = p, v
		}
	}
	return
}

// zipperArtifactMap measures demosaic "zipper" artifacts via the 2nd
// derivative magnitude of the grayscale image.
func zipperArtifactMap(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cx := secondDeriv1D(gray, x, y, 1, 0)
			cy := secondDeriv1D(gray, x, y, 0, 1)
			v := math.Hypot(cx, cy)
			if v > 255 {
				v = 255
			}
			out.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return out
}

func secondDeriv1D(gray *image.Gray, x, y, dx, dy int) float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	get := func(xx, yy int) float64 {
		xx = clamp(xx, w)
		yy = clamp(yy, h)
		return float64(gray.GrayAt(b.Min.X+xx, b.Min.Y+yy).Y)
	}
	return math.Abs(get(x-dx, y-dy) - 2*get(x, y) + get(x+dx, y+dy))
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
