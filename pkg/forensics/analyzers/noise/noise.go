// Package noise implements noise-inconsistency analysis (spec.md §4.4):
// Gaussian-smooth the image, take the residual as a noise map, and flag
// blocks whose local variance strays far from the global noise level.
package noise

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

// Config holds the noise analyzer's parameters.
type Config struct {
	BlockSize   int     // default 16
	Sensitivity float64 // default 2
}

// DefaultConfig returns block_size=16, sensitivity=2.
func DefaultConfig() Config { return Config{BlockSize: 16, Sensitivity: 2} }

// Result is the noise analyzer's output.
type Result struct {
	NoiseMap      *image.Gray
	LocalVariance [][]float64
	GlobalLevel   float64
	Regions       []forensics.Region
	Inconsistency float64
}

// Analyze runs noise-inconsistency analysis on img with cfg.
func Analyze(img image.Image, cfg Config) (*Result, error) {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 16
	}
	if cfg.Sensitivity <= 0 {
		cfg.Sensitivity = 2
	}
	gray := forensics.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	minDim := 2 * cfg.BlockSize
	if w < minDim || h < minDim {
		return nil, forensics.ErrImageTooSmall(minDim)
	}

	blurred := forensics.GaussianBlur3x3(gray)
	noiseMap := image.NewGray(image.Rect(0, 0, w, h))
	noiseVals := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Abs(float64(gray.GrayAt(x, y).Y) - float64(blurred.GrayAt(x, y).Y))
			noiseMap.SetGray(x, y, color.Gray{Y: clampByte(d)})
			noiseVals = append(noiseVals, d)
		}
	}

	globalLevel := madSigma(noiseVals)

	// Local variance over an N×N sliding window, stride N, matching the
	// block grid the anomaly check runs over.
	n := cfg.BlockSize
	localVariance := make([][]float64, (h+n-1)/n)
	for by := range localVariance {
		localVariance[by] = make([]float64, (w+n-1)/n)
	}

	var regions []forensics.Region
	var anomalous, total int
	for by, y := 0, 0; y < h; by, y = by+1, y+n {
		for bx, x := 0, 0; x < w; bx, x = bx+1, x+n {
			rows := min(n, h-y)
			cols := min(n, w-x)
			var sum, sumSq, count float64
			for dy := 0; dy < rows; dy++ {
				for dx := 0; dx < cols; dx++ {
					v := float64(noiseMap.GrayAt(x+dx, y+dy).Y)
					sum += v
					sumSq += v * v
					count++
				}
			}
			mean := sum / count
			variance := sumSq/count - mean*mean
			if variance < 0 {
				variance = 0
			}
			std := math.Sqrt(variance)
			localVariance[by][bx] = std

			total++
			lower := globalLevel / cfg.Sensitivity
			upper := globalLevel * cfg.Sensitivity
			if std < lower || std > upper {
				anomalous++
				regions = append(regions, forensics.Region{X: x, Y: y, Width: cols, Height: rows})
			}
		}
	}

	inconsistency := 0.0
	if total > 0 {
		inconsistency = float64(anomalous) / float64(total)
	}

	return &Result{
		NoiseMap:      noiseMap,
		LocalVariance: localVariance,
		GlobalLevel:   globalLevel,
		Regions:       forensics.MergeRegions(regions, n/2),
		Inconsistency: forensics.Clamp01(inconsistency),
	}, nil
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

// madSigma returns 1.4826 * median absolute deviation of vals, a robust
// estimate of the standard deviation (spec.md §4.4).
func madSigma(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	median := percentile(sorted)

	devs := make([]float64, len(vals))
	for i, v := range vals {
		devs[i] = math.Abs(v - median)
	}
	sort.Float64s(devs)
	mad := percentile(devs)
	return 1.4826 * mad
}

func percentile(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
