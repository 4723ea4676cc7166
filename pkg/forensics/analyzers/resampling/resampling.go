// Package resampling implements periodicity-based resampling detection
// (spec.md §4.10): a second-derivative "p-map" whose row/column
// autocorrelation reveals the periodic interpolation artifacts left by
// upscaling, downscaling, or rotation.
package resampling

import (
	"image"
	"image/color"
	"math"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

// Config holds the resampling analyzer's parameters.
type Config struct {
	WindowSize float64 // default 16, max autocorrelation lag
	MinFactor  float64 // default 0.5
	MaxFactor  float64 // default 2.0
}

// DefaultConfig returns window_size=16, min_factor=0.5, max_factor=2.0.
func DefaultConfig() Config {
	return Config{WindowSize: 16, MinFactor: 0.5, MaxFactor: 2.0}
}

// Result is the resampling analyzer's output.
type Result struct {
	PMap              *image.Gray
	RowAutocorrelation []float64
	ColAutocorrelation []float64
	PeriodicPeaks      []int
	ResamplingFactor   float64
	Detected           bool
	LocalProbability   [][]float64
	ResampledRegions    []forensics.Region
}

const blockSize = 32

// Analyze runs resampling/periodicity analysis on img.
func Analyze(img image.Image, cfg Config) (*Result, error) {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 16
	}
	if cfg.MinFactor <= 0 {
		cfg.MinFactor = 0.5
	}
	if cfg.MaxFactor <= 0 {
		cfg.MaxFactor = 2.0
	}

	gray := forensics.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	window := int(cfg.WindowSize)
	if w < 2*window || h < 2*window {
		return nil, forensics.ErrImageTooSmall(2 * window)
	}

	pMap, pVals := computePMap(gray, w, h)

	rowAuto := rowAutocorrelation(pVals, w, h, window)
	colAuto := colAutocorrelation(pVals, w, h, window)

	peaksRow := periodicPeaks(rowAuto)
	peaksCol := periodicPeaks(colAuto)
	peaks := mergePeaks(peaksRow, peaksCol)

	factor := estimateFactor(peaks, cfg.MinFactor, cfg.MaxFactor)
	detected := len(peaks) > 0

	localProb, regions := localProbabilityMap(pVals, w, h)

	return &Result{
		PMap:               pMap,
		RowAutocorrelation: rowAuto,
		ColAutocorrelation: colAuto,
		PeriodicPeaks:      peaks,
		ResamplingFactor:   factor,
		Detected:           detected,
		LocalProbability:   localProb,
		ResampledRegions:   forensics.MergeRegions(regions, blockSize/2),
	}, nil
}

// computePMap scores each pixel by the average magnitude of its horizontal
// and vertical second derivative (spec.md §4.10).
func computePMap(gray *image.Gray, w, h int) (*image.Gray, []float64) {
	out := image.NewGray(image.Rect(0, 0, w, h))
	vals := make([]float64, w*h)
	b := gray.Bounds()
	get := func(x, y int) float64 {
		x = clampIndex(x, w)
		y = clampIndex(y, h)
		return float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d2x := math.Abs(get(x-1, y) - 2*get(x, y) + get(x+1, y))
			d2y := math.Abs(get(x, y-1) - 2*get(x, y) + get(x, y+1))
			v := (d2x + d2y) / 2
			vals[y*w+x] = v
			out.SetGray(x, y, color.Gray{Y: clampByte(v)})
		}
	}
	return out, vals
}

// rowAutocorrelation computes, for each lag 1..window, the mean-removed
// autocorrelation of each row averaged across all rows, normalized by
// variance only (not divided further by lag count), per the resolved
// normalization convention.
func rowAutocorrelation(vals []float64, w, h, window int) []float64 {
	out := make([]float64, window+1)
	for lag := 1; lag <= window; lag++ {
		var num, den float64
		for y := 0; y < h; y++ {
			row := vals[y*w : (y+1)*w]
			mean := meanOf(row)
			var rowNum, rowDen float64
			for x := 0; x+lag < w; x++ {
				rowNum += (row[x] - mean) * (row[x+lag] - mean)
			}
			for x := 0; x < w; x++ {
				rowDen += (row[x] - mean) * (row[x] - mean)
			}
			num += rowNum
			den += rowDen
		}
		if den == 0 {
			out[lag] = 0
			continue
		}
		out[lag] = num / den
	}
	return out
}

func colAutocorrelation(vals []float64, w, h, window int) []float64 {
	out := make([]float64, window+1)
	col := make([]float64, h)
	for lag := 1; lag <= window; lag++ {
		var num, den float64
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				col[y] = vals[y*w+x]
			}
			mean := meanOf(col)
			var colNum, colDen float64
			for y := 0; y+lag < h; y++ {
				colNum += (col[y] - mean) * (col[y+lag] - mean)
			}
			for y := 0; y < h; y++ {
				colDen += (col[y] - mean) * (col[y] - mean)
			}
			num += colNum
			den += colDen
		}
		if den == 0 {
			out[lag] = 0
			continue
		}
		out[lag] = num / den
	}
	return out
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// periodicPeaks returns lags whose autocorrelation is a local maximum
// exceeding 0.1 (spec.md §4.10).
func periodicPeaks(auto []float64) []int {
	var peaks []int
	for lag := 2; lag < len(auto)-1; lag++ {
		if auto[lag] <= 0.1 {
			continue
		}
		if auto[lag] >= auto[lag-1] && auto[lag] >= auto[lag+1] {
			peaks = append(peaks, lag)
		}
	}
	return peaks
}

func mergePeaks(a, b []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, lags := range [][]int{a, b} {
		for _, l := range lags {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

// estimateFactor maps the smallest periodic lag to a resampling factor
// 1/lag, clamped to [min_factor,max_factor] (spec.md §4.10).
func estimateFactor(peaks []int, minFactor, maxFactor float64) float64 {
	if len(peaks) == 0 {
		return 1.0
	}
	smallest := peaks[0]
	for _, p := range peaks {
		if p < smallest {
			smallest = p
		}
	}
	factor := 1.0 / float64(smallest)
	if factor < minFactor {
		factor = minFactor
	}
	if factor > maxFactor {
		factor = maxFactor
	}
	return factor
}

// localProbabilityMap scores each block_size x block_size block by its
// p-map variance divided by 1000, clamped to [0,1], flagging blocks over
// 0.5 as resampled regions (spec.md §4.10).
func localProbabilityMap(vals []float64, w, h int) ([][]float64, []forensics.Region) {
	rows := (h + blockSize - 1) / blockSize
	cols := (w + blockSize - 1) / blockSize
	probs := make([][]float64, rows)
	var regions []forensics.Region

	for by := 0; by < rows; by++ {
		probs[by] = make([]float64, cols)
		y0 := by * blockSize
		rowsN := min(blockSize, h-y0)
		for bx := 0; bx < cols; bx++ {
			x0 := bx * blockSize
			colsN := min(blockSize, w-x0)

			var sum, sumSq, n float64
			for dy := 0; dy < rowsN; dy++ {
				for dx := 0; dx < colsN; dx++ {
					v := vals[(y0+dy)*w+(x0+dx)]
					sum += v
					sumSq += v * v
					n++
				}
			}
			mean := sum / n
			variance := sumSq/n - mean*mean
			if variance < 0 {
				variance = 0
			}
			p := forensics.Clamp01(variance / 1000)
			probs[by][bx] = p
			if p > 0.5 {
				regions = append(regions, forensics.Region{X: x0, Y: y0, Width: colsN, Height: rowsN})
			}
		}
	}
	return probs, regions
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

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
