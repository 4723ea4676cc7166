// Package benford implements first-digit distribution analysis (spec.md
// §4.12): natural-image DCT AC coefficients follow Benford's law, and
// deviation from it is a signal of localized digital processing.
package benford

import (
	"image"
	"math"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

// Config holds the Benford analyzer's parameters.
type Config struct {
	ChiSquareThreshold float64 // default 15
}

// DefaultConfig returns chi_square_threshold=15.
func DefaultConfig() Config { return Config{ChiSquareThreshold: 15} }

// Result is the Benford analyzer's output.
type Result struct {
	DigitDistribution       [9]float64
	ExpectedDistribution    [9]float64
	ChiSquare               float64
	ConformityScore         float64
	DeviationMap            [][]float64
	ManipulationProbability float64
}

const blockSize = 64
const blockStride = 32

// Analyze runs Benford's-law digit-distribution analysis on img.
func Analyze(img image.Image, cfg Config) (*Result, error) {
	if cfg.ChiSquareThreshold <= 0 {
		cfg.ChiSquareThreshold = 15
	}

	gray := forensics.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 8 || h < 8 {
		return nil, forensics.ErrImageTooSmall(8)
	}

	expected := expectedDistribution()

	globalDigits := [9]int{}
	var globalTotal int
	for _, pos := range forensics.BlockPositions(w, h, 8, 8) {
		coeffs := acCoefficients(gray, pos[0], pos[1])
		for _, c := range coeffs {
			d := firstDigit(c)
			if d >= 1 && d <= 9 {
				globalDigits[d-1]++
				globalTotal++
			}
		}
	}

	digitDist := normalizeDigits(globalDigits, globalTotal)
	chiSquare := chiSquareStat(globalDigits, globalTotal, expected)
	conformity := forensics.Clamp01(1 - chiSquare/30)

	deviationMap, anomalous := blockDeviationMap(gray, w, h, expected, cfg.ChiSquareThreshold)

	coverage := 0.0
	totalBlocks := 0
	for _, row := range deviationMap {
		totalBlocks += len(row)
	}
	if totalBlocks > 0 {
		coverage = float64(anomalous) / float64(totalBlocks)
	}

	prob := forensics.Clamp01(0.5*math.Min(1, chiSquare/30) + 0.5*math.Min(1, 2*coverage))

	return &Result{
		DigitDistribution:       digitDist,
		ExpectedDistribution:    expected,
		ChiSquare:               chiSquare,
		ConformityScore:         conformity,
		DeviationMap:            deviationMap,
		ManipulationProbability: prob,
	}, nil
}

// expectedDistribution returns Benford's law log10(1+1/d) for d=1..9.
func expectedDistribution() [9]float64 {
	var out [9]float64
	for d := 1; d <= 9; d++ {
		out[d-1] = math.Log10(1 + 1/float64(d))
	}
	return out
}

// acCoefficients returns the 8x8 block's DCT AC coefficients (all except
// DC) with magnitude >= 1.
func acCoefficients(gray *image.Gray, x, y int) []float64 {
	blk := forensics.ExtractBlock(gray, x, y, 8)
	var centered [8][8]float64
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			if i < len(blk) && j < len(blk[i]) {
				centered[i][j] = float64(blk[i][j]) - 128
			}
		}
	}
	coeffs := dct2D(centered)
	out := make([]float64, 0, 63)
	for u := 0; u < 8; u++ {
		for v := 0; v < 8; v++ {
			if u == 0 && v == 0 {
				continue
			}
			if math.Abs(coeffs[u][v]) >= 1 {
				out = append(out, coeffs[u][v])
			}
		}
	}
	return out
}

func dct2D(in [8][8]float64) [8][8]float64 {
	var tmp, out [8][8]float64
	for i := 0; i < 8; i++ {
		tmp[i] = dct1D8(in[i])
	}
	for j := 0; j < 8; j++ {
		var col [8]float64
		for i := 0; i < 8; i++ {
			col[i] = tmp[i][j]
		}
		col = dct1D8(col)
		for i := 0; i < 8; i++ {
			out[i][j] = col[i]
		}
	}
	return out
}

func dct1D8(in [8]float64) [8]float64 {
	var out [8]float64
	for u := 0; u < 8; u++ {
		var sum float64
		for x := 0; x < 8; x++ {
			sum += in[x] * math.Cos(math.Pi/8*(float64(x)+0.5)*float64(u))
		}
		cu := 1.0
		if u == 0 {
			cu = 1.0 / math.Sqrt2
		}
		out[u] = 0.5 * cu * sum
	}
	return out
}

// firstDigit returns the leading significant decimal digit of |v|, or 0 if
// v rounds to zero.
func firstDigit(v float64) int {
	v = math.Abs(v)
	if v < 1e-9 {
		return 0
	}
	for v >= 10 {
		v /= 10
	}
	for v < 1 {
		v *= 10
	}
	return int(v)
}

func normalizeDigits(counts [9]int, total int) [9]float64 {
	var out [9]float64
	if total == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = float64(c) / float64(total)
	}
	return out
}

// chiSquareStat computes Pearson's chi-square goodness-of-fit statistic
// between observed digit counts and Benford's expected proportions.
func chiSquareStat(counts [9]int, total int, expected [9]float64) float64 {
	if total == 0 {
		return 0
	}
	var chi float64
	for i, c := range counts {
		exp := expected[i] * float64(total)
		if exp == 0 {
			continue
		}
		diff := float64(c) - exp
		chi += diff * diff / exp
	}
	return chi
}

// blockDeviationMap computes, per 64x64 stride-32 block, the chi-square
// deviation from Benford's law, flagging blocks above threshold.
func blockDeviationMap(gray *image.Gray, w, h int, expected [9]float64, threshold float64) ([][]float64, int) {
	positions := forensics.BlockPositions(w, h, blockSize, blockStride)
	rows := (h+blockStride-1)/blockStride
	cols := (w+blockStride-1)/blockStride
	deviationMap := make([][]float64, rows)
	for i := range deviationMap {
		deviationMap[i] = make([]float64, cols)
	}

	var anomalous int
	for _, pos := range positions {
		bx, by := pos[0], pos[1]
		digits := [9]int{}
		var total int
		for _, sub := range forensics.BlockPositions(min(blockSize, w-bx), min(blockSize, h-by), 8, 8) {
			coeffs := acCoefficients(gray, bx+sub[0], by+sub[1])
			for _, c := range coeffs {
				d := firstDigit(c)
				if d >= 1 && d <= 9 {
					digits[d-1]++
					total++
				}
			}
		}
		chi := chiSquareStat(digits, total, expected)
		row, col := by/blockStride, bx/blockStride
		if row < rows && col < cols {
			deviationMap[row][col] = chi
		}
		if chi > threshold {
			anomalous++
		}
	}
	return deviationMap, anomalous
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
