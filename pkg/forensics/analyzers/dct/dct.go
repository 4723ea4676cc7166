// Package dct implements block-level DCT/Benford-adjacent statistics
// (spec.md §4.6): per-8x8-block separable DCT-II, an AC-coefficient
// histogram and its periodicity, quantization-step estimation, a JPEG
// quality estimate derived from it, a double-compression probability, and
// anomalous-energy regions.
package dct

import (
	"image"
	"math"
	"sort"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

// Config holds the DCT analyzer's parameters.
type Config struct {
	AnomalyZThreshold float64 // default 2.5
}

// DefaultConfig returns anomaly_z_threshold=2.5.
func DefaultConfig() Config { return Config{AnomalyZThreshold: 2.5} }

// standardLuminanceQ50 is the standard JPEG luminance quantization table
// at quality 50 (ITU-T T.81 Annex K), used as the reference point for
// quality estimation.
var standardLuminanceQ50 = [8][8]int{
	{16, 11, 10, 16, 24, 40, 51, 61},
	{12, 12, 14, 19, 26, 58, 60, 55},
	{14, 13, 16, 24, 40, 57, 69, 56},
	{14, 17, 22, 29, 51, 87, 80, 62},
	{18, 22, 37, 56, 68, 109, 103, 77},
	{24, 35, 55, 64, 81, 104, 113, 92},
	{49, 64, 78, 87, 103, 121, 120, 101},
	{72, 92, 95, 98, 112, 100, 103, 99},
}

// Result is the DCT analyzer's output.
type Result struct {
	ACHistogram                 [256]int
	HistogramPeriodicity        float64
	QuantizationTable           [8][8]float64
	PrimaryQuality               int
	DoubleCompressionProbability float64
	Regions                      []forensics.Region
}

// Analyze runs the DCT/statistics battery on img.
func Analyze(img image.Image, cfg Config) (*Result, error) {
	if cfg.AnomalyZThreshold <= 0 {
		cfg.AnomalyZThreshold = 2.5
	}
	gray := forensics.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 8 || h < 8 {
		return nil, forensics.ErrImageTooSmall(8)
	}

	positions := forensics.BlockPositions(w, h, 8, 8)
	if len(positions) == 0 {
		return nil, forensics.ErrAnalysisFailed("no full 8x8 blocks available")
	}

	blockCoeffs := make([][8][8]float64, len(positions))
	for i, pos := range positions {
		blockCoeffs[i] = dctBlock(gray, pos[0], pos[1])
	}

	var hist [256]int
	for _, c := range blockCoeffs {
		bin := int(math.Round(c[0][1])) + 128
		if bin < 0 {
			bin = 0
		}
		if bin > 255 {
			bin = 255
		}
		hist[bin]++
	}
	periodicity := histogramPeriodicity(hist)

	quantTable := estimateQuantTable(blockCoeffs)
	quality := estimateQuality(quantTable)

	coeffAnomaly := coefficientAnomalyScore(quantTable)
	energyVarianceScore := blockEnergyVarianceScore(blockCoeffs)

	doubleProb := forensics.Clamp01(0.4*periodicity + 0.3*coeffAnomaly + 0.3*energyVarianceScore)

	regions := anomalousRegions(blockCoeffs, positions, cfg.AnomalyZThreshold)

	return &Result{
		ACHistogram:                  hist,
		HistogramPeriodicity:         periodicity,
		QuantizationTable:            quantTable,
		PrimaryQuality:               quality,
		DoubleCompressionProbability: doubleProb,
		Regions:                      forensics.MergeRegions(regions, 4),
	}, nil
}

// dctBlock computes the separable 2-D DCT-II of an 8x8 block (centered by
// subtracting 128), clipping at the image boundary via ExtractBlock.
func dctBlock(gray *image.Gray, x, y int) [8][8]float64 {
	blk := forensics.ExtractBlock(gray, x, y, 8)
	var centered [8][8]float64
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			if i < len(blk) && j < len(blk[i]) {
				centered[i][j] = float64(blk[i][j]) - 128
			}
		}
	}
	return dct2D(centered)
}

func dct2D(in [8][8]float64) [8][8]float64 {
	var tmp, out [8][8]float64
	for i := 0; i < 8; i++ {
		row := dct1D8(in[i])
		tmp[i] = row
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

// histogramPeriodicity returns the max normalized autocorrelation of hist
// at lags 2..19 (spec.md §4.6).
func histogramPeriodicity(hist [256]int) float64 {
	n := len(hist)
	f := make([]float64, n)
	var mean float64
	for i, v := range hist {
		f[i] = float64(v)
		mean += f[i]
	}
	mean /= float64(n)
	var variance float64
	for _, v := range f {
		variance += (v - mean) * (v - mean)
	}
	if variance == 0 {
		return 0
	}

	best := 0.0
	for lag := 2; lag <= 19; lag++ {
		var num float64
		count := 0
		for i := lag; i < n; i++ {
			num += (f[i] - mean) * (f[i-lag] - mean)
			count++
		}
		if count == 0 {
			continue
		}
		corr := num / variance
		if corr > best {
			best = corr
		}
	}
	return forensics.Clamp01(best)
}

// estimateQuantTable estimates, per (u,v) position except DC, the
// quantization step as the median non-zero absolute-value gap across
// blocks (spec.md §4.6), clamped to >= 1.
func estimateQuantTable(blocks [][8][8]float64) [8][8]float64 {
	var table [8][8]float64
	table[0][0] = 1 // DC left unestimated; not used by quality estimation below
	for u := 0; u < 8; u++ {
		for v := 0; v < 8; v++ {
			if u == 0 && v == 0 {
				continue
			}
			vals := make([]float64, 0, len(blocks))
			for _, b := range blocks {
				av := math.Abs(b[u][v])
				if av > 1e-9 {
					vals = append(vals, av)
				}
			}
			sort.Float64s(vals)
			step := 1.0
			if len(vals) >= 2 {
				gaps := make([]float64, 0, len(vals)-1)
				for i := 1; i < len(vals); i++ {
					gaps = append(gaps, vals[i]-vals[i-1])
				}
				sort.Float64s(gaps)
				step = gaps[len(gaps)/2]
			}
			if step < 1 {
				step = 1
			}
			table[u][v] = step
		}
	}
	return table
}

// estimateQuality compares the estimated table to the standard luminance
// table at q=50 element-wise (spec.md §4.6).
func estimateQuality(table [8][8]float64) int {
	var ratioSum float64
	var n float64
	for u := 0; u < 8; u++ {
		for v := 0; v < 8; v++ {
			if u == 0 && v == 0 {
				continue
			}
			std := float64(standardLuminanceQ50[u][v])
			if std == 0 {
				continue
			}
			ratioSum += table[u][v] / std
			n++
		}
	}
	if n == 0 {
		return 50
	}
	r := ratioSum / n
	var q float64
	if r < 1 {
		q = 50 * (1 + (1 - r))
	} else {
		q = 50 / r
	}
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	return int(math.Round(q))
}

// coefficientAnomalyScore penalizes zero-ratios outside [0.5, 0.855]
// (spec.md §4.6), here approximated from the share of near-zero AC
// coefficients implied by the estimated quantization steps.
func coefficientAnomalyScore(table [8][8]float64) float64 {
	var sum float64
	var n float64
	for u := 0; u < 8; u++ {
		for v := 0; v < 8; v++ {
			if u == 0 && v == 0 {
				continue
			}
			sum += table[u][v]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	avgStep := sum / n
	// A crude but monotone proxy for "zero ratio": larger quantization
	// steps push more coefficients to zero.
	zeroRatio := forensics.Clamp01(avgStep / 32)
	if zeroRatio >= 0.5 && zeroRatio <= 0.855 {
		return 0
	}
	if zeroRatio < 0.5 {
		return (0.5 - zeroRatio) / 0.5
	}
	return (zeroRatio - 0.855) / (1 - 0.855)
}

// blockEnergyVarianceScore scores how variable per-block AC energy is,
// normalized to [0,1].
func blockEnergyVarianceScore(blocks [][8][8]float64) float64 {
	energies := make([]float64, len(blocks))
	for i, b := range blocks {
		var e float64
		for u := 0; u < 8; u++ {
			for v := 0; v < 8; v++ {
				if u == 0 && v == 0 {
					continue
				}
				e += b[u][v] * b[u][v]
			}
		}
		energies[i] = e
	}
	mean, std := meanStd(energies)
	if mean == 0 {
		return 0
	}
	return forensics.Clamp01(std / (mean + 1))
}

func meanStd(vals []float64) (mean, std float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean = sum / float64(len(vals))
	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	variance := sq / float64(len(vals))
	if variance < 0 {
		variance = 0
	}
	std = math.Sqrt(variance)
	return
}

// anomalousRegions flags 8x8 blocks whose DCT energy z-score exceeds
// threshold (spec.md §4.6).
func anomalousRegions(blocks [][8][8]float64, positions [][2]int, threshold float64) []forensics.Region {
	energies := make([]float64, len(blocks))
	for i, b := range blocks {
		var e float64
		for u := 0; u < 8; u++ {
			for v := 0; v < 8; v++ {
				if u == 0 && v == 0 {
					continue
				}
				e += b[u][v] * b[u][v]
			}
		}
		energies[i] = e
	}
	mean, std := meanStd(energies)
	var regions []forensics.Region
	if std == 0 {
		return regions
	}
	for i, e := range energies {
		z := (e - mean) / std
		if z > threshold {
			pos := positions[i]
			regions = append(regions, forensics.Region{X: pos[0], Y: pos[1], Width: 8, Height: 8})
		}
	}
	return regions
}
