// Package prnu implements sensor-noise fingerprint analysis (spec.md §4.9):
// extract a wavelet-denoised noise residual, reweight it by pixel intensity,
// and flag blocks whose residual energy is low relative to the other blocks.
package prnu

import (
	"math"
	"sort"
)

// forward1D performs a 1D forward 5/3-style lifting transform in place,
// generalized to float64 (the teacher's version operates on int coefficients
// for reversible integer coding; here sub-integer noise residuals matter, so
// the predict/update steps keep full precision). Output has low-pass
// coefficients followed by high-pass coefficients.
func forward1D(signal []float64) {
	n := len(signal)
	if n < 2 {
		return
	}
	half := (n + 1) / 2
	low := make([]float64, half)
	high := make([]float64, n-half)

	for i := 0; i < half; i++ {
		low[i] = signal[2*i]
	}
	for i := 0; i < len(high); i++ {
		high[i] = signal[2*i+1]
	}

	// Predict step: high[i] -= (low[i] + low[i+1]) / 2
	for i := 0; i < len(high); i++ {
		left := low[i]
		right := left
		if i+1 < half {
			right = low[i+1]
		}
		high[i] -= (left + right) / 2
	}
	// Update step: low[i] += (high[i-1] + high[i]) / 4
	for i := 0; i < half; i++ {
		left := 0.0
		if i > 0 {
			left = high[i-1]
		} else if len(high) > 0 {
			left = high[0]
		}
		right := left
		if i < len(high) {
			right = high[i]
		}
		low[i] += (left + right) / 4
	}

	copy(signal[:half], low)
	copy(signal[half:], high)
}

// inverse1D is forward1D's inverse.
func inverse1D(signal []float64) {
	n := len(signal)
	if n < 2 {
		return
	}
	half := (n + 1) / 2
	low := make([]float64, half)
	high := make([]float64, n-half)
	copy(low, signal[:half])
	copy(high, signal[half:])

	for i := 0; i < half; i++ {
		left := 0.0
		if i > 0 {
			left = high[i-1]
		} else if len(high) > 0 {
			left = high[0]
		}
		right := left
		if i < len(high) {
			right = high[i]
		}
		low[i] -= (left + right) / 4
	}
	for i := 0; i < len(high); i++ {
		left := low[i]
		right := left
		if i+1 < half {
			right = low[i+1]
		}
		high[i] += (left + right) / 2
	}

	for i := 0; i < half; i++ {
		signal[2*i] = low[i]
	}
	for i := 0; i < len(high); i++ {
		signal[2*i+1] = high[i]
	}
}

// forward2D transforms data (row-major, width x height) in place, producing
// LL/HL/LH/HH subbands the way the teacher's integer Forward2D does.
func forward2D(data []float64, width, height int) {
	if width < 2 || height < 2 {
		return
	}
	row := make([]float64, width)
	for y := 0; y < height; y++ {
		offset := y * width
		copy(row, data[offset:offset+width])
		forward1D(row)
		copy(data[offset:offset+width], row)
	}
	col := make([]float64, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = data[y*width+x]
		}
		forward1D(col)
		for y := 0; y < height; y++ {
			data[y*width+x] = col[y]
		}
	}
}

// inverse2D is forward2D's inverse.
func inverse2D(data []float64, width, height int) {
	if width < 2 || height < 2 {
		return
	}
	col := make([]float64, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = data[y*width+x]
		}
		inverse1D(col)
		for y := 0; y < height; y++ {
			data[y*width+x] = col[y]
		}
	}
	row := make([]float64, width)
	for y := 0; y < height; y++ {
		offset := y * width
		copy(row, data[offset:offset+width])
		inverse1D(row)
		copy(data[offset:offset+width], row)
	}
}

// forwardLLRegion runs forward2D over the top-left llWidth x llHeight
// region of a width-stride buffer (the active LL region at one level).
func forwardLLRegion(data []float64, stride, llWidth, llHeight int) {
	region := make([]float64, llWidth*llHeight)
	for y := 0; y < llHeight; y++ {
		copy(region[y*llWidth:(y+1)*llWidth], data[y*stride:y*stride+llWidth])
	}
	forward2D(region, llWidth, llHeight)
	for y := 0; y < llHeight; y++ {
		copy(data[y*stride:y*stride+llWidth], region[y*llWidth:(y+1)*llWidth])
	}
}

func inverseLLRegion(data []float64, stride, llWidth, llHeight int) {
	region := make([]float64, llWidth*llHeight)
	for y := 0; y < llHeight; y++ {
		copy(region[y*llWidth:(y+1)*llWidth], data[y*stride:y*stride+llWidth])
	}
	inverse2D(region, llWidth, llHeight)
	for y := 0; y < llHeight; y++ {
		copy(data[y*stride:y*stride+llWidth], region[y*llWidth:(y+1)*llWidth])
	}
}

// waveletDenoise runs a `levels`-level 2D decomposition, soft-thresholds the
// detail subbands produced at the finest level (the teacher's
// ForwardMultiLevel/InverseMultiLevel loop, generalized to float64 with a
// denoising step at the finest scale instead of lossless round-tripping),
// and reconstructs. Returns a same-size denoised copy of data.
func waveletDenoise(data []float64, width, height, levels int, threshold float64) []float64 {
	out := append([]float64(nil), data...)

	llWidth, llHeight := width, height
	dims := make([][2]int, 0, levels+1)
	dims = append(dims, [2]int{width, height})
	actualLevels := 0
	for level := 0; level < levels; level++ {
		if llWidth < 2 || llHeight < 2 {
			break
		}
		forwardLLRegion(out, width, llWidth, llHeight)
		llWidth = (llWidth + 1) / 2
		llHeight = (llHeight + 1) / 2
		dims = append(dims, [2]int{llWidth, llHeight})
		actualLevels++
	}

	if actualLevels == 0 {
		return out
	}

	// Soft-threshold the finest-level detail subbands (HL/LH/HH of level 0),
	// which occupy the complement of the level-1 LL region within the
	// full width x height buffer.
	firstLLWidth, firstLLHeight := dims[1][0], dims[1][1]
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < firstLLWidth && y < firstLLHeight {
				continue
			}
			idx := y*width + x
			out[idx] = softThreshold(out[idx], threshold)
		}
	}

	for level := actualLevels - 1; level >= 0; level-- {
		lw, lh := dims[level][0], dims[level][1]
		if lw < 2 || lh < 2 {
			continue
		}
		inverseLLRegion(out, width, lw, lh)
	}

	return out
}

func softThreshold(v, threshold float64) float64 {
	if v > threshold {
		return v - threshold
	}
	if v < -threshold {
		return v + threshold
	}
	return 0
}

// madThreshold estimates a universal soft-threshold (sigma * sqrt(2*ln(n)))
// from the median absolute deviation of the finest-level detail subband
// values, the classical Donoho-Johnstone rule.
func madThreshold(detail []float64) float64 {
	if len(detail) == 0 {
		return 0
	}
	abs := make([]float64, len(detail))
	for i, v := range detail {
		abs[i] = math.Abs(v)
	}
	sigma := median(abs) / 0.6745
	n := float64(len(detail))
	return sigma * math.Sqrt(2*math.Log(n))
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
