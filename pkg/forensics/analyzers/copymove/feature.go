package copymove

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// featureLen is the number of magnitude coefficients kept as the
// per-block feature vector (spec.md §4.3 step 3).
const featureLen = 16

// blockFeature computes the forward-FFT-magnitude feature vector for a
// flattened n×n grayscale block (spec.md §9's Source Ambiguity note
// sanctions any energy-compacting transform with the same
// discriminative behavior; this module uses a true forward FFT via
// gonum.org/v1/gonum/dsp/fourier rather than a separable DCT-II).
func blockFeature(block []float64) [featureLen]float64 {
	fft := fourier.NewFFT(len(block))
	coeffs := fft.Coefficients(nil, block)
	var feat [featureLen]float64
	for i := 0; i < featureLen && i < len(coeffs); i++ {
		feat[i] = cmplxAbs(coeffs[i])
	}
	return feat
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// hash64 converts a feature vector to a 64-bit hash: bit i = 1 iff
// feat[i] > mean(feat) (spec.md §4.3 step 4). Only the first 64 entries
// (or fewer, if featureLen < 64) contribute bits.
func hash64(feat [featureLen]float64) uint64 {
	var sum float64
	for _, v := range feat {
		sum += v
	}
	mean := sum / float64(len(feat))
	var h uint64
	for i, v := range feat {
		if v > mean {
			h |= 1 << uint(i)
		}
	}
	return h
}

// pearson returns the Pearson correlation coefficient of two equal-length
// feature vectors, via gonum.org/v1/gonum/stat.Correlation.
func pearson(a, b [featureLen]float64) float64 {
	as := a[:]
	bs := b[:]
	varA := stat.Variance(as, nil)
	varB := stat.Variance(bs, nil)
	if varA == 0 || varB == 0 {
		return 0
	}
	return stat.Correlation(as, bs, nil)
}
