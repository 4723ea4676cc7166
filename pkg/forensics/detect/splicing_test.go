package detect

import (
	"image"
	"image/color"
	"testing"

	"github.com/kschiffer/imgforensics/pkg/forensics"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/ela"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/noise"
	"github.com/stretchr/testify/assert"
)

// patchedImage paints a uniform gray background with a distinctly colored,
// sharp-bordered square patch, mimicking a pasted-in region: the patch
// diverges from the background's color histogram. With patch bounds on
// 16-pixel block boundaries its edges fall on block borders, so
// edgeRegularityRegions flags no block of it.
func patchedImage(n, patchMin, patchMax int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 120, G: 120, B: 120, A: 255})
		}
	}
	for y := patchMin; y < patchMax; y++ {
		for x := patchMin; x < patchMax; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 10, G: 200, B: 30, A: 255})
		}
	}
	return img
}

func TestColorSuspiciousRegionsFlagsDivergentPatch(t *testing.T) {
	img := patchedImage(64, 16, 48)
	regions := colorSuspiciousRegions(img, 1.0)
	assert.NotEmpty(t, regions)
	foundInsidePatch := false
	for _, r := range regions {
		if r.X >= 16 && r.X < 48 && r.Y >= 16 && r.Y < 48 {
			foundInsidePatch = true
		}
	}
	assert.True(t, foundInsidePatch, "expected a flagged block inside the painted patch")
}

func TestColorSuspiciousRegionsEmptyOnUniformImage(t *testing.T) {
	img := patchedImage(64, 0, 0)
	regions := colorSuspiciousRegions(img, 1.0)
	assert.Empty(t, regions)
}

// spikeImage paints a uniform gray background with a single bright
// 1-pixel-wide vertical line at column spikeX. A single vertical line
// produces two symmetric Sobel-magnitude peaks (one on either side of
// the line) with one interval between them — zero variance, so
// peakRegularity reports maximal regularity for the block containing it.
func spikeImage(n, spikeX int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := uint8(120)
			if x == spikeX {
				v = 240
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestEdgeRegularityRegionsFlagsSpikeColumn(t *testing.T) {
	img := spikeImage(64, 20)
	regions := edgeRegularityRegions(img)
	assert.NotEmpty(t, regions)
	foundInSpikeColumn := false
	for _, r := range regions {
		if r.X == 16 {
			foundInSpikeColumn = true
		}
	}
	assert.True(t, foundInSpikeColumn, "expected the block column containing the spike's two symmetric edges to be flagged")
}

func TestPeakRegularityRequiresTwoPeaks(t *testing.T) {
	assert.Zero(t, peakRegularity([]float64{1, 2, 3}))
	assert.Zero(t, peakRegularity(nil))
}

func TestDetectSplicingRequiresTwoCorroboratingSignals(t *testing.T) {
	img := patchedImage(64, 16, 48)
	r := &DetectionResult{} // no Noise/ELA signals at all
	cfg := DefaultAnalysisConfig()
	cfg.MinRegionSize = 64

	manipulations := detectSplicing(img, r, cfg)
	// edge-regularity alone is only one corroborating signal; with no
	// Noise/ELA results present, fewer than 2 signals can corroborate.
	assert.Empty(t, manipulations)
}

func TestDetectSplicingEmitsWithNoiseAndELACorroboration(t *testing.T) {
	img := patchedImage(64, 16, 48)
	patchRegion := forensics.Region{X: 16, Y: 16, Width: 32, Height: 32}
	r := &DetectionResult{
		Noise: &noise.Result{Regions: []forensics.Region{patchRegion}},
		ELA:   &ela.Result{Regions: []forensics.Region{patchRegion}},
	}
	cfg := DefaultAnalysisConfig()
	cfg.MinRegionSize = 64

	manipulations := detectSplicing(img, r, cfg)
	require := assert.New(t)
	require.NotEmpty(manipulations)
	for _, m := range manipulations {
		require.Equal(KindSplicing, m.Kind)
		require.Contains(m.Evidence, "color")
		require.GreaterOrEqual(len(m.Evidence), 3) // color + noise + ELA
	}
}
