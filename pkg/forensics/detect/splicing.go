package detect

import (
	"image"
	"math"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

// splicingBlockSize is the block granularity spec.md §4.14 names for both
// the color-histogram and edge-regularity passes.
const splicingBlockSize = 16

// detectSplicing runs the two L2-internal analyses spec.md §4.14
// describes (color-histogram inconsistency, edge-regularity) and
// corroborates each color-suspicious region against edge, Noise and ELA
// signals: a region is only promoted to a Splicing hypothesis once at
// least two of those three corroborate it.
func detectSplicing(img image.Image, r *DetectionResult, cfg AnalysisConfig) []DetectedManipulation {
	colorSensitivity := cfg.ColorSensitivity
	if colorSensitivity <= 0 {
		colorSensitivity = 1.0
	}

	colorRegions := colorSuspiciousRegions(img, colorSensitivity)
	if len(colorRegions) == 0 {
		return nil
	}
	edgeRegions := edgeRegularityRegions(img)

	var noiseRegions, elaRegions []forensics.Region
	if r.Noise != nil {
		noiseRegions = r.Noise.Regions
	}
	if r.ELA != nil {
		elaRegions = r.ELA.Regions
	}

	type candidate struct {
		region   forensics.Region
		evidence []string
		score    float64
	}
	var candidates []candidate
	for _, cr := range colorRegions {
		evidence := []string{"color"}
		var score float64
		if overlapsAny(cr, edgeRegions) {
			evidence = append(evidence, "edge")
			score += 0.25
		}
		if overlapsAny(cr, noiseRegions) {
			evidence = append(evidence, "noise")
			score += 0.25
		}
		if overlapsAny(cr, elaRegions) {
			evidence = append(evidence, "ELA")
			score += 0.25
		}
		if len(evidence)-1 < 2 {
			continue
		}
		candidates = append(candidates, candidate{region: cr, evidence: evidence, score: score})
	}
	if len(candidates) == 0 {
		return nil
	}

	regions := make([]forensics.Region, len(candidates))
	for i, c := range candidates {
		regions[i] = c.region
	}
	merged := forensics.MergeRegions(regions, cfg.MinRegionSize/2)

	var out []DetectedManipulation
	for _, region := range merged {
		if region.Area() < cfg.MinRegionSize {
			continue
		}
		var evidence []string
		var scoreSum, scoreN float64
		for _, c := range candidates {
			if !c.region.Overlaps(region) {
				continue
			}
			evidence = append(evidence, c.evidence...)
			scoreSum += c.score
			scoreN++
		}
		if scoreN == 0 {
			continue
		}
		evidence = uniqueStrings(evidence)
		conf := forensics.Clamp01(scoreSum / scoreN)
		out = append(out, DetectedManipulation{
			Kind:             KindSplicing,
			Region:           region,
			Confidence:       conf,
			ConfidenceBucket: forensics.BucketFor(conf),
			Description:      "region shows color-histogram divergence corroborated by other forensic signals",
			Evidence:         evidence,
		})
	}
	return out
}

// colorSuspiciousRegions flags splicingBlockSize blocks whose local
// 8x8x8 RGB histogram diverges from the whole-image histogram by more
// than 0.3*colorSensitivity in L1 distance (spec.md §4.14).
func colorSuspiciousRegions(img image.Image, colorSensitivity float64) []forensics.Region {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	global := rgbHistogram(img, b)
	normalizeHistogram(global)

	threshold := 0.3 * colorSensitivity
	var regions []forensics.Region
	for _, pos := range forensics.BlockPositions(w, h, splicingBlockSize, splicingBlockSize) {
		x, y := pos[0], pos[1]
		blockBounds := image.Rect(b.Min.X+x, b.Min.Y+y, b.Min.X+x+splicingBlockSize, b.Min.Y+y+splicingBlockSize)
		local := rgbHistogram(img, blockBounds)
		normalizeHistogram(local)
		if l1Distance(local, global) > threshold {
			regions = append(regions, forensics.Region{X: x, Y: y, Width: splicingBlockSize, Height: splicingBlockSize})
		}
	}
	return regions
}

// rgbHistogram buckets each 8-bit channel into 8 levels (top 3 bits),
// giving an 8x8x8 = 512-bin joint color histogram over bounds.
func rgbHistogram(img image.Image, bounds image.Rectangle) []float64 {
	hist := make([]float64, 512)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, bch, _ := img.At(x, y).RGBA()
			rq := (r >> 8) >> 5
			gq := (g >> 8) >> 5
			bq := (bch >> 8) >> 5
			hist[(rq<<6)+(gq<<3)+bq]++
		}
	}
	return hist
}

func normalizeHistogram(hist []float64) {
	var total float64
	for _, v := range hist {
		total += v
	}
	if total == 0 {
		return
	}
	for i := range hist {
		hist[i] /= total
	}
}

func l1Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// edgeRegularityRegions flags splicingBlockSize blocks whose Sobel
// magnitude row/column sums show unusually regular peak spacing
// (regularity = 1/(1+sigma_of_peak_intervals) > 0.7), the signature of a
// straight pasted-in border (spec.md §4.14).
func edgeRegularityRegions(img image.Image) []forensics.Region {
	gray := forensics.Grayscale(img)
	_, _, mag := forensics.SobelGradients(gray)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()

	var regions []forensics.Region
	for _, pos := range forensics.BlockPositions(w, h, splicingBlockSize, splicingBlockSize) {
		x, y := pos[0], pos[1]
		rowSums := make([]float64, splicingBlockSize)
		colSums := make([]float64, splicingBlockSize)
		for dy := 0; dy < splicingBlockSize; dy++ {
			for dx := 0; dx < splicingBlockSize; dx++ {
				v := mag[y+dy][x+dx]
				rowSums[dy] += v
				colSums[dx] += v
			}
		}
		regularity := math.Max(peakRegularity(rowSums), peakRegularity(colSums))
		if regularity > 0.7 {
			regions = append(regions, forensics.Region{X: x, Y: y, Width: splicingBlockSize, Height: splicingBlockSize})
		}
	}
	return regions
}

// peakRegularity finds local maxima in values and returns
// 1/(1+sigma) where sigma is the standard deviation of the intervals
// between consecutive peaks. Fewer than two peaks give no meaningful
// interval, so they're treated as non-regular (0).
func peakRegularity(values []float64) float64 {
	var peaks []int
	for i := 1; i < len(values)-1; i++ {
		if values[i] > values[i-1] && values[i] > values[i+1] {
			peaks = append(peaks, i)
		}
	}
	if len(peaks) < 2 {
		return 0
	}
	intervals := make([]float64, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		intervals[i-1] = float64(peaks[i] - peaks[i-1])
	}
	_, variance := meanVariance(intervals)
	sigma := math.Sqrt(variance)
	return 1 / (1 + sigma)
}

// meanVariance is the population mean/variance of vals, shared by the
// splicing and retouching L2 analyses.
func meanVariance(vals []float64) (mean, variance float64) {
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
	variance = sq / float64(len(vals))
	return
}

func overlapsAny(r forensics.Region, others []forensics.Region) bool {
	for _, o := range others {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}

func uniqueStrings(vals []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
