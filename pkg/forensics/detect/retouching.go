package detect

import (
	"image"
	"math"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

// retouchBlockSize is the block granularity for the texture- and
// blur-inconsistency passes spec.md §4.15 names.
const retouchBlockSize = 32

// retouchingManipulations runs spec.md §4.15's texture-inconsistency and
// blur-inconsistency analyses: each flags blocks whose local statistic
// deviates from the image's own distribution by more than a
// sensitivity-scaled z-score (2·sensitivity for texture, 2.5·sensitivity
// for blur), and the union of flagged regions becomes Retouching
// hypotheses.
func retouchingManipulations(img image.Image, cfg AnalysisConfig) []DetectedManipulation {
	sensitivity := cfg.RetouchSensitivity
	if sensitivity <= 0 {
		sensitivity = 1.0
	}

	textureRegions := textureInconsistentRegions(img, sensitivity)
	blurRegions := blurInconsistentRegions(img, sensitivity)
	combined := append(append([]forensics.Region{}, textureRegions...), blurRegions...)
	if len(combined) == 0 {
		return nil
	}

	merged := forensics.MergeRegions(combined, cfg.MinRegionSize/2)
	var out []DetectedManipulation
	for _, region := range merged {
		if region.Area() < cfg.MinRegionSize {
			continue
		}
		var evidence []string
		if overlapsAny(region, textureRegions) {
			evidence = append(evidence, "texture-inconsistency")
		}
		if overlapsAny(region, blurRegions) {
			evidence = append(evidence, "blur-inconsistency")
		}
		conf := forensics.Clamp01(float64(len(evidence)) / 2)
		out = append(out, DetectedManipulation{
			Kind:             KindRetouching,
			Region:           region,
			Confidence:       conf,
			ConfidenceBucket: forensics.BucketFor(conf),
			Description:      "block-level texture/sharpness statistics deviate from the image's own distribution",
			Evidence:         evidence,
		})
	}
	return out
}

// textureInconsistentRegions flags blocks whose local variance
// (a texture-energy proxy) has a z-score, relative to every block's
// variance in the image, with magnitude above 2*sensitivity.
func textureInconsistentRegions(img image.Image, sensitivity float64) []forensics.Region {
	gray := forensics.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	positions := forensics.BlockPositions(w, h, retouchBlockSize, retouchBlockSize)
	if len(positions) == 0 {
		return nil
	}

	variances := make([]float64, len(positions))
	for i, pos := range positions {
		blk := forensics.ExtractBlock(gray, pos[0], pos[1], retouchBlockSize)
		_, variance := forensics.BlockMeanVariance(blk)
		variances[i] = variance
	}

	mean, variance := meanVariance(variances)
	sigma := math.Sqrt(variance)
	if sigma == 0 {
		return nil
	}

	threshold := 2 * sensitivity
	var regions []forensics.Region
	for i, pos := range positions {
		z := (variances[i] - mean) / sigma
		if math.Abs(z) > threshold {
			regions = append(regions, forensics.Region{X: pos[0], Y: pos[1], Width: retouchBlockSize, Height: retouchBlockSize})
		}
	}
	return regions
}

// blurInconsistentRegions flags blocks whose mean Sobel-gradient
// magnitude (a sharpness proxy — low magnitude means locally blurred) has
// a z-score, relative to every block's sharpness in the image, with
// magnitude above 2.5*sensitivity.
func blurInconsistentRegions(img image.Image, sensitivity float64) []forensics.Region {
	gray := forensics.Grayscale(img)
	_, _, mag := forensics.SobelGradients(gray)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	positions := forensics.BlockPositions(w, h, retouchBlockSize, retouchBlockSize)
	if len(positions) == 0 {
		return nil
	}

	sharpness := make([]float64, len(positions))
	for i, pos := range positions {
		x, y := pos[0], pos[1]
		var sum, n float64
		for dy := 0; dy < retouchBlockSize && y+dy < h; dy++ {
			for dx := 0; dx < retouchBlockSize && x+dx < w; dx++ {
				sum += mag[y+dy][x+dx]
				n++
			}
		}
		if n > 0 {
			sharpness[i] = sum / n
		}
	}

	mean, variance := meanVariance(sharpness)
	sigma := math.Sqrt(variance)
	if sigma == 0 {
		return nil
	}

	threshold := 2.5 * sensitivity
	var regions []forensics.Region
	for i, pos := range positions {
		z := (sharpness[i] - mean) / sigma
		if math.Abs(z) > threshold {
			regions = append(regions, forensics.Region{X: pos[0], Y: pos[1], Width: retouchBlockSize, Height: retouchBlockSize})
		}
	}
	return regions
}
