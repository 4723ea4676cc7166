package detect

import (
	"image"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

// Detect runs the full L1 analyzer battery over img and fuses the results
// into named, localized manipulation hypotheses (spec.md §4.14-§4.16).
func Detect(img image.Image, cfg AnalysisConfig) (*DetectionResult, error) {
	if cfg.MinRegionSize <= 0 {
		cfg.MinRegionSize = 64
	}
	if cfg.ManipulatedAt <= 0 {
		cfg.ManipulatedAt = 0.3
	}

	result, err := runAll(img, cfg)
	if err != nil {
		return nil, err
	}

	var manipulations []DetectedManipulation
	manipulations = append(manipulations, copyMoveManipulations(result)...)
	manipulations = append(manipulations, detectSplicing(img, result, cfg)...)
	manipulations = append(manipulations, retouchingManipulations(img, cfg)...)
	manipulations = append(manipulations, doubleCompressionManipulations(result, cfg)...)

	result.Manipulations = manipulations
	result.OverallScore = overallScore(manipulations)
	result.OverallBucket = forensics.BucketFor(result.OverallScore)
	result.IsManipulated = result.OverallScore > cfg.ManipulatedAt
	result.OverlayImage = renderOverlay(img, manipulations)

	return result, nil
}

// copyMoveManipulations emits both source and target as CopyMove
// manipulations per match, each with confidence = that match's own
// similarity (spec.md §4.15) — not the analyzer-wide average.
func copyMoveManipulations(r *DetectionResult) []DetectedManipulation {
	if r.CopyMove == nil || len(r.CopyMove.Matches) == 0 {
		return nil
	}
	var out []DetectedManipulation
	for _, m := range r.CopyMove.Matches {
		conf := m.Similarity
		bucket := forensics.BucketFor(conf)
		out = append(out,
			DetectedManipulation{
				Kind:             KindCopyMove,
				Region:           m.Source,
				Confidence:       conf,
				ConfidenceBucket: bucket,
				Description:      "region matches another area of the same image (source)",
				Evidence:         []string{"block-fingerprint correlation above threshold"},
			},
			DetectedManipulation{
				Kind:             KindCopyMove,
				Region:           m.Target,
				Confidence:       conf,
				ConfidenceBucket: bucket,
				Description:      "region matches another area of the same image (target)",
				Evidence:         []string{"block-fingerprint correlation above threshold"},
			},
		)
	}
	return out
}

// doubleCompressionManipulations reports a whole-image Unknown hypothesis
// when the average of the JPEG double-compression likelihood (plus 0.6 if
// a ghost was detected) and the DCT double-compression probability exceeds
// cfg.DoubleCompressionThreshold (default 0.6) (spec.md §4.15); unlike the
// other detectors this one is not spatially localized, so its Region is
// left at the zero value, which the overlay does not draw.
func doubleCompressionManipulations(r *DetectionResult, cfg AnalysisConfig) []DetectedManipulation {
	if r.JPEGQuality == nil && r.DCT == nil {
		return nil
	}
	var scores []float64
	if r.JPEGQuality != nil {
		scores = append(scores, r.JPEGQuality.DoubleCompressionLikelihood)
		if r.JPEGQuality.GhostDetected {
			scores = append(scores, 0.6)
		}
	}
	if r.DCT != nil {
		scores = append(scores, r.DCT.DoubleCompressionProbability)
	}
	if len(scores) == 0 {
		return nil
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	avg := sum / float64(len(scores))
	threshold := cfg.DoubleCompressionThreshold
	if threshold <= 0 {
		threshold = 0.6
	}
	if avg <= threshold {
		return nil
	}
	return []DetectedManipulation{{
		Kind:             KindUnknown,
		Confidence:       avg,
		ConfidenceBucket: forensics.BucketFor(avg),
		Description:      "image shows evidence of having been JPEG-compressed more than once",
		Evidence:         []string{"JPEG ghost/double-compression signals"},
	}}
}

// overallScore is the mean confidence across all detected manipulations,
// or 0 if none were found (spec.md §4.16).
func overallScore(manipulations []DetectedManipulation) float64 {
	if len(manipulations) == 0 {
		return 0
	}
	var sum float64
	for _, m := range manipulations {
		sum += m.Confidence
	}
	return forensics.Clamp01(sum / float64(len(manipulations)))
}
