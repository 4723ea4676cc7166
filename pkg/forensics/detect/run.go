package detect

import (
	"image"

	"github.com/kschiffer/imgforensics/pkg/forensics"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/benford"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/cfa"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/chromatic"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/copymove"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/dct"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/ela"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/jpegquality"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/noise"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/pca"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/prnu"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/resampling"
	"github.com/kschiffer/imgforensics/pkg/forensics/analyzers/shadow"
)

// runAll executes every L1 analyzer against img. Per spec.md §4.16/§7, a
// single analyzer's failure is treated as an absent signal and the rest
// still run; only if every analyzer fails is the first error returned.
func runAll(img image.Image, cfg AnalysisConfig) (*DetectionResult, error) {
	result := &DetectionResult{}
	var firstErr error
	ran := 0

	note := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if err == nil {
			ran++
		}
	}

	if r, err := ela.Analyze(img, cfg.ELA); err == nil {
		result.ELA = r
		note(nil)
	} else {
		note(err)
	}
	if r, err := copymove.Analyze(img, cfg.CopyMove); err == nil {
		result.CopyMove = r
		note(nil)
	} else {
		note(err)
	}
	if r, err := noise.Analyze(img, cfg.Noise); err == nil {
		result.Noise = r
		note(nil)
	} else {
		note(err)
	}
	if r, err := jpegquality.Analyze(img, cfg.JPEGQuality); err == nil {
		result.JPEGQuality = r
		note(nil)
	} else {
		note(err)
	}
	if r, err := dct.Analyze(img, cfg.DCT); err == nil {
		result.DCT = r
		note(nil)
	} else {
		note(err)
	}
	if r, err := cfa.Analyze(img, cfg.CFA); err == nil {
		result.CFA = r
		note(nil)
	} else {
		note(err)
	}
	if r, err := chromatic.Analyze(img, cfg.Chromatic); err == nil {
		result.Chromatic = r
		note(nil)
	} else {
		note(err)
	}
	if r, err := prnu.Analyze(img, cfg.PRNU); err == nil {
		result.PRNU = r
		note(nil)
	} else {
		note(err)
	}
	if r, err := resampling.Analyze(img, cfg.Resampling); err == nil {
		result.Resampling = r
		note(nil)
	} else {
		note(err)
	}
	if r, err := shadow.Analyze(img, cfg.Shadow); err == nil {
		result.Shadow = r
		note(nil)
	} else {
		note(err)
	}
	if r, err := benford.Analyze(img, cfg.Benford); err == nil {
		result.Benford = r
		note(nil)
	} else {
		note(err)
	}
	if r, err := pca.Analyze(img, cfg.PCA); err == nil {
		result.PCA = r
		note(nil)
	} else {
		note(err)
	}

	if ran == 0 {
		return nil, forensics.ErrAnalysisFailed("all analyzers failed: " + firstErr.Error())
	}
	return result, nil
}
