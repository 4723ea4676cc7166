// Package detect implements manipulation fusion (spec.md §4.14-§4.16): it
// runs every L1 analyzer over an image, correlates their independent
// findings into named manipulation hypotheses, and renders a diagnostic
// overlay.
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

// Kind is the closed set of manipulation hypotheses the fusion layer names.
type Kind int

const (
	KindUnknown Kind = iota
	KindCopyMove
	KindSplicing
	KindRetouching
	KindRemoval
	KindResizing
	KindRotation
	KindColorManipulation
	KindAIGenerated
)

func (k Kind) String() string {
	switch k {
	case KindCopyMove:
		return "CopyMove"
	case KindSplicing:
		return "Splicing"
	case KindRetouching:
		return "Retouching"
	case KindRemoval:
		return "Removal"
	case KindResizing:
		return "Resizing"
	case KindRotation:
		return "Rotation"
	case KindColorManipulation:
		return "ColorManipulation"
	case KindAIGenerated:
		return "AIGenerated"
	default:
		return "Unknown"
	}
}

// DetectedManipulation is one named, localized manipulation hypothesis.
type DetectedManipulation struct {
	Kind             Kind
	Region           forensics.Region
	Confidence       float64
	ConfidenceBucket forensics.Bucket
	Description      string
	Evidence         []string
}

// DetectionResult aggregates every manipulation hypothesis found for one
// image plus the analyzers' raw outputs, for callers that want more detail
// than the fused summary.
type DetectionResult struct {
	Manipulations []DetectedManipulation
	OverallScore  float64
	OverallBucket forensics.Bucket
	IsManipulated bool
	OverlayImage  image.Image

	ELA        *ela.Result
	CopyMove   *copymove.Result
	Noise      *noise.Result
	JPEGQuality *jpegquality.Result
	DCT        *dct.Result
	CFA        *cfa.Result
	Chromatic  *chromatic.Result
	PRNU       *prnu.Result
	Resampling *resampling.Result
	Shadow     *shadow.Result
	Benford    *benford.Result
	PCA        *pca.Result
}

// AnalysisConfig aggregates every L1 analyzer's configuration. It lives
// here rather than in pkg/forensics to avoid an import cycle: each
// analyzer subpackage already imports pkg/forensics for Region/Error/etc,
// so an aggregator referencing every analyzer's Config type can only sit
// above them, in the fusion layer that already depends on all of them.
type AnalysisConfig struct {
	ELA         ela.Config
	CopyMove    copymove.Config
	Noise       noise.Config
	JPEGQuality jpegquality.Config
	DCT         dct.Config
	CFA         cfa.Config
	Chromatic   chromatic.Config
	PRNU        prnu.Config
	Resampling  resampling.Config
	Shadow      shadow.Config
	Benford     benford.Config
	PCA         pca.Config

	MinRegionSize   int     // default 64, splicing/tampering region filter
	ManipulatedAt   float64 // default 0.3, IsManipulated threshold

	// ColorSensitivity scales the splicing detector's color-histogram L1
	// threshold (0.3*ColorSensitivity); default 1.0.
	ColorSensitivity float64
	// RetouchSensitivity scales the tampering detector's texture/blur
	// z-score thresholds (2*RetouchSensitivity, 2.5*RetouchSensitivity
	// respectively); default 1.0.
	RetouchSensitivity float64
	// DoubleCompressionThreshold is the JPEG double-compression
	// likelihood above which a whole-image Unknown manipulation is
	// emitted; default 0.6.
	DoubleCompressionThreshold float64
}

// DefaultAnalysisConfig returns every analyzer's documented defaults plus
// min_region_size=64, manipulated_at=0.3, color_sensitivity=1.0,
// retouch_sensitivity=1.0, double_compression_threshold=0.6.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		ELA:         ela.DefaultConfig(),
		CopyMove:    copymove.DefaultConfig(),
		Noise:       noise.DefaultConfig(),
		JPEGQuality: jpegquality.Config{},
		DCT:         dct.DefaultConfig(),
		CFA:         cfa.Config{},
		Chromatic:   chromatic.DefaultConfig(),
		PRNU:        prnu.DefaultConfig(),
		Resampling:  resampling.DefaultConfig(),
		Shadow:      shadow.DefaultConfig(),
		Benford:     benford.DefaultConfig(),
		PCA:         pca.DefaultConfig(),
		MinRegionSize:              64,
		ManipulatedAt:              0.3,
		ColorSensitivity:           1.0,
		RetouchSensitivity:         1.0,
		DoubleCompressionThreshold: 0.6,
	}
}
