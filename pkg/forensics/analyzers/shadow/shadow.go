// Package shadow implements shadow/light-direction consistency analysis
// (spec.md §4.11): segment low-saturation, low-intensity shadow regions,
// estimate each region's light-source direction from its boundary gradient,
// and flag regions whose direction diverges from the dominant one.
package shadow

import (
	"image"
	"image/color"
	"math"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

// Config holds the shadow analyzer's parameters.
type Config struct {
	MinShadowSize  int     // default 64 pixels
	AngleTolerance float64 // default 20 degrees
	SaturationMax  float64 // default 0.3
}

// DefaultConfig returns min_shadow_size=64, angle_tolerance=20, saturation_max=0.3.
func DefaultConfig() Config {
	return Config{MinShadowSize: 64, AngleTolerance: 20, SaturationMax: 0.3}
}

// ShadowRegion is one detected shadow component and its estimated light
// direction.
type ShadowRegion struct {
	Region        forensics.Region
	LightAngleDeg float64
	Confidence    float64
	Inconsistent  bool
}

// Result is the shadow analyzer's output.
type Result struct {
	Mask                    *image.Gray
	Regions                 []ShadowRegion
	DominantLightAngleDeg   float64
	LightSourceCount        int
	ManipulationProbability float64
}

// Analyze runs shadow/light-direction analysis on img.
func Analyze(img image.Image, cfg Config) (*Result, error) {
	if cfg.MinShadowSize <= 0 {
		cfg.MinShadowSize = 64
	}
	if cfg.AngleTolerance <= 0 {
		cfg.AngleTolerance = 20
	}
	if cfg.SaturationMax <= 0 {
		cfg.SaturationMax = 0.3
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 16 || h < 16 {
		return nil, forensics.ErrImageTooSmall(16)
	}

	gray := forensics.Grayscale(img)
	mask := shadowMask(img, gray, cfg.SaturationMax)
	mask = morphOpen(mask, w, h, 2)

	components := connectedComponents(mask, w, h, cfg.MinShadowSize)

	gx, gy, gmag := forensics.SobelGradients(gray)

	var regions []ShadowRegion
	var totalArea float64
	var sinSum, cosSum float64
	for _, comp := range components {
		angle, conf := boundaryLightDirection(comp, mask, gx, gy, gmag, w, h)
		regions = append(regions, ShadowRegion{
			Region:        comp.bounds,
			LightAngleDeg: angle,
			Confidence:    conf,
		})
		area := float64(len(comp.pixels))
		totalArea += area
		rad := angle * math.Pi / 180
		sinSum += area * math.Sin(rad)
		cosSum += area * math.Cos(rad)
	}

	dominant := 0.0
	if totalArea > 0 {
		dominant = math.Atan2(sinSum, cosSum) * 180 / math.Pi
		if dominant < 0 {
			dominant += 360
		}
	}

	var inconsistentCount int
	for i := range regions {
		dev := angularDeviation(regions[i].LightAngleDeg, dominant)
		if dev > cfg.AngleTolerance && regions[i].Confidence > 0.2 {
			regions[i].Inconsistent = true
			inconsistentCount++
		}
	}

	consistency := 1.0
	if len(regions) > 0 {
		consistency = float64(len(regions)-inconsistentCount) / float64(len(regions))
	}

	sourceCount := lightSourceClusters(regions, cfg.AngleTolerance)

	inconsistentRatio := 0.0
	if len(regions) > 0 {
		inconsistentRatio = float64(inconsistentCount) / float64(len(regions))
	}
	excessSources := 0.0
	if sourceCount > 2 {
		excessSources = float64(sourceCount - 2)
	}
	prob := forensics.Clamp01(0.4*inconsistentRatio + 0.3*(1-consistency) + 0.15*excessSources)

	return &Result{
		Mask:                    mask,
		Regions:                 regions,
		DominantLightAngleDeg:   dominant,
		LightSourceCount:        sourceCount,
		ManipulationProbability: prob,
	}, nil
}

// shadowMask flags pixels below an adaptive intensity threshold (mean-0.5*std
// of the whole image) with low saturation and a blue channel at least as
// large as red and green, as shadow candidates (spec.md §4.11).
func shadowMask(img image.Image, gray *image.Gray, saturationMax float64) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	var sum, sumSq float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			sum += v
			sumSq += v * v
		}
	}
	n := float64(w * h)
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	threshold := mean - 0.5*math.Sqrt(variance)

	ib := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			intensity := float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			r, g, bl, _ := img.At(ib.Min.X+x, ib.Min.Y+y).RGBA()
			sat := forensics.Saturation01(int(r>>8), int(g>>8), int(bl>>8))
			blueBias := float64(bl>>8) >= float64(r>>8) && float64(bl>>8) >= float64(g>>8)
			if intensity < threshold && sat < saturationMax && blueBias {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func angularDeviation(a, b float64) float64 {
	d := math.Abs(a - b)
	for d > 180 {
		d = 360 - d
	}
	return d
}
