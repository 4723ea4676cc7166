// Package ela implements Error-Level Analysis (spec.md §4.2): recompress
// the input at a target JPEG quality, compare against the original, and
// flag blocks whose mean difference stands out.
package ela

import (
	"image"
	"image/color"
	"math"

	"github.com/kschiffer/imgforensics/pkg/forensics"
	"github.com/kschiffer/imgforensics/pkg/forensics/jpegcodec"
)

// Config holds the ELA parameters from spec.md §4.2.
type Config struct {
	Quality       int     // target recompression quality, 1..100
	Amplification float64 // default 10
	Threshold     float64 // default 30 (currently informational; block flagging uses mean+2*std)
}

// DefaultConfig returns quality=90, amplification=10, threshold=30.
func DefaultConfig() Config {
	return Config{Quality: 90, Amplification: 10, Threshold: 30}
}

const blockSize = 16
const mergeGap = 8

// Result is the ELA analyzer's output.
type Result struct {
	ELAImage    *image.RGBA
	DiffMap     *image.Gray
	Max         float64
	Mean        float64
	Std         float64
	Regions     []forensics.Region
}

// Analyze runs ELA on img with cfg. A Quality left at zero takes
// DefaultConfig's quality and a non-positive Amplification takes 10; any
// other Quality outside [1,100] fails with InvalidParameter.
func Analyze(img image.Image, cfg Config) (*Result, error) {
	if cfg.Quality == 0 {
		d := DefaultConfig()
		cfg.Quality = d.Quality
	}
	if cfg.Amplification <= 0 {
		cfg.Amplification = 10
	}
	if cfg.Quality < 1 || cfg.Quality > 100 {
		return nil, forensics.ErrInvalidParameter("quality must be in [1,100]")
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 2 || h < 2 {
		return nil, forensics.ErrImageTooSmall(2)
	}

	recompressed, err := jpegcodec.Recompress(img, cfg.Quality)
	if err != nil {
		return nil, err
	}
	rb := recompressed.Bounds()
	if rb.Dx() != w || rb.Dy() != h {
		return nil, forensics.ErrUnsupportedFormat("recompressed dimensions differ from input")
	}

	elaImg := image.NewRGBA(image.Rect(0, 0, w, h))
	diffMap := image.NewGray(image.Rect(0, 0, w, h))

	channelMeans := make([][]float64, h)
	var sum, sumSq, maxDiff float64
	var n float64

	for y := 0; y < h; y++ {
		channelMeans[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			r1, g1, bl1, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r2, g2, bl2, _ := recompressed.At(rb.Min.X+x, rb.Min.Y+y).RGBA()

			dr := math.Abs(float64(r1>>8) - float64(r2>>8))
			dg := math.Abs(float64(g1>>8) - float64(g2>>8))
			db := math.Abs(float64(bl1>>8) - float64(bl2>>8))

			vr := clamp255(cfg.Amplification * dr)
			vg := clamp255(cfg.Amplification * dg)
			vb := clamp255(cfg.Amplification * db)
			elaImg.Set(x, y, color.RGBA{R: uint8(vr), G: uint8(vg), B: uint8(vb), A: 255})

			chMean := (dr + dg + db) / 3
			channelMeans[y][x] = chMean
			diffVal := clamp255(cfg.Amplification * chMean)
			diffMap.SetGray(x, y, color.Gray{Y: uint8(diffVal)})

			maxPix := math.Max(dr, math.Max(dg, db))
			if maxPix > maxDiff {
				maxDiff = maxPix
			}
			sum += chMean
			sumSq += chMean * chMean
			n++
		}
	}

	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	std := math.Sqrt(variance)

	threshold := mean + 2*std
	var regions []forensics.Region
	for _, pos := range forensics.BlockPositions(w, h, blockSize, blockSize) {
		bx, by := pos[0], pos[1]
		var bsum float64
		var bn float64
		for dy := 0; dy < blockSize; dy++ {
			for dx := 0; dx < blockSize; dx++ {
				bsum += channelMeans[by+dy][bx+dx]
				bn++
			}
		}
		if bsum/bn > threshold {
			regions = append(regions, forensics.Region{X: bx, Y: by, Width: blockSize, Height: blockSize})
		}
	}
	regions = forensics.MergeRegions(regions, mergeGap)

	return &Result{
		ELAImage: elaImg,
		DiffMap:  diffMap,
		Max:      maxDiff,
		Mean:     mean,
		Std:      std,
		Regions:  regions,
	}, nil
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
