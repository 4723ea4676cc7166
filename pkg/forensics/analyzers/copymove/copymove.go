// Package copymove implements copy-move (clone) detection (spec.md §4.3):
// slide an N×N window over the image, fingerprint each non-flat block
// with an energy-compacting transform, group similar fingerprints, and
// report correlated block pairs far enough apart to be a genuine copy
// rather than a self-similar texture.
package copymove

import (
	"image"
	"sort"

	"github.com/kschiffer/imgforensics/pkg/forensics"
	"github.com/kschiffer/imgforensics/pkg/forensics/workpool"
)

// Config holds the copy-move parameters from spec.md §4.3.
type Config struct {
	BlockSize          int     // 4..64
	SimilarityThreshold float64 // [0,1]
	MinDistance        int     // pixels, center-to-center
	Workers            int     // 0 = runtime.NumCPU()
}

// DefaultConfig returns block_size=16, similarity_threshold=0.9, min_distance=32.
func DefaultConfig() Config {
	return Config{BlockSize: 16, SimilarityThreshold: 0.9, MinDistance: 32}
}

const flatVarianceThreshold = 100
const hashXorOffsets = 4 // offsets 0..3, per spec.md §4.3 step 5

// Result is the copy-move analyzer's output.
type Result struct {
	Matches    []forensics.MatchPair
	Regions    []forensics.Region
	Confidence float64
}

type blockInfo struct {
	x, y int
	feat [featureLen]float64
	hash uint64
}

// Analyze runs copy-move detection on img with cfg.
func Analyze(img image.Image, cfg Config) (*Result, error) {
	if cfg.BlockSize < 4 || cfg.BlockSize > 64 {
		return nil, forensics.ErrInvalidParameter("block_size must be in [4,64]")
	}
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return nil, forensics.ErrInvalidParameter("similarity_threshold must be in [0,1]")
	}
	if cfg.MinDistance < 0 {
		return nil, forensics.ErrInvalidParameter("min_distance must be >= 0")
	}

	gray := forensics.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	minDim := 2 * cfg.BlockSize
	if w < minDim || h < minDim {
		return nil, forensics.ErrImageTooSmall(minDim)
	}

	n := cfg.BlockSize
	stride := n / 2
	if stride < 1 {
		stride = 1
	}
	positions := forensics.BlockPositions(w, h, n, stride)

	type candidate struct {
		x, y    int
		flat    []float64
		variance float64
	}
	candidates := make([]candidate, len(positions))
	for i, pos := range positions {
		blk := forensics.ExtractBlock(gray, pos[0], pos[1], n)
		flat := make([]float64, 0, n*n)
		for _, row := range blk {
			for _, v := range row {
				flat = append(flat, float64(v))
			}
		}
		_, variance := forensics.BlockMeanVariance(blk)
		candidates[i] = candidate{x: pos[0], y: pos[1], flat: flat, variance: variance}
	}

	// Discard flat blocks before spending FFT work on them.
	kept := candidates[:0:0]
	for _, c := range candidates {
		if c.variance >= flatVarianceThreshold {
			kept = append(kept, c)
		}
	}

	// Parallel feature extraction (spec.md §5, §9): order preserved by
	// index so the result is deterministic regardless of scheduling.
	blocks := workpool.Map(kept, cfg.Workers, func(c candidate) blockInfo {
		feat := blockFeature(c.flat)
		return blockInfo{x: c.x, y: c.y, feat: feat, hash: hash64(feat)}
	})

	buckets := make(map[uint64][]int)
	for idx, blk := range blocks {
		for offset := uint64(0); offset < hashXorOffsets; offset++ {
			key := blk.hash ^ offset
			buckets[key] = append(buckets[key], idx)
		}
	}

	seenPair := make(map[[2]int]bool)
	var matches []forensics.MatchPair

	for _, members := range buckets {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				ii, jj := members[i], members[j]
				if ii == jj {
					continue
				}
				pairKey := [2]int{min(ii, jj), max(ii, jj)}
				if seenPair[pairKey] {
					continue
				}
				seenPair[pairKey] = true

				a, bb := blocks[ii], blocks[jj]
				ra := forensics.Region{X: a.x, Y: a.y, Width: n, Height: n}
				rb := forensics.Region{X: bb.x, Y: bb.y, Width: n, Height: n}
				if ra.CenterDistance(rb) < float64(cfg.MinDistance) {
					continue
				}
				sim := pearson(a.feat, bb.feat)
				if sim >= cfg.SimilarityThreshold {
					matches = append(matches, forensics.MatchPair{Source: ra, Target: rb, Similarity: sim})
				}
			}
		}
	}

	// Deterministic ordering before greedy filtering (spec.md §5).
	sort.Slice(matches, func(i, j int) bool {
		mi, mj := matches[i], matches[j]
		if mi.Similarity != mj.Similarity {
			return mi.Similarity > mj.Similarity
		}
		if mi.Source.Y != mj.Source.Y {
			return mi.Source.Y < mj.Source.Y
		}
		if mi.Source.X != mj.Source.X {
			return mi.Source.X < mj.Source.X
		}
		if mi.Target.Y != mj.Target.Y {
			return mi.Target.Y < mj.Target.Y
		}
		return mi.Target.X < mj.Target.X
	})

	var keptMatches []forensics.MatchPair
	for _, m := range matches {
		overlaps := false
		for _, k := range keptMatches {
			if m.Source.Overlaps(k.Source) || m.Source.Overlaps(k.Target) ||
				m.Target.Overlaps(k.Source) || m.Target.Overlaps(k.Target) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			keptMatches = append(keptMatches, m)
		}
	}

	var regions []forensics.Region
	var simSum float64
	for _, m := range keptMatches {
		regions = append(regions, m.Source, m.Target)
		simSum += m.Similarity
	}
	confidence := 0.0
	if len(keptMatches) > 0 {
		confidence = simSum / float64(len(keptMatches))
	}

	return &Result{
		Matches:    keptMatches,
		Regions:    regions,
		Confidence: confidence,
	}, nil
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
