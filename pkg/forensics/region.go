package forensics

import "math"

// Region is an axis-aligned rectangle over the image grid, in pixel units.
// It is a plain value: freely copied and compared structurally.
type Region struct {
	X, Y          int
	Width, Height int
}

// Valid reports whether r fits inside a W×H image and has positive extent,
// per spec invariant #2.
func (r Region) Valid(w, h int) bool {
	return r.Width > 0 && r.Height > 0 && r.X+r.Width <= w && r.Y+r.Height <= h
}

// CenterX and CenterY return the region's center in pixel units.
func (r Region) CenterX() float64 { return float64(r.X) + float64(r.Width)/2 }
func (r Region) CenterY() float64 { return float64(r.Y) + float64(r.Height)/2 }

// CenterDistance returns the Euclidean distance between r's and o's centers.
func (r Region) CenterDistance(o Region) float64 {
	dx := r.CenterX() - o.CenterX()
	dy := r.CenterY() - o.CenterY()
	return math.Hypot(dx, dy)
}

// Overlaps reports whether r and o share any pixel.
func (r Region) Overlaps(o Region) bool {
	if r.X+r.Width <= o.X || o.X+o.Width <= r.X {
		return false
	}
	if r.Y+r.Height <= o.Y || o.Y+o.Height <= r.Y {
		return false
	}
	return true
}

// Area returns the region's pixel area.
func (r Region) Area() int { return r.Width * r.Height }

// union returns the axis-aligned bounding box of r and o.
func (r Region) union(o Region) Region {
	x0 := min(r.X, o.X)
	y0 := min(r.Y, o.Y)
	x1 := max(r.X+r.Width, o.X+o.Width)
	y1 := max(r.Y+r.Height, o.Y+o.Height)
	return Region{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// adjacent reports whether r and o are not strictly separated by more than
// gap pixels on either axis (spec §4.1 region merging).
func (r Region) adjacent(o Region, gap int) bool {
	xGap := gapBetween(r.X, r.X+r.Width, o.X, o.X+o.Width)
	yGap := gapBetween(r.Y, r.Y+r.Height, o.Y, o.Y+o.Height)
	return xGap <= gap && yGap <= gap
}

// gapBetween returns the 1-D separation between intervals [a0,a1) and
// [b0,b1): 0 if they overlap or touch, otherwise the distance between them.
func gapBetween(a0, a1, b0, b1 int) int {
	if a1 <= b0 {
		return b0 - a1
	}
	if b1 <= a0 {
		return a0 - b1
	}
	return 0
}

// MergeRegions repeatedly merges adjacent regions (within gap pixels on
// either axis) into their bounding box until no further merge applies.
// The result is independent of pairwise merge order: merging always
// replaces two regions by their union, and union is commutative and
// associative, and passes repeat until no two of the resulting bounding
// boxes are within gap of each other.
func MergeRegions(regions []Region, gap int) []Region {
	if len(regions) == 0 {
		return nil
	}
	merged := make([]Region, len(regions))
	copy(merged, regions)

	for {
		changed := false
		out := make([]Region, 0, len(merged))
		used := make([]bool, len(merged))
		for i := range merged {
			if used[i] {
				continue
			}
			cur := merged[i]
			used[i] = true
			for j := i + 1; j < len(merged); j++ {
				if used[j] {
					continue
				}
				if cur.adjacent(merged[j], gap) {
					cur = cur.union(merged[j])
					used[j] = true
					changed = true
				}
			}
			out = append(out, cur)
		}
		merged = out
		if !changed {
			break
		}
	}
	return merged
}

// MatchPair is a candidate copy-move match: two same-size regions and a
// similarity score in [0,1].
type MatchPair struct {
	Source     Region
	Target     Region
	Similarity float64
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
