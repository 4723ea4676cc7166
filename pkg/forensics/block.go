package forensics

import "image"

// ExtractBlock copies an n×n neighborhood of gray starting at (x,y),
// clipping at the image boundary (the returned slice may be smaller than
// n×n near the edges).
func ExtractBlock(gray *image.Gray, x, y, n int) [][]uint8 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	rows := min(n, h-y)
	cols := min(n, w-x)
	if rows <= 0 || cols <= 0 {
		return nil
	}
	out := make([][]uint8, rows)
	for dy := 0; dy < rows; dy++ {
		out[dy] = make([]uint8, cols)
		for dx := 0; dx < cols; dx++ {
			out[dy][dx] = gray.GrayAt(b.Min.X+x+dx, b.Min.Y+y+dy).Y
		}
	}
	return out
}

// BlockMeanVariance returns the sample mean and variance of a block's bytes.
func BlockMeanVariance(block [][]uint8) (mean, variance float64) {
	var sum, sumSq float64
	var n float64
	for _, row := range block {
		for _, v := range row {
			fv := float64(v)
			sum += fv
			sumSq += fv * fv
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	mean = sum / n
	variance = sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return
}

// BlockPositions returns the top-left (x,y) coordinates of every n×n
// block on a stride-aligned grid covering a w×h image, in row-major
// order (top to bottom, left to right), which is the iteration order
// every block-based analyzer in this module relies on for determinism.
func BlockPositions(w, h, n, stride int) [][2]int {
	var out [][2]int
	for y := 0; y+n <= h; y += stride {
		for x := 0; x+n <= w; x += stride {
			out = append(out, [2]int{x, y})
		}
	}
	return out
}
