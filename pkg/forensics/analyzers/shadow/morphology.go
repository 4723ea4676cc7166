package shadow

import (
	"image"
	"image/color"
	"math"

	"github.com/kschiffer/imgforensics/pkg/forensics"
)

func maskAt(mask *image.Gray, x, y, w, h int) bool {
	if x < 0 || y < 0 || x >= w || y >= h {
		return false
	}
	b := mask.Bounds()
	return mask.GrayAt(b.Min.X+x, b.Min.Y+y).Y > 0
}

// morphOpen performs a binary erosion followed by a dilation, both with a
// square structuring element of the given radius (spec.md §4.11).
func morphOpen(mask *image.Gray, w, h, radius int) *image.Gray {
	eroded := morphPass(mask, w, h, radius, true)
	return morphPass(eroded, w, h, radius, false)
}

func morphPass(mask *image.Gray, w, h, radius int, erode bool) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var result bool
			if erode {
				result = true
				for dy := -radius; dy <= radius && result; dy++ {
					for dx := -radius; dx <= radius; dx++ {
						if !maskAt(mask, x+dx, y+dy, w, h) {
							result = false
							break
						}
					}
				}
			} else {
				result = false
				for dy := -radius; dy <= radius && !result; dy++ {
					for dx := -radius; dx <= radius; dx++ {
						if maskAt(mask, x+dx, y+dy, w, h) {
							result = true
							break
						}
					}
				}
			}
			if result {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

type component struct {
	pixels []image.Point
	bounds forensics.Region
}

// connectedComponents flood-fills 4-connected mask regions, dropping any
// smaller than minSize (spec.md §4.11).
func connectedComponents(mask *image.Gray, w, h, minSize int) []component {
	visited := make([]bool, w*h)
	var components []component

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if visited[idx] || !maskAt(mask, x, y, w, h) {
				continue
			}
			stack := []image.Point{{X: x, Y: y}}
			visited[idx] = true
			var pixels []image.Point
			minX, minY, maxX, maxY := x, y, x, y

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				pixels = append(pixels, p)
				if p.X < minX {
					minX = p.X
				}
				if p.X > maxX {
					maxX = p.X
				}
				if p.Y < minY {
					minY = p.Y
				}
				if p.Y > maxY {
					maxY = p.Y
				}

				neighbors := []image.Point{
					{X: p.X - 1, Y: p.Y}, {X: p.X + 1, Y: p.Y},
					{X: p.X, Y: p.Y - 1}, {X: p.X, Y: p.Y + 1},
				}
				for _, n := range neighbors {
					if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h {
						continue
					}
					nidx := n.Y*w + n.X
					if visited[nidx] || !maskAt(mask, n.X, n.Y, w, h) {
						continue
					}
					visited[nidx] = true
					stack = append(stack, n)
				}
			}

			if len(pixels) < minSize {
				continue
			}
			components = append(components, component{
				pixels: pixels,
				bounds: forensics.Region{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1},
			})
		}
	}
	return components
}

// boundaryLightDirection estimates a shadow region's light-source direction
// as the circular mean of the Sobel gradient direction at the region's
// boundary pixels, weighted by gradient magnitude; confidence is the
// resultant vector length R of that circular mean (spec.md §4.11).
func boundaryLightDirection(comp component, mask *image.Gray, gx, gy, gmag [][]float64, w, h int) (angleDeg, confidence float64) {
	inComp := make(map[image.Point]bool, len(comp.pixels))
	for _, p := range comp.pixels {
		inComp[p] = true
	}

	var sinSum, cosSum, weightSum float64
	for _, p := range comp.pixels {
		isBoundary := false
		for _, d := range []image.Point{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}} {
			n := image.Point{X: p.X + d.X, Y: p.Y + d.Y}
			if !inComp[n] {
				isBoundary = true
				break
			}
		}
		if !isBoundary {
			continue
		}
		if p.Y < 0 || p.Y >= len(gmag) || p.X < 0 || p.X >= len(gmag[p.Y]) {
			continue
		}
		mag := gmag[p.Y][p.X]
		if mag <= 0 {
			continue
		}
		angle := math.Atan2(gy[p.Y][p.X], gx[p.Y][p.X])
		sinSum += mag * math.Sin(angle)
		cosSum += mag * math.Cos(angle)
		weightSum += mag
	}

	if weightSum == 0 {
		return 0, 0
	}
	meanAngle := math.Atan2(sinSum, cosSum)
	angleDeg = meanAngle * 180 / math.Pi
	if angleDeg < 0 {
		angleDeg += 360
	}
	r := math.Hypot(sinSum, cosSum) / weightSum
	return angleDeg, forensics.Clamp01(r)
}

// lightSourceClusters groups regions' light angles into clusters separated
// by gaps greater than 2*angle_tolerance on the circle (spec.md §4.11),
// returning the cluster count.
func lightSourceClusters(regions []ShadowRegion, angleTolerance float64) int {
	if len(regions) == 0 {
		return 0
	}
	angles := make([]float64, 0, len(regions))
	for _, r := range regions {
		if r.Confidence > 0.2 {
			angles = append(angles, math.Mod(r.LightAngleDeg+360, 360))
		}
	}
	if len(angles) == 0 {
		return 0
	}
	sortFloats(angles)

	gapThreshold := 2 * angleTolerance
	clusters := 1
	for i := 1; i < len(angles); i++ {
		if angles[i]-angles[i-1] > gapThreshold {
			clusters++
		}
	}
	// Wrap-around gap between the last and first angle (mod 360), fixing
	// the periodic boundary so a cluster split at 0/360 isn't double-counted.
	wrapGap := 360 - angles[len(angles)-1] + angles[0]
	if wrapGap <= gapThreshold && clusters > 1 {
		clusters--
	}
	return clusters
}

func sortFloats(vals []float64) {
	for i := 1; i < len(vals); i++ {
		for j := i; j > 0 && vals[j-1] > vals[j]; j-- {
			vals[j-1], vals[j] = vals[j], vals[j-1]
		}
	}
}
