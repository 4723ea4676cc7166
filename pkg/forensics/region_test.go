package forensics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionValid(t *testing.T) {
	tests := []struct {
		name string
		r    Region
		w, h int
		want bool
	}{
		{"fits exactly", Region{X: 0, Y: 0, Width: 10, Height: 10}, 10, 10, true},
		{"exceeds width", Region{X: 5, Y: 0, Width: 10, Height: 10}, 10, 10, false},
		{"zero width", Region{X: 0, Y: 0, Width: 0, Height: 10}, 10, 10, false},
		{"negative extent", Region{X: 0, Y: 0, Width: -1, Height: 10}, 10, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Valid(tt.w, tt.h))
		})
	}
}

func TestRegionOverlaps(t *testing.T) {
	a := Region{X: 0, Y: 0, Width: 10, Height: 10}
	tests := []struct {
		name string
		b    Region
		want bool
	}{
		{"identical", Region{X: 0, Y: 0, Width: 10, Height: 10}, true},
		{"touching edge not overlapping", Region{X: 10, Y: 0, Width: 10, Height: 10}, false},
		{"overlapping corner", Region{X: 5, Y: 5, Width: 10, Height: 10}, true},
		{"far away", Region{X: 100, Y: 100, Width: 10, Height: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(a))
		})
	}
}

func TestMergeRegionsIsOrderIndependent(t *testing.T) {
	regions := []Region{
		{X: 0, Y: 0, Width: 4, Height: 4},
		{X: 4, Y: 0, Width: 4, Height: 4},
		{X: 20, Y: 20, Width: 4, Height: 4},
	}
	reversed := []Region{regions[2], regions[1], regions[0]}

	got1 := MergeRegions(regions, 0)
	got2 := MergeRegions(reversed, 0)

	assert.ElementsMatch(t, got1, got2)
	assert.Len(t, got1, 2)
}

func TestMergeRegionsIsIdempotent(t *testing.T) {
	regions := []Region{
		{X: 0, Y: 0, Width: 4, Height: 4},
		{X: 3, Y: 0, Width: 4, Height: 4},
		{X: 6, Y: 0, Width: 4, Height: 4},
	}
	once := MergeRegions(regions, 1)
	twice := MergeRegions(once, 1)
	assert.ElementsMatch(t, once, twice)
}

func TestMergeRegionsEmpty(t *testing.T) {
	assert.Nil(t, MergeRegions(nil, 0))
}

func TestRegionCenterDistance(t *testing.T) {
	a := Region{X: 0, Y: 0, Width: 2, Height: 2}
	b := Region{X: 3, Y: 4, Width: 2, Height: 2}
	assert.InDelta(t, 5.0, a.CenterDistance(b), 1e-9)
}
