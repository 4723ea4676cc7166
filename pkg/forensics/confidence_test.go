package forensics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Bucket
	}{
		{0.0, BucketNone},
		{0.19, BucketNone},
		{0.2, BucketLow},
		{0.39, BucketLow},
		{0.4, BucketMedium},
		{0.59, BucketMedium},
		{0.6, BucketHigh},
		{0.79, BucketHigh},
		{0.8, BucketVeryHigh},
		{1.0, BucketVeryHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketFor(tt.score), "score=%v", tt.score)
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-5))
	assert.Equal(t, 1.0, Clamp01(5))
	assert.Equal(t, 0.5, Clamp01(0.5))
}

func TestBucketString(t *testing.T) {
	assert.Equal(t, "None", BucketNone.String())
	assert.Equal(t, "VeryHigh", BucketVeryHigh.String())
}
