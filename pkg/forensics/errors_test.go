package forensics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrImageTooSmallMessage(t *testing.T) {
	err := ErrImageTooSmall(32)
	assert.Contains(t, err.Error(), "32")
	assert.True(t, IsKind(err, KindImageTooSmall))
}

func TestErrIOWrapsInner(t *testing.T) {
	inner := errors.New("disk full")
	err := ErrIO("write failed", inner)
	assert.ErrorIs(t, err, inner)
	assert.True(t, IsKind(err, KindIO))
}

func TestIsKindFalseForOtherErrorTypes(t *testing.T) {
	assert.False(t, IsKind(errors.New("plain"), KindIO))
}

func TestIsKindFalseForMismatchedKind(t *testing.T) {
	err := ErrInvalidParameter("bad value")
	assert.False(t, IsKind(err, KindIO))
	assert.True(t, IsKind(err, KindInvalidParameter))
}
