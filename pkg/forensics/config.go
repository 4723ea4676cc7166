package forensics

import (
	"encoding/binary"

	"github.com/kschiffer/imgforensics/pkg/util"
)

// RunID is a deterministic, content-derived identifier for log
// correlation: identical (image bytes, config digest) pairs always produce
// the same RunID. It never affects any score and exists purely for
// diagnostics; DetectionResult does not carry one.
type RunID string

// runIDInput is the value hashed by NewRunID; util.HashUUID JSON-marshals
// whatever it's given before hashing, so this just gives it a stable shape.
type runIDInput struct {
	Image  []byte
	Config string
}

// NewRunID derives a RunID from raw image bytes and an arbitrary
// configuration fingerprint (e.g. a formatted config struct), via the
// teacher's content-derived hashing helper (pkg/util.HashUUID).
func NewRunID(imageBytes []byte, configFingerprint string) RunID {
	return RunID(util.HashUUID(runIDInput{Image: imageBytes, Config: configFingerprint}))
}

// FingerprintInts formats a slice of ints into a stable fingerprint
// string, used by callers that want to mix a few scalar config values
// into NewRunID without pulling in the whole config struct.
func FingerprintInts(vals ...int) string {
	buf := make([]byte, 0, len(vals)*8)
	for _, v := range vals {
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], uint64(int64(v)))
		buf = append(buf, tmp[:]...)
	}
	return string(buf)
}
