// Package random draws the seeds used to roll skill checks.
//
// Seeds come from crypto/rand so a deferred check envelope carries entropy
// an external resolver cannot predict from the session transcript, while the
// roll itself stays reproducible from the recorded seed.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed returns a high-entropy seed for one check resolution.
func NewSeed() (int64, error) {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("draw check seed: %w", err)
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}
