package domain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Distance is the XOR distance between a content key and a node id,
// truncated to the most significant 8 bytes of the full 256-bit value.
// Only relative ordering matters to callers, and the leading 8 bytes
// preserve that ordering while keeping radius values and comparisons
// cheap fixed-width integers.
type Distance uint64

// MaxDistance is the largest representable Distance. A radius equal to
// MaxDistance accepts every key in the space.
const MaxDistance = Distance(math.MaxUint64)

var ErrShortDistanceInput = errors.New("xor distance input shorter than 8 bytes")

// DistanceTo returns the distance between key and the node identifier:
// the byte-wise XOR of the two values, interpreted big endian and
// truncated to its first 8 bytes. DistanceTo(n's own bytes) is 0.
//
// A key shorter than 8 bytes cannot yield a meaningful distance; the
// method returns 0 together with ErrShortDistanceInput so callers can
// surface a diagnostic instead of failing hard. No stored content should
// realistically hit this path.
func (n NodeID) DistanceTo(key ContentKey) (Distance, error) {
	if len(key) < 8 {
		return 0, fmt.Errorf("%w: got %d bytes", ErrShortDistanceInput, len(key))
	}
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = key[i] ^ n[i]
	}
	return Distance(binary.BigEndian.Uint64(buf[:])), nil
}

// XorDistance returns the full-width XOR of key and the node identifier
// as a fixed IDLen-byte big-endian value. Positions past the key's
// length are zero; key bytes past IDLen are ignored. Comparing two of
// these values byte-wise is the exact 256-bit distance ordering, and
// for keys of at least 8 bytes the first 8 bytes agree with DistanceTo.
func (n NodeID) XorDistance(key ContentKey) []byte {
	out := make([]byte, IDLen)
	m := len(key)
	if m > IDLen {
		m = IDLen
	}
	for i := 0; i < m; i++ {
		out[i] = key[i] ^ n[i]
	}
	return out
}
