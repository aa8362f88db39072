package domain

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// IDLen is the byte width of identifiers in the key space (256 bits).
const IDLen = 32

var ErrInvalidHexString = errors.New("invalid hex string")

// NodeID is the local peer's fixed identifier in the key space.
// It is assigned once at construction and acts as the fixed point of
// every distance computation. Big endian.
type NodeID [IDLen]byte

// ContentKey identifies one piece of content. Keys live in the same key
// space as node identifiers and are ranked against them by XOR distance.
// The bytes are opaque to this package; a well-formed key is IDLen bytes.
type ContentKey []byte

// RandomNodeID returns an identifier drawn from crypto/rand.
func RandomNodeID() (NodeID, error) {
	var id NodeID
	if _, err := rand.Read(id[:]); err != nil {
		return NodeID{}, fmt.Errorf("generate node id: %w", err)
	}
	return id, nil
}

// NodeIDFromHex parses a NodeID from a hexadecimal string.
// The string may optionally start with 0x or 0X.
// If it encodes more than IDLen bytes, the least significant IDLen bytes
// are kept; if fewer, the value is left padded with zeros.
// An empty or invalid string yields ErrInvalidHexString.
func NodeIDFromHex(s string) (NodeID, error) {
	str := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if str == "" {
		return NodeID{}, ErrInvalidHexString
	}
	bt, err := hex.DecodeString(str)
	if err != nil {
		return NodeID{}, ErrInvalidHexString
	}
	var id NodeID
	if len(bt) >= IDLen {
		copy(id[:], bt[len(bt)-IDLen:])
	} else {
		copy(id[IDLen-len(bt):], bt)
	}
	return id, nil
}

// Hex returns the identifier as a bare hexadecimal string.
func (n NodeID) Hex() string {
	return hex.EncodeToString(n[:])
}

// String implements fmt.Stringer with a 0x prefix.
func (n NodeID) String() string {
	return "0x" + hex.EncodeToString(n[:])
}

// ContentKeyFromHex parses a ContentKey from a hexadecimal string.
// The string may optionally start with 0x or 0X. The key length is
// preserved as encoded. An empty or invalid string yields
// ErrInvalidHexString.
func ContentKeyFromHex(s string) (ContentKey, error) {
	str := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if str == "" {
		return nil, ErrInvalidHexString
	}
	bt, err := hex.DecodeString(str)
	if err != nil {
		return nil, ErrInvalidHexString
	}
	return ContentKey(bt), nil
}

// Hex returns the key as a bare hexadecimal string.
func (k ContentKey) Hex() string {
	if k == nil {
		return "<nil>"
	}
	return hex.EncodeToString(k)
}

// String implements fmt.Stringer with a 0x prefix.
func (k ContentKey) String() string {
	if k == nil {
		return "<nil>"
	}
	return "0x" + hex.EncodeToString(k)
}

// Equal reports whether two keys are identical byte for byte.
func (k ContentKey) Equal(b ContentKey) bool {
	return bytes.Equal(k, b)
}

// Clone returns an independent copy of the key.
func (k ContentKey) Clone() ContentKey {
	if k == nil {
		return nil
	}
	out := make(ContentKey, len(k))
	copy(out, k)
	return out
}
