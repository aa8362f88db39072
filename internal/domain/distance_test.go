package domain

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func mustNodeID(t *testing.T, hex string) NodeID {
	t.Helper()
	id, err := NodeIDFromHex(hex)
	if err != nil {
		t.Fatalf("NodeIDFromHex(%q) unexpected error: %v", hex, err)
	}
	return id
}

func mustKey(t *testing.T, hex string) ContentKey {
	t.Helper()
	k, err := ContentKeyFromHex(hex)
	if err != nil {
		t.Fatalf("ContentKeyFromHex(%q) unexpected error: %v", hex, err)
	}
	return k
}

func TestDistanceTo(t *testing.T) {
	zeros := strings.Repeat("00", IDLen)
	tests := []struct {
		name    string
		node    string
		key     string
		want    Distance
		wantErr bool
	}{
		{
			name: "identical values give zero",
			node: strings.Repeat("ab", IDLen),
			key:  strings.Repeat("ab", IDLen),
			want: 0,
		},
		{
			name: "all ones against zero node",
			node: zeros,
			key:  strings.Repeat("ff", IDLen),
			want: MaxDistance,
		},
		{
			name: "distance reads the leading eight bytes",
			node: zeros,
			key:  "0102030405060708" + strings.Repeat("00", IDLen-8),
			want: 0x0102030405060708,
		},
		{
			name: "bytes past the eighth do not contribute",
			node: zeros,
			key:  strings.Repeat("00", 8) + strings.Repeat("ff", IDLen-8),
			want: 0,
		},
		{
			name: "eight byte key is the minimum valid input",
			node: zeros,
			key:  "ffffffffffffffff",
			want: MaxDistance,
		},
		{
			name:    "seven byte key is rejected",
			node:    zeros,
			key:     "01020304050607",
			want:    0,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := mustNodeID(t, tt.node)
			key := mustKey(t, tt.key)
			got, err := node.DistanceTo(key)
			if tt.wantErr {
				if !errors.Is(err, ErrShortDistanceInput) {
					t.Fatalf("DistanceTo() error = %v, want ErrShortDistanceInput", err)
				}
			} else if err != nil {
				t.Fatalf("DistanceTo() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DistanceTo() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDistanceToIsDeterministic(t *testing.T) {
	node, err := RandomNodeID()
	if err != nil {
		t.Fatalf("RandomNodeID() unexpected error: %v", err)
	}
	key := make(ContentKey, IDLen)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand.Read() unexpected error: %v", err)
	}

	first, err := node.DistanceTo(key)
	if err != nil {
		t.Fatalf("DistanceTo() unexpected error: %v", err)
	}
	second, err := node.DistanceTo(key)
	if err != nil {
		t.Fatalf("DistanceTo() unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("DistanceTo() is not deterministic: %d then %d", first, second)
	}

	self, err := node.DistanceTo(ContentKey(node[:]))
	if err != nil {
		t.Fatalf("DistanceTo() unexpected error: %v", err)
	}
	if self != 0 {
		t.Errorf("DistanceTo(own id) = %d, want 0", self)
	}
}

func TestXorDistanceAgreesWithDistanceTo(t *testing.T) {
	node := mustNodeID(t, "0x"+strings.Repeat("5a", IDLen))
	key := mustKey(t, "0x"+strings.Repeat("c3", IDLen))

	full := node.XorDistance(key)
	if len(full) != IDLen {
		t.Fatalf("XorDistance() length = %d, want %d", len(full), IDLen)
	}
	trunc, err := node.DistanceTo(key)
	if err != nil {
		t.Fatalf("DistanceTo() unexpected error: %v", err)
	}
	if got := Distance(binary.BigEndian.Uint64(full[:8])); got != trunc {
		t.Errorf("XorDistance() prefix = %d, want %d", got, trunc)
	}
}

func TestXorDistanceOrderingMatchesTruncation(t *testing.T) {
	// A greater truncated distance must imply a greater full-width value,
	// otherwise index ordering and radius comparisons could disagree.
	node := mustNodeID(t, "0x"+strings.Repeat("00", IDLen))
	near := mustKey(t, "0x"+"0000000000000001"+strings.Repeat("ff", IDLen-8))
	far := mustKey(t, "0x"+"0000000000000002"+strings.Repeat("00", IDLen-8))

	nearD, err := node.DistanceTo(near)
	if err != nil {
		t.Fatalf("DistanceTo() unexpected error: %v", err)
	}
	farD, err := node.DistanceTo(far)
	if err != nil {
		t.Fatalf("DistanceTo() unexpected error: %v", err)
	}
	if nearD >= farD {
		t.Fatalf("fixture broken: nearD = %d, farD = %d", nearD, farD)
	}
	if bytes.Compare(node.XorDistance(near), node.XorDistance(far)) >= 0 {
		t.Errorf("full-width ordering disagrees with truncated ordering")
	}
}

func TestXorDistanceShortKeyZeroFills(t *testing.T) {
	node := mustNodeID(t, "0x"+strings.Repeat("ff", IDLen))
	key := mustKey(t, "0x00ff")

	full := node.XorDistance(key)
	if full[0] != 0xff || full[1] != 0x00 {
		t.Errorf("XorDistance() leading bytes = %x, want ff00", full[:2])
	}
	for i := 2; i < IDLen; i++ {
		if full[i] != 0 {
			t.Errorf("XorDistance()[%d] = %x, want 0", i, full[i])
		}
	}
}
