// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package bitstream

import "testing"

func TestSDVLRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 0x7F, 0x80, 0x3FFF, 0x4000, 0x1FFFFF, 0x200000, sdvlMax}

	for _, v := range values {
		enc, err := SDVLEncode(v)
		if err != nil {
			t.Fatalf("encode %v: %v", v, err)
		}

		got, n, err := SDVLDecode(enc)
		if err != nil {
			t.Fatalf("decode %v: %v", v, err)
		}
		if n != len(enc) {
			t.Errorf("value %v: decoded length %v != encoded length %v", v, n, len(enc))
		}
		if got != v {
			t.Errorf("value %v: round trip got %v", v, got)
		}
	}
}

func TestSDVLLen(t *testing.T) {
	cases := map[uint32]int{
		0:        1,
		0x7F:     1,
		0x80:     2,
		0x3FFF:   2,
		0x4000:   3,
		0x1FFFFF: 3,
		0x200000: 4,
	}

	for v, want := range cases {
		enc, err := SDVLEncode(v)
		if err != nil {
			t.Fatalf("encode %v: %v", v, err)
		}
		if len(enc) != want {
			t.Errorf("value %v: got length %v, want %v", v, len(enc), want)
		}
		if got := SDVLLen(v); got != want {
			t.Errorf("SDVLLen(%v) = %v, want %v", v, got, want)
		}
	}
}

func TestSDVLTooLarge(t *testing.T) {
	if _, err := SDVLEncode(sdvlMax + 1); err != ErrSDVLTooLarge {
		t.Errorf("got %v, want ErrSDVLTooLarge", err)
	}
}

func TestSDVLTooShort(t *testing.T) {
	if _, _, err := SDVLDecode(nil); err != ErrSDVLTooShort {
		t.Errorf("got %v, want ErrSDVLTooShort", err)
	}

	// two-byte form but only one byte supplied
	if _, _, err := SDVLDecode([]byte{0x80}); err != ErrSDVLTooShort {
		t.Errorf("got %v, want ErrSDVLTooShort", err)
	}
}
