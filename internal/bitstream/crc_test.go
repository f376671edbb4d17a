// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package bitstream

import "testing"

func TestCRC8Deterministic(t *testing.T) {
	tbl := NewCRCTables()

	data := []byte{0x45, 0x00, 0x00, 0x54, 0x12, 0x34, 0x40, 0x00, 0x40, 0x01}

	a := tbl.CRC8(data)
	b := tbl.CRC8(data)
	if a != b {
		t.Fatalf("CRC8 not deterministic: %v != %v", a, b)
	}

	other := append([]byte{}, data...)
	other[0] ^= 0x01
	if tbl.CRC8(other) == a {
		t.Errorf("CRC8 did not change for a single flipped bit")
	}
}

func TestCRCShortWidths(t *testing.T) {
	tbl := NewCRCTables()
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	if v := tbl.CRC2(data); v > 0x3 {
		t.Errorf("CRC2 out of range: %v", v)
	}
	if v := tbl.CRC3(data); v > 0x7 {
		t.Errorf("CRC3 out of range: %v", v)
	}
	if v := tbl.CRC6(data); v > 0x3F {
		t.Errorf("CRC6 out of range: %v", v)
	}
	if v := tbl.CRC7(data); v > 0x7F {
		t.Errorf("CRC7 out of range: %v", v)
	}
}

func TestFCS32RoundTrip(t *testing.T) {
	tbl := NewCRCTables()

	header := []byte{0xFE, 0x01, 0x02, 0x03}
	payload := []byte("a ROHC segment payload")

	crc := tbl.FCS32(FCS32Init, header)
	crc = tbl.FCS32(crc, payload)

	// Recomputing over the concatenation must give the same remainder.
	whole := append(append([]byte{}, header...), payload...)
	want := tbl.FCS32(FCS32Init, whole)

	if crc != want {
		t.Errorf("incremental FCS32 %v != whole-buffer FCS32 %v", crc, want)
	}
}
