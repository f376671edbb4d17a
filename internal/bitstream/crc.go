// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package bitstream

// CRC polynomials per RFC 3095 §5.9, given as reflected (LSB-first)
// divisors. FCS-32 (RFC 1662) is included for ROHC segmentation.
const (
	poly2     = 0x3
	poly3     = 0x6
	poly6     = 0x23
	poly7     = 0x79
	poly8     = 0xE0 // reflected form of the CCITT 0x07 polynomial
	polyFCS32 = 0xEDB88320
)

// CRCTables holds the precomputed, read-only tables a Compressor needs.
// The 8-bit CRC and FCS-32 operate over the full byte domain and so are
// genuinely table-driven; the narrower 2/3/6/7-bit CRCs used by UO-0,
// UO-1, and UOR-2 are computed bit-at-a-time against their own short
// reflected LFSR, which is how RFC 3095's nonstandard widths are
// actually defined.
type CRCTables struct {
	crc8  [256]byte
	fcs32 [256]uint32
}

// NewCRCTables builds every CRC table used by the engine. Call once per
// Compressor instance; the resulting tables are read-only afterwards.
func NewCRCTables() *CRCTables {
	return &CRCTables{
		crc8:  buildTable8(poly8),
		fcs32: buildTableFCS32(polyFCS32),
	}
}

func buildTable8(poly byte) (table [256]byte) {
	for i := 0; i < 256; i++ {
		crc := byte(i)
		for b := 0; b < 8; b++ {
			if crc&0x01 != 0 {
				crc = (crc >> 1) ^ poly
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
	return
}

func buildTableFCS32(poly uint32) (table [256]uint32) {
	for i := 0; i < 256; i++ {
		crc := uint32(i)
		for b := 0; b < 8; b++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ poly
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
	return
}

// crcShort runs a reflected, bit-at-a-time CRC of the given width and
// polynomial over data, LSB-first within each byte. The starting
// remainder is all-ones within the width (RFC 3095 initializes every
// short CRC that way).
func crcShort(data []byte, width uint, poly byte) byte {
	mask := byte(1<<width - 1)
	crc := mask // all-ones init
	for _, by := range data {
		b := by
		for i := 0; i < 8; i++ {
			bit := (crc & 0x01) ^ (b & 0x01)
			crc >>= 1
			if bit != 0 {
				crc ^= poly
			}
			crc &= mask
			b >>= 1
		}
	}
	return crc
}

// CRC2 computes the RFC 3095 2-bit CRC over data.
func (t *CRCTables) CRC2(data []byte) byte {
	return crcShort(data, 2, poly2)
}

// CRC3 computes the RFC 3095 3-bit CRC over data.
func (t *CRCTables) CRC3(data []byte) byte {
	return crcShort(data, 3, poly3)
}

// CRC6 computes the RFC 3095 6-bit CRC over data.
func (t *CRCTables) CRC6(data []byte) byte {
	return crcShort(data, 6, poly6)
}

// CRC7 computes the RFC 3095 7-bit CRC over data.
func (t *CRCTables) CRC7(data []byte) byte {
	return crcShort(data, 7, poly7)
}

// CRC8 computes the RFC 3095 8-bit CRC (init 0xFF) over data.
func (t *CRCTables) CRC8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc = t.crc8[crc^b]
	}
	return crc
}

// FCS32Init is the RFC 1662 initial remainder for FCS-32.
const FCS32Init uint32 = 0xFFFFFFFF

// FCS32 computes the RFC 1662 32-bit FCS over data, starting from init
// (pass FCS32Init for a fresh computation, or a running value to extend
// a computation across multiple buffers).
func (t *CRCTables) FCS32(init uint32, data []byte) uint32 {
	crc := init
	for _, b := range data {
		crc = t.fcs32[byte(crc)^b] ^ (crc >> 8)
	}
	return crc
}
