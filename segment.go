// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import "github.com/oprsystem/rohc/internal/bitstream"

// rru ("Reconstructed Reception Unit" buffer, spec.md §4.9) holds one
// oversized ROHC packet plus its FCS-32 trailer while GetSegment drains
// it across multiple MRRU-bounded segments.
type rru struct {
	buf    []byte
	cursor int
}

// pending reports whether a buffered packet is still being drained.
func (r *rru) pending() bool {
	return r.cursor < len(r.buf)
}

// buffer appends payload's FCS-32 checksum (RFC 1662, over the whole
// framed packet) and stores the result for segmented delivery. Calling
// buffer while a previous packet is still pending silently replaces the
// prior buffer; Compress does not check for a pending unit first.
func (r *rru) buffer(payload []byte, crc *bitstream.CRCTables) error {
	sum := crc.FCS32(bitstream.FCS32Init, payload)
	buf := make([]byte, 0, len(payload)+4)
	buf = append(buf, payload...)
	buf = append(buf, byte(sum), byte(sum>>8), byte(sum>>16), byte(sum>>24))
	r.buf = buf
	r.cursor = 0
	return nil
}

// segmentHeaderLen is the one-byte discriminator (11111110 / 11111111)
// every segment carries ahead of its data, per spec.md §4.9.
const segmentHeaderLen = 1

// GetSegment drains one MRRU-bounded slice of the buffered RRU into
// out. The discriminator's low bit distinguishes a final segment
// (0xFF) from one with more to follow (0xFE).
func (c *Compressor) GetSegment(out []byte) (Result, error) {
	if !c.rru.pending() {
		return Result{Status: StatusOK, N: 0}, nil
	}
	if len(out) < segmentHeaderLen+1 {
		return Result{}, ErrOutputTooSmall
	}

	remaining := c.rru.buf[c.rru.cursor:]
	capacity := len(out) - segmentHeaderLen
	if c.mrru > 0 && capacity > c.mrru-segmentHeaderLen {
		capacity = c.mrru - segmentHeaderLen
	}
	if capacity > len(remaining) {
		capacity = len(remaining)
	}
	if capacity <= 0 {
		return Result{}, ErrOutputTooSmall
	}

	final := capacity >= len(remaining)
	header := byte(0xFE)
	if final {
		header = 0xFF
	}

	out[0] = header
	n := 1 + copy(out[1:], remaining[:capacity])
	c.rru.cursor += capacity

	c.stats.SegmentsEmitted++

	status := StatusNeedSegment
	if final {
		status = StatusOK
		c.rru.buf = nil
		c.rru.cursor = 0
	}
	return Result{Status: status, N: n}, nil
}
