// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"bytes"
	"hash/fnv"

	"github.com/oprsystem/rohc/internal/bitstream"
	"github.com/oprsystem/rohc/internal/ipparse"
)

// flowKey hashes the fields that identify a flow at the IP layer
// (addresses and next-header) into an opaque ContextKey. Transport-
// aware profiles extend it with port numbers via flowKeyWithPorts.
func flowKey(chain *ipparse.Chain) ContextKey {
	h := fnv.New64a()
	writeHeaderKey(h, &chain.Outer)
	if chain.Inner != nil {
		writeHeaderKey(h, chain.Inner)
	}
	return ContextKey(h.Sum64())
}

// flowKeyWithPorts additionally folds in the transport source and
// destination ports, so two flows between the same hosts on different
// ports land in different contexts.
func flowKeyWithPorts(chain *ipparse.Chain, srcPort, dstPort uint16) ContextKey {
	h := fnv.New64a()
	writeHeaderKey(h, &chain.Outer)
	if chain.Inner != nil {
		writeHeaderKey(h, chain.Inner)
	}
	h.Write([]byte{byte(srcPort >> 8), byte(srcPort), byte(dstPort >> 8), byte(dstPort)})
	return ContextKey(h.Sum64())
}

func writeHeaderKey(h interface{ Write([]byte) (int, error) }, hdr *ipparse.Header) {
	h.Write(hdr.Src)
	h.Write(hdr.Dst)
	h.Write([]byte{hdr.NextProto})
}

// captureStaticChain snapshots the static chain at context creation
// time for later CheckContext comparisons.
func captureStaticChain(ctx *Context, chain *ipparse.Chain) {
	ctx.generic.staticChain = writeStaticChain(nil, chain)
}

// staticChainMatches reports whether chain's static chain still
// matches what was captured at context creation.
func staticChainMatches(ctx *Context, chain *ipparse.Chain) bool {
	return bytes.Equal(ctx.generic.staticChain, writeStaticChain(nil, chain))
}

// Transport next-header values used by the transport-aware profiles.
const (
	nextHeaderUDP     = 17
	nextHeaderUDPLite = 136
	nextHeaderESP     = 50
	nextHeaderTCP     = 6
)

// transportHeader returns the header (outer, or inner if tunneled)
// whose NextProto names the transport protocol carried in the
// payload, since RFC 3095 profiles key on the innermost IP header.
func transportHeader(chain *ipparse.Chain) *ipparse.Header {
	if chain.Inner != nil {
		return chain.Inner
	}
	return &chain.Outer
}

// parseUDPPorts reads the first four bytes of a UDP or UDP-Lite
// payload (both share the same header layout).
func parseUDPPorts(payload []byte) (src, dst uint16, ok bool) {
	if len(payload) < 8 {
		return 0, 0, false
	}
	src = uint16(payload[0])<<8 | uint16(payload[1])
	dst = uint16(payload[2])<<8 | uint16(payload[3])
	return src, dst, true
}

// udpChecksumField returns the two checksum bytes (offset 6) of a UDP
// datagram, the one field RFC 3095's UDP profile carries in its
// dynamic chain beyond the generic IP dynamic fields.
func udpChecksumField(payload []byte) []byte {
	if len(payload) < 8 {
		return []byte{0, 0}
	}
	return payload[6:8]
}

// udpLiteCoverageField returns the two checksum-coverage-length bytes
// (offset 4) of a UDP-Lite datagram (RFC 3828/4019).
func udpLiteCoverageField(payload []byte) []byte {
	if len(payload) < 8 {
		return []byte{0, 0}
	}
	return payload[4:6]
}

// applyGenericFeedback implements the profile-independent feedback
// reactions of spec.md §4.8: a NACK (first byte's high bit set) forces
// a re-initialization; anything else is ignored at this generic level.
func applyGenericFeedback(ctx *Context, data []byte) {
	if len(data) == 0 {
		return
	}
	const nackBit = 0x80
	if data[0]&nackBit != 0 {
		ctx.state = StateIR
		ctx.irCount = 0
	}
}

// profileExtra is the profile-specific slice of bytes appended after
// the generic dynamic chain in IR/IR-DYN packets (e.g. UDP's
// checksum, RTP's SSRC/TS/CSRC block). extraDynamicChanged feeds
// decidePacketType's FO-state dynamic-field-change budget.
type profileExtra struct {
	dynamic             []byte
	extraDynamicChanged int

	// soExtra, when non-empty, is appended after the CRC of a
	// compressed-state packet (UO-0/UO-1/UOR-2) -- RTP's scaled
	// timestamp extension bits, carried the way extensions 0-3 carry
	// extra SN/IP-ID bits (spec.md §4.6).
	soExtra []byte
	// rtpLabels requests RTP's SO-state packet naming (UO-1-TS,
	// UOR-2-RTP) in place of the generic UO-1/UOR-2 names; only the
	// RTP profile sets this.
	rtpLabels bool
}

// encodeGeneric runs the packet-type decision and builder shared by
// every IP-header-compressing profile (IP-only, UDP, UDP-Lite, ESP,
// RTP): only the profile ID and the transport-specific dynamic bytes
// differ between them (spec.md §4.6).
func encodeGeneric(ctx *Context, chain *ipparse.Chain, raw []byte, crc *bitstream.CRCTables, out []byte, profileID ProfileID, extra profileExtra) (int, PacketType, error) {
	ptype := ctx.decidePacketType(extra.extraDynamicChanged)

	headerLen := len(raw) - len(chain.Payload)
	if headerLen < 0 || headerLen > len(raw) {
		headerLen = len(raw)
	}
	uncompressedRef := raw[:headerLen]

	var body []byte
	switch ptype {
	case PacketIR:
		body = buildIR(ctx, chain, crc, profileID, uncompressedRef, extra.dynamic, true)
	case PacketIRDYN:
		body = buildIRDYN(ctx, chain, crc, profileID, uncompressedRef, extra.dynamic)
	case PacketUOR2:
		crc6 := crc.CRC6(uncompressedRef)
		ext := extra.soExtra
		extNum := 0
		if ext == nil {
			extNum = chooseExtension(&ctx.generic.scratch, ctx.outerIsIPv4())
			ext = extensionBytes(chain.Outer.IPID, ctx.generic.scratch.newSN, extNum)
		}
		body = buildUOR2(ctx.generic.scratch.newSN, ctx.mode, crc6, ext)
		switch {
		case extra.rtpLabels:
			ptype = PacketUOR2RTP
		case extNum == 1 || extNum == 2:
			ptype = PacketUOR2ID
		}
	case PacketUO1:
		crc3 := crc.CRC3(uncompressedRef)
		body = buildUO1(byte(chain.Outer.IPID), ctx.generic.scratch.newSN, crc3)
		body = append(body, extra.soExtra...)
		if extra.rtpLabels {
			ptype = PacketUO1TS
		}
	case PacketUO0:
		crc3 := crc.CRC3(uncompressedRef)
		body = buildUO0(ctx.generic.scratch.newSN, crc3)
		body = append(body, extra.soExtra...)
	default:
		body = buildIRDYN(ctx, chain, crc, profileID, uncompressedRef, extra.dynamic)
		ptype = PacketIRDYN
	}

	if len(body) > cap(out) {
		return 0, ptype, ErrOutputTooSmall
	}
	copy(out[:cap(out)], body)
	return len(body), ptype, nil
}
