// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"github.com/oprsystem/rohc/internal/bitstream"
	"github.com/oprsystem/rohc/internal/ipparse"
)

// wireHeader prefixes body with the CID framing spec.md §4.7 requires:
// small CIDs get an Add-CID octet (1110xxxx) unless cid==0, which gets
// none; large CIDs get an SDVL-encoded CID inserted right after the
// packet-type discriminator byte (body[0]).
func wireHeader(cidType CIDType, cid int, body []byte) ([]byte, error) {
	if cidType == SmallCID {
		if cid == 0 {
			return body, nil
		}
		return append([]byte{0xE0 | byte(cid)}, body...), nil
	}

	enc, err := bitstream.SDVLEncode(uint32(cid))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return enc, nil
	}
	out := make([]byte, 0, len(body)+len(enc))
	out = append(out, body[0])
	out = append(out, enc...)
	out = append(out, body[1:]...)
	return out, nil
}

// staticChainIPv4 encodes the fields that never change across a flow's
// lifetime: version nibble, next protocol, source and destination
// addresses.
func staticChainIPv4(h *ipparse.Header) []byte {
	b := make([]byte, 0, 10)
	b = append(b, byte(h.Version)<<4)
	b = append(b, h.NextProto)
	b = append(b, h.Src.To4()...)
	b = append(b, h.Dst.To4()...)
	return b
}

// staticChainIPv6 mirrors staticChainIPv4 for the wider IPv6 addresses
// and flow label.
func staticChainIPv6(h *ipparse.Header) []byte {
	b := make([]byte, 0, 37)
	b = append(b, byte(h.Version)<<4)
	b = append(b, h.NextProto)
	b = append(b, byte(h.FlowLabel>>16), byte(h.FlowLabel>>8), byte(h.FlowLabel))
	b = append(b, h.Src.To16()...)
	b = append(b, h.Dst.To16()...)
	return b
}

// dynamicChainIPv4 encodes the fields a context must resynchronize on
// an IR/IR-DYN refresh: TOS, TTL, IP-ID, and the DF/RND/NBO/SID flags
// packed into one byte.
func dynamicChainIPv4(h *ipparse.Header, f *ipv4Flags) []byte {
	flags := byte(0)
	if h.DF {
		flags |= 0x08
	}
	if f.rnd {
		flags |= 0x04
	}
	if f.nbo {
		flags |= 0x02
	}
	if f.sid {
		flags |= 0x01
	}
	return []byte{h.TOS, h.TTL, byte(h.IPID >> 8), byte(h.IPID), flags}
}

// dynamicChainIPv6 encodes IPv6's single dynamic field, the traffic
// class / hop limit pair (the flow label is static in this model).
func dynamicChainIPv6(h *ipparse.Header) []byte {
	return []byte{h.TOS, h.TTL}
}

// writeStaticChain appends the outer (and, if present, inner) static
// chain to b.
func writeStaticChain(b []byte, chain *ipparse.Chain) []byte {
	if chain.Outer.Version == 4 {
		b = append(b, staticChainIPv4(&chain.Outer)...)
	} else {
		b = append(b, staticChainIPv6(&chain.Outer)...)
	}
	if chain.Inner != nil {
		if chain.Inner.Version == 4 {
			b = append(b, staticChainIPv4(chain.Inner)...)
		} else {
			b = append(b, staticChainIPv6(chain.Inner)...)
		}
	}
	return b
}

// writeDynamicChain appends the outer (and, if present, inner) dynamic
// chain to b.
func writeDynamicChain(b []byte, ctx *Context, chain *ipparse.Chain) []byte {
	if chain.Outer.Version == 4 {
		b = append(b, dynamicChainIPv4(&chain.Outer, &ctx.generic.outer)...)
	} else {
		b = append(b, dynamicChainIPv6(&chain.Outer)...)
	}
	if chain.Inner != nil {
		if chain.Inner.Version == 4 {
			b = append(b, dynamicChainIPv4(chain.Inner, &ctx.generic.inner)...)
		} else {
			b = append(b, dynamicChainIPv6(chain.Inner)...)
		}
	}
	return b
}

// buildIR assembles an IR packet: 1111110D | profile ID | CRC-8 | static
// chain | [dynamic chain | SN (16 bits, network order)], per spec.md §6.
// dynamicPresent selects the D bit; profileDynamic, if non-nil, is
// appended after the generic dynamic chain (e.g. RTP's SSRC/TS block).
func buildIR(ctx *Context, chain *ipparse.Chain, crc *bitstream.CRCTables, profileID ProfileID, uncompressedRef []byte, profileDynamic []byte, dynamicPresent bool) []byte {
	first := byte(0xFC) // 1111110D, D cleared
	if dynamicPresent {
		first |= 0x01
	}

	body := []byte{first, byte(profileID)}
	body = append(body, crc.CRC8(uncompressedRef))
	body = writeStaticChain(body, chain)

	if dynamicPresent {
		body = writeDynamicChain(body, ctx, chain)
		body = append(body, profileDynamic...)
		body = append(body, byte(ctx.generic.sn>>8), byte(ctx.generic.sn))
	}

	return body
}

// buildIRDYN assembles an IR-DYN packet: 11111000 | profile ID | CRC-8 |
// dynamic chain | SN.
func buildIRDYN(ctx *Context, chain *ipparse.Chain, crc *bitstream.CRCTables, profileID ProfileID, uncompressedRef []byte, profileDynamic []byte) []byte {
	body := []byte{0xF8, byte(profileID)}
	body = append(body, crc.CRC8(uncompressedRef))
	body = writeDynamicChain(body, ctx, chain)
	body = append(body, profileDynamic...)
	body = append(body, byte(ctx.generic.sn>>8), byte(ctx.generic.sn))
	return body
}

// buildUO0 assembles a UO-0 packet: 0SSSSCCC (4 SN LSBs, 3-bit CRC).
func buildUO0(sn uint16, crc3 byte) []byte {
	b := byte(sn&0x0F) << 3
	b |= crc3 & 0x07
	return []byte{b}
}

// buildUO1 assembles a UO-1 (IP-ID) packet: 10IIIIII | SSSSSCCC.
func buildUO1(ipid6 byte, sn uint16, crc3 byte) []byte {
	first := byte(0x80) | (ipid6 & 0x3F)
	second := byte(sn&0x1F) << 3
	second |= crc3 & 0x07
	return []byte{first, second}
}

// buildUOR2 assembles a UOR-2 packet: 110SSSSS | MXCCCCCC (1 mode bit,
// 1 extension-present bit, 6 CRC bits), with an optional trailing
// extension selected by chooseExtension.
func buildUOR2(sn uint16, mode Mode, crc6 byte, extension []byte) []byte {
	first := byte(0xC0) | byte(sn&0x1F)
	second := byte(mode&0x01) << 7
	if len(extension) > 0 {
		second |= 0x40
	}
	second |= crc6 & 0x3F
	b := []byte{first, second}
	return append(b, extension...)
}

// buildNormal assembles the Uncompressed profile's "Normal" packet:
// discriminator 11111100 followed by the raw reference header and
// payload verbatim.
func buildNormal(raw []byte) []byte {
	return append([]byte{0xFC}, raw...)
}
