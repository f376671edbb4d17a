// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"github.com/oprsystem/rohc/internal/bitstream"
	"github.com/oprsystem/rohc/internal/ipparse"
)

// rtpHeaderLen is the fixed RTP header length before any CSRC list
// (RFC 3550); CSRC entries, if any, are treated as opaque payload.
const rtpHeaderLen = 12

// rtpSpecific is Context.specific for Profile 0x0001.
type rtpSpecific struct {
	srcPort, dstPort uint16
	ssrc             uint32
	payloadType      byte
	marker           bool

	lastSN uint32
	lastTS uint32
	scale  uint32 // 0 until learned from two consecutive packets

	tsWindow *bitstream.Window
}

type rtpProfile struct{}

func newRTPProfile() Profile { return rtpProfile{} }

func (rtpProfile) ID() ProfileID       { return ProfileRTP }
func (rtpProfile) Description() string { return "RTP" }

// rtpFields reports the fixed fields of an RTP header at the front of
// payload, and whether payload is plausibly RTP (version 2, per RFC
// 3550 §5.1).
func rtpFields(payload []byte) (seq uint16, ts, ssrc uint32, marker bool, pt byte, ok bool) {
	if len(payload) < rtpHeaderLen {
		return
	}
	if payload[0]>>6 != 2 {
		return
	}
	marker = payload[1]&0x80 != 0
	pt = payload[1] & 0x7F
	seq = uint16(payload[2])<<8 | uint16(payload[3])
	ts = uint32(payload[4])<<24 | uint32(payload[5])<<16 | uint32(payload[6])<<8 | uint32(payload[7])
	ssrc = uint32(payload[8])<<24 | uint32(payload[9])<<16 | uint32(payload[10])<<8 | uint32(payload[11])
	ok = true
	return
}

func (rtpProfile) CheckProfile(chain *ipparse.Chain, rtpPorts map[uint16]bool, key *ContextKey) bool {
	h := transportHeader(chain)
	if h.NextProto != nextHeaderUDP {
		return false
	}
	src, dst, ok := parseUDPPorts(chain.Payload)
	if !ok || len(chain.Payload) < 8 {
		return false
	}
	if !rtpPorts[src] && !rtpPorts[dst] {
		return false
	}
	if _, _, _, _, _, ok := rtpFields(chain.Payload[8:]); !ok {
		return false
	}
	*key = flowKeyWithPorts(chain, src, dst)
	return true
}

func (rtpProfile) CheckContext(ctx *Context, chain *ipparse.Chain) bool {
	if !staticChainMatches(ctx, chain) {
		return false
	}
	sp, ok := ctx.specific.(*rtpSpecific)
	if !ok || len(chain.Payload) < 8+rtpHeaderLen {
		return false
	}
	_, _, ssrc, _, _, _ := rtpFields(chain.Payload[8:])
	return ssrc == sp.ssrc
}

func (rtpProfile) Create(ctx *Context, chain *ipparse.Chain) {
	captureStaticChain(ctx, chain)
	src, dst, _ := parseUDPPorts(chain.Payload)
	win, _ := bitstream.NewWindow(ctx.compressorWindowWidth(), 32)
	sp := &rtpSpecific{srcPort: src, dstPort: dst, tsWindow: win}
	if len(chain.Payload) >= 8+rtpHeaderLen {
		seq, ts, ssrc, marker, pt, _ := rtpFields(chain.Payload[8:])
		sp.ssrc = ssrc
		sp.payloadType = pt
		sp.marker = marker
		sp.lastSN = uint32(seq)
		sp.lastTS = ts
	}
	ctx.specific = sp
}

func (rtpProfile) Destroy(ctx *Context) { ctx.specific = nil }

func (rtpProfile) Encode(ctx *Context, chain *ipparse.Chain, raw []byte, crc *bitstream.CRCTables, out []byte) (int, PacketType, error) {
	sp, ok := ctx.specific.(*rtpSpecific)
	if !ok || len(chain.Payload) < 8+rtpHeaderLen {
		return 0, 0, ErrEncodingFailed
	}
	seq, ts, ssrc, marker, pt, _ := rtpFields(chain.Payload[8:])

	deltaSN := uint32(seq) - sp.lastSN
	deltaTS := ts - sp.lastTS
	if sp.scale == 0 && deltaSN != 0 && deltaTS != 0 {
		sp.scale = deltaTS / deltaSN
		if sp.scale == 0 {
			sp.scale = 1
		}
	}

	scaledTS := ts
	if sp.scale > 0 {
		scaledTS = ts / sp.scale
	}
	sp.tsWindow.Add(scaledTS)

	markerChanged := 0
	if marker != sp.marker {
		markerChanged = 1
	}

	dynamic := []byte{
		byte(ssrc >> 24), byte(ssrc >> 16), byte(ssrc >> 8), byte(ssrc),
		pt,
		byte(ts >> 24), byte(ts >> 16), byte(ts >> 8), byte(ts),
	}
	if marker {
		dynamic = append(dynamic, 1)
	} else {
		dynamic = append(dynamic, 0)
	}

	// RTP TS uses p = floor(window_width/2) - 1 (spec.md §4.1), distinct
	// from SN's -1 and IP-ID's 0 offsets used elsewhere.
	tsOffset := ctx.compressorWindowWidth()/2 - 1
	var soExtra []byte
	if !sp.tsWindow.Fits(scaledTS, tsOffset, 6) {
		soExtra = []byte{byte(scaledTS >> 8), byte(scaledTS)}
	} else {
		soExtra = []byte{byte(scaledTS)}
	}

	n, ptype, err := encodeGeneric(ctx, chain, raw, crc, out, ProfileRTP, profileExtra{
		dynamic:             dynamic,
		extraDynamicChanged: markerChanged,
		soExtra:             soExtra,
		rtpLabels:           true,
	})
	if err != nil {
		return n, ptype, err
	}

	sp.lastSN = uint32(seq)
	sp.lastTS = ts
	sp.marker = marker
	return n, ptype, nil
}

func (rtpProfile) ReinitContext(ctx *Context) {
	ctx.state = StateIR
	ctx.irCount = 0
	if sp, ok := ctx.specific.(*rtpSpecific); ok {
		sp.scale = 0
	}
}

func (rtpProfile) Feedback(ctx *Context, data []byte) {
	applyGenericFeedback(ctx, data)
}

func (rtpProfile) UsesUDPPort(ctx *Context, port uint16) bool {
	sp, ok := ctx.specific.(*rtpSpecific)
	return ok && (sp.srcPort == port || sp.dstPort == port)
}
