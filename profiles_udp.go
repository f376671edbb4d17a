// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"github.com/oprsystem/rohc/internal/bitstream"
	"github.com/oprsystem/rohc/internal/ipparse"
)

// udpSpecific is Context.specific for Profile 0x0002.
type udpSpecific struct {
	srcPort, dstPort uint16
	checksum         [2]byte
}

// udpProfile is Profile 0x0002 (RFC 3095 §5): IP + UDP header
// compression with no payload awareness beyond the UDP checksum.
type udpProfile struct{}

func newUDPProfile() Profile { return udpProfile{} }

func (udpProfile) ID() ProfileID       { return ProfileUDP }
func (udpProfile) Description() string { return "UDP" }

func (udpProfile) CheckProfile(chain *ipparse.Chain, rtpPorts map[uint16]bool, key *ContextKey) bool {
	h := transportHeader(chain)
	if h.NextProto != nextHeaderUDP {
		return false
	}
	src, dst, ok := parseUDPPorts(chain.Payload)
	if !ok {
		return false
	}
	*key = flowKeyWithPorts(chain, src, dst)
	return true
}

func (udpProfile) CheckContext(ctx *Context, chain *ipparse.Chain) bool {
	return staticChainMatches(ctx, chain)
}

func (udpProfile) Create(ctx *Context, chain *ipparse.Chain) {
	captureStaticChain(ctx, chain)
	src, dst, _ := parseUDPPorts(chain.Payload)
	sp := &udpSpecific{srcPort: src, dstPort: dst}
	copy(sp.checksum[:], udpChecksumField(chain.Payload))
	ctx.specific = sp
}

func (udpProfile) Destroy(ctx *Context) { ctx.specific = nil }

func (udpProfile) Encode(ctx *Context, chain *ipparse.Chain, raw []byte, crc *bitstream.CRCTables, out []byte) (int, PacketType, error) {
	sp, _ := ctx.specific.(*udpSpecific)
	changed := 0
	var sum [2]byte
	copy(sum[:], udpChecksumField(chain.Payload))
	if sp != nil && sum != sp.checksum {
		changed = 1
	}
	if sp != nil {
		sp.checksum = sum
	}
	return encodeGeneric(ctx, chain, raw, crc, out, ProfileUDP, profileExtra{
		dynamic:             sum[:],
		extraDynamicChanged: changed,
	})
}

func (udpProfile) ReinitContext(ctx *Context) {
	ctx.state = StateIR
	ctx.irCount = 0
}

func (udpProfile) Feedback(ctx *Context, data []byte) {
	applyGenericFeedback(ctx, data)
}

func (udpProfile) UsesUDPPort(ctx *Context, port uint16) bool {
	sp, ok := ctx.specific.(*udpSpecific)
	return ok && (sp.srcPort == port || sp.dstPort == port)
}
