// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"github.com/oprsystem/rohc/internal/bitstream"
	"github.com/oprsystem/rohc/internal/ipparse"
)

// udpLiteSpecific is Context.specific for Profile 0x0007.
type udpLiteSpecific struct {
	srcPort, dstPort uint16
	coverage         [2]byte
}

// udpLiteProfile is Profile 0x0007 (RFC 3828/4019): like UDP, but the
// dynamic chain carries the checksum coverage length instead of (and
// RFC 4019 also covers) the checksum field.
type udpLiteProfile struct{}

func newUDPLiteProfile() Profile { return udpLiteProfile{} }

func (udpLiteProfile) ID() ProfileID       { return ProfileUDPLite }
func (udpLiteProfile) Description() string { return "UDP-Lite" }

func (udpLiteProfile) CheckProfile(chain *ipparse.Chain, rtpPorts map[uint16]bool, key *ContextKey) bool {
	h := transportHeader(chain)
	if h.NextProto != nextHeaderUDPLite {
		return false
	}
	src, dst, ok := parseUDPPorts(chain.Payload)
	if !ok {
		return false
	}
	*key = flowKeyWithPorts(chain, src, dst)
	return true
}

func (udpLiteProfile) CheckContext(ctx *Context, chain *ipparse.Chain) bool {
	return staticChainMatches(ctx, chain)
}

func (udpLiteProfile) Create(ctx *Context, chain *ipparse.Chain) {
	captureStaticChain(ctx, chain)
	src, dst, _ := parseUDPPorts(chain.Payload)
	sp := &udpLiteSpecific{srcPort: src, dstPort: dst}
	copy(sp.coverage[:], udpLiteCoverageField(chain.Payload))
	ctx.specific = sp
}

func (udpLiteProfile) Destroy(ctx *Context) { ctx.specific = nil }

func (udpLiteProfile) Encode(ctx *Context, chain *ipparse.Chain, raw []byte, crc *bitstream.CRCTables, out []byte) (int, PacketType, error) {
	sp, _ := ctx.specific.(*udpLiteSpecific)
	changed := 0
	var cov [2]byte
	copy(cov[:], udpLiteCoverageField(chain.Payload))
	if sp != nil && cov != sp.coverage {
		changed = 1
	}
	if sp != nil {
		sp.coverage = cov
	}
	return encodeGeneric(ctx, chain, raw, crc, out, ProfileUDPLite, profileExtra{
		dynamic:             cov[:],
		extraDynamicChanged: changed,
	})
}

func (udpLiteProfile) ReinitContext(ctx *Context) {
	ctx.state = StateIR
	ctx.irCount = 0
}

func (udpLiteProfile) Feedback(ctx *Context, data []byte) {
	applyGenericFeedback(ctx, data)
}

func (udpLiteProfile) UsesUDPPort(ctx *Context, port uint16) bool {
	sp, ok := ctx.specific.(*udpLiteSpecific)
	return ok && (sp.srcPort == port || sp.dstPort == port)
}
