// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"github.com/oprsystem/rohc/internal/bitstream"
	"github.com/oprsystem/rohc/internal/ipparse"
)

// ipOnlyProfile is Profile 0x0004 (RFC 3843): compresses the IP
// header(s) alone, with no assumption about the transport layer they
// carry. It sits just above Uncompressed in priority, catching
// anything the transport-aware profiles did not.
type ipOnlyProfile struct{}

func newIPOnlyProfile() Profile { return ipOnlyProfile{} }

func (ipOnlyProfile) ID() ProfileID       { return ProfileIP }
func (ipOnlyProfile) Description() string { return "IP-only" }

func (ipOnlyProfile) CheckProfile(chain *ipparse.Chain, rtpPorts map[uint16]bool, key *ContextKey) bool {
	*key = flowKey(chain)
	return true
}

func (ipOnlyProfile) CheckContext(ctx *Context, chain *ipparse.Chain) bool {
	return staticChainMatches(ctx, chain)
}

func (ipOnlyProfile) Create(ctx *Context, chain *ipparse.Chain) {
	captureStaticChain(ctx, chain)
}

func (ipOnlyProfile) Destroy(ctx *Context) {}

func (ipOnlyProfile) Encode(ctx *Context, chain *ipparse.Chain, raw []byte, crc *bitstream.CRCTables, out []byte) (int, PacketType, error) {
	return encodeGeneric(ctx, chain, raw, crc, out, ProfileIP, profileExtra{})
}

func (ipOnlyProfile) ReinitContext(ctx *Context) {
	ctx.state = StateIR
	ctx.irCount = 0
}

func (ipOnlyProfile) Feedback(ctx *Context, data []byte) {
	applyGenericFeedback(ctx, data)
}

func (ipOnlyProfile) UsesUDPPort(ctx *Context, port uint16) bool { return false }
