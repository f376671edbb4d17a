// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"github.com/oprsystem/rohc/internal/bitstream"
	"github.com/oprsystem/rohc/internal/ipparse"
)

// espSpecific is Context.specific for Profile 0x0003.
type espSpecific struct {
	spi uint32
}

// espProfile is Profile 0x0003 (RFC 3095 §5.3.3): IP + ESP header
// compression. ESP's SPI is static per flow. The ESP sequence number is
// not read or tracked; packets carry the context's generic SN like every
// other profile.
type espProfile struct{}

func newESPProfile() Profile { return espProfile{} }

func (espProfile) ID() ProfileID       { return ProfileESP }
func (espProfile) Description() string { return "ESP" }

func spiOf(payload []byte) (uint32, bool) {
	if len(payload) < 4 {
		return 0, false
	}
	return uint32(payload[0])<<24 | uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3]), true
}

func (espProfile) CheckProfile(chain *ipparse.Chain, rtpPorts map[uint16]bool, key *ContextKey) bool {
	h := transportHeader(chain)
	if h.NextProto != nextHeaderESP {
		return false
	}
	spi, ok := spiOf(chain.Payload)
	if !ok {
		return false
	}
	*key = flowKeyWithPorts(chain, uint16(spi>>16), uint16(spi))
	return true
}

func (espProfile) CheckContext(ctx *Context, chain *ipparse.Chain) bool {
	if !staticChainMatches(ctx, chain) {
		return false
	}
	sp, ok := ctx.specific.(*espSpecific)
	if !ok {
		return false
	}
	spi, ok := spiOf(chain.Payload)
	return ok && spi == sp.spi
}

func (espProfile) Create(ctx *Context, chain *ipparse.Chain) {
	captureStaticChain(ctx, chain)
	spi, _ := spiOf(chain.Payload)
	ctx.specific = &espSpecific{spi: spi}
}

func (espProfile) Destroy(ctx *Context) { ctx.specific = nil }

func (espProfile) Encode(ctx *Context, chain *ipparse.Chain, raw []byte, crc *bitstream.CRCTables, out []byte) (int, PacketType, error) {
	return encodeGeneric(ctx, chain, raw, crc, out, ProfileESP, profileExtra{})
}

func (espProfile) ReinitContext(ctx *Context) {
	ctx.state = StateIR
	ctx.irCount = 0
}

func (espProfile) Feedback(ctx *Context, data []byte) {
	applyGenericFeedback(ctx, data)
}

func (espProfile) UsesUDPPort(ctx *Context, port uint16) bool { return false }
