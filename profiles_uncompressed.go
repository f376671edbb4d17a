// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import "github.com/oprsystem/rohc/internal/bitstream"
import "github.com/oprsystem/rohc/internal/ipparse"

// uncompressedProfile is Profile 0x0000: the floor of the registry,
// last in priority order, so it only ever catches packets no other
// enabled profile claimed. It carries no per-flow compression state;
// every flow that reaches it shares context key zero.
type uncompressedProfile struct{}

func newUncompressedProfile() Profile { return uncompressedProfile{} }

func (uncompressedProfile) ID() ProfileID       { return ProfileUncompressed }
func (uncompressedProfile) Description() string { return "Uncompressed" }

func (uncompressedProfile) CheckProfile(chain *ipparse.Chain, rtpPorts map[uint16]bool, key *ContextKey) bool {
	*key = 0
	return true
}

func (uncompressedProfile) CheckContext(ctx *Context, chain *ipparse.Chain) bool {
	return true
}

func (uncompressedProfile) Create(ctx *Context, chain *ipparse.Chain) {}

func (uncompressedProfile) Destroy(ctx *Context) {}

// Encode emits the Normal packet's header portion: a one-byte
// discriminator followed by the original packet's header bytes
// (spec.md §4.4's fallback profile). The caller appends chain.Payload
// unchanged afterward, the same as every other profile's compressed
// header, so together they reconstruct discriminator+original-packet.
func (uncompressedProfile) Encode(ctx *Context, chain *ipparse.Chain, raw []byte, crc *bitstream.CRCTables, out []byte) (int, PacketType, error) {
	headerLen := len(raw) - len(chain.Payload)
	if headerLen < 0 || headerLen > len(raw) {
		headerLen = len(raw)
	}
	body := buildNormal(raw[:headerLen])
	if len(body) > cap(out) {
		return 0, PacketNormal, ErrOutputTooSmall
	}
	copy(out[:cap(out)], body)
	return len(body), PacketNormal, nil
}

func (uncompressedProfile) ReinitContext(ctx *Context) {}

func (uncompressedProfile) Feedback(ctx *Context, data []byte) {}

func (uncompressedProfile) UsesUDPPort(ctx *Context, port uint16) bool { return false }
