// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"github.com/oprsystem/rohc/internal/bitstream"
	"github.com/oprsystem/rohc/internal/ipparse"
)

// ProfileID is the 16-bit profile identifier carried in IR/IR-DYN
// packets.
type ProfileID uint16

// Profile IDs per RFC 3095/3843/4019.
const (
	ProfileUncompressed ProfileID = 0x0000
	ProfileRTP          ProfileID = 0x0001
	ProfileUDP          ProfileID = 0x0002
	ProfileESP          ProfileID = 0x0003
	ProfileIP           ProfileID = 0x0004
	ProfileTCP          ProfileID = 0x0006 // declared, not implemented
	ProfileUDPLite      ProfileID = 0x0007
)

// PacketType distinguishes the compressed packet families of spec.md §6.
type PacketType int

const (
	PacketIR PacketType = iota
	PacketIRDYN
	PacketUO0
	PacketUO1
	PacketUO1TS
	PacketUOR2
	PacketUOR2ID
	PacketUOR2RTP
	PacketNormal // Uncompressed profile's "Normal" packet
)

func (p PacketType) String() string {
	switch p {
	case PacketIR:
		return "IR"
	case PacketIRDYN:
		return "IR-DYN"
	case PacketUO0:
		return "UO-0"
	case PacketUO1:
		return "UO-1"
	case PacketUO1TS:
		return "UO-1-TS"
	case PacketUOR2:
		return "UOR-2"
	case PacketUOR2ID:
		return "UOR-2-ID"
	case PacketUOR2RTP:
		return "UOR-2-RTP"
	case PacketNormal:
		return "Normal"
	}
	return "?"
}

// Profile is the capability set a profile exposes, per spec.md §4.4 and
// §9's "model as a capability set, not inheritance" note.
type Profile interface {
	ID() ProfileID
	Description() string

	// CheckProfile reports whether this profile accepts the parsed
	// packet, filling key with a profile-derived context key on accept.
	// rtpPorts is the compressor's registered RTP-detection hint set
	// (spec.md §4.4's "RTP over UDP on a configured port"); profiles
	// other than RTP ignore it.
	CheckProfile(chain *ipparse.Chain, rtpPorts map[uint16]bool, key *ContextKey) bool

	// CheckContext reports whether ctx's cached static fields still
	// match chain (used to distinguish same-key-different-flow churn).
	CheckContext(ctx *Context, chain *ipparse.Chain) bool

	// Create initializes ctx.specific and ctx.generic for a brand new
	// flow matching chain.
	Create(ctx *Context, chain *ipparse.Chain)

	// Destroy releases any profile-owned state before the context slot
	// is recycled.
	Destroy(ctx *Context)

	// Encode builds the compressed header (everything up to and
	// including the CRC) for chain into out, returning the number of
	// bytes written and the chosen packet type. raw is the original
	// uncompressed packet, needed only by the Uncompressed profile's
	// Normal packet.
	Encode(ctx *Context, chain *ipparse.Chain, raw []byte, crc *bitstream.CRCTables, out []byte) (int, PacketType, error)

	// ReinitContext resets ctx to IR state, e.g. on NACK feedback.
	ReinitContext(ctx *Context)

	// Feedback lets the profile react to decompressor feedback bytes
	// (e.g. NACK forcing IR, ACK advancing a profile-specific counter).
	Feedback(ctx *Context, data []byte)

	// UsesUDPPort reports whether ctx's flow is carried over the given
	// UDP port (used by RemoveRTPPort's context-destruction sweep).
	UsesUDPPort(ctx *Context, port uint16) bool
}

// registry is the priority-ordered, enabled-aware list of profiles a
// Compressor selects from.
type registry struct {
	profiles []Profile
}

// newRegistry returns the standard priority order: RTP before UDP (so
// RTP-over-UDP is caught first), IP-only after all transport-aware
// profiles, Uncompressed last as a floor. TCP is listed for
// completeness but never accepts a packet (spec.md §4.4).
func newRegistry() *registry {
	return &registry{
		profiles: []Profile{
			newRTPProfile(),
			newUDPProfile(),
			newUDPLiteProfile(),
			newESPProfile(),
			newTCPProfile(),
			newIPOnlyProfile(),
			newUncompressedProfile(),
		},
	}
}

// byID resolves a Profile by its wire ID, nil if unregistered.
func (r *registry) byID(id ProfileID) Profile {
	for _, p := range r.profiles {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// selectProfile walks the registry in priority order and returns the
// first enabled profile whose CheckProfile accepts chain.
func (r *registry) selectProfile(enabled map[ProfileID]bool, rtpPorts map[uint16]bool, chain *ipparse.Chain, key *ContextKey) Profile {
	for _, p := range r.profiles {
		if !enabled[p.ID()] {
			continue
		}
		if p.CheckProfile(chain, rtpPorts, key) {
			return p
		}
	}
	return nil
}
