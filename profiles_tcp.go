// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"github.com/oprsystem/rohc/internal/bitstream"
	"github.com/oprsystem/rohc/internal/ipparse"
)

// tcpProfile is Profile 0x0006, registered so GetStateDescr and
// EnableProfile(ProfileTCP) behave sanely, but declared rather than
// implemented: RFC 6846's TCP/IP profile needs window and option
// tracking this engine does not build. CheckProfile always declines,
// so TCP traffic falls through to IP-only or Uncompressed.
type tcpProfile struct{}

func newTCPProfile() Profile { return tcpProfile{} }

func (tcpProfile) ID() ProfileID       { return ProfileTCP }
func (tcpProfile) Description() string { return "TCP (unimplemented)" }

func (tcpProfile) CheckProfile(chain *ipparse.Chain, rtpPorts map[uint16]bool, key *ContextKey) bool {
	return false
}

func (tcpProfile) CheckContext(ctx *Context, chain *ipparse.Chain) bool { return false }

func (tcpProfile) Create(ctx *Context, chain *ipparse.Chain) {}

func (tcpProfile) Destroy(ctx *Context) {}

func (tcpProfile) Encode(ctx *Context, chain *ipparse.Chain, raw []byte, crc *bitstream.CRCTables, out []byte) (int, PacketType, error) {
	return 0, PacketIR, ErrNoProfile
}

func (tcpProfile) ReinitContext(ctx *Context) {}

func (tcpProfile) Feedback(ctx *Context, data []byte) {}

func (tcpProfile) UsesUDPPort(ctx *Context, port uint16) bool { return false }
