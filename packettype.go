// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import "github.com/oprsystem/rohc/internal/ipparse"

// computeScratch fills ctx.generic.scratch from the newly observed
// chain, per spec.md §4.6. newSN is the candidate SN for this packet
// (current SN + 1 mod 2^16).
func (ctx *Context) computeScratch(chain *ipparse.Chain, newSN uint16, outerIDChanged, innerIDChanged bool) {
	g := &ctx.generic
	s := &g.scratch
	*s = packetScratch{newSN: newSN}

	g.outerIsV4 = chain.Outer.Version == 4
	g.haveInner = chain.Inner != nil
	if g.haveInner {
		g.innerIsV4 = chain.Inner.Version == 4
	}

	s.sn4BitsPossible = g.snWindow.Fits(uint32(newSN), -1, 4)
	s.sn5BitsPossible = g.snWindow.Fits(uint32(newSN), -1, 5)
	s.sn13BitsPossible = g.snWindow.Fits(uint32(newSN), -1, 13)

	if chain.Outer.Version == 4 {
		s.noOuterIPIDBits = !outerIDChanged || g.outerIPIDWin.Fits(uint32(chain.Outer.IPID), 0, 0)
		s.outerIPID6Possible = g.outerIPIDWin.Fits(uint32(chain.Outer.IPID), 0, 6)
	} else {
		s.noOuterIPIDBits = true
		s.outerIPID6Possible = true
	}

	if chain.Inner != nil && chain.Inner.Version == 4 {
		s.noInnerIPIDBits = !innerIDChanged || g.innerIPIDWin.Fits(uint32(chain.Inner.IPID), 0, 0)
	} else {
		s.noInnerIPIDBits = true
	}
}

// decidePacketType implements the state-dependent packet-type decision
// table of spec.md §4.6 for the IP-only profile's bit budgets; profiles
// with extra dynamic fields (RTP's marker, UDP's checksum, UDP-Lite's
// checksum coverage) extend this via extraDynamicChanged.
func (ctx *Context) decidePacketType(extraDynamicChanged int) PacketType {
	s := &ctx.generic.scratch
	s.sendDynamic += extraDynamicChanged
	dualIP := ctx.generic.haveInner

	switch ctx.state {
	case StateIR:
		return PacketIR

	case StateFO:
		if ctx.generic.outer.sid && ctx.generic.outer.sidCnt < optimisticRepeat {
			return PacketIRDYN
		}
		if dualIP && ctx.generic.inner.sid && ctx.generic.inner.sidCnt < optimisticRepeat {
			return PacketIRDYN
		}
		if s.sendStatic && s.sn13BitsPossible {
			return PacketUOR2
		}
		limit := 2
		if dualIP {
			limit = 4
		}
		if s.sendDynamic > limit {
			return PacketIRDYN
		}
		if s.sn13BitsPossible {
			return PacketUOR2
		}
		return PacketIRDYN

	case StateSO:
		if !dualIP {
			if s.sn4BitsPossible && s.noOuterIPIDBits {
				return PacketUO0
			}
			if s.sn5BitsPossible && ctx.outerIsIPv4() && s.outerIPID6Possible {
				return PacketUO1
			}
			if s.sn13BitsPossible {
				return PacketUOR2
			}
			return PacketIRDYN
		}

		if s.sn4BitsPossible && s.noOuterIPIDBits && s.noInnerIPIDBits {
			return PacketUO0
		}
		if s.sn5BitsPossible && ctx.outerIsIPv4() && s.outerIPID6Possible && s.noInnerIPIDBits {
			return PacketUO1
		}
		if s.sn13BitsPossible {
			return PacketUOR2
		}
		return PacketIRDYN
	}

	return PacketIRDYN
}

func (ctx *Context) outerIsIPv4() bool {
	return ctx.generic.outerIsV4
}

// chooseExtension selects extension 0-3 for a UOR-2 packet, per
// spec.md §4.6: the smallest extension whose bit budget covers the
// remaining SN/IP-ID requirements.
func chooseExtension(s *packetScratch, haveIPID bool) int {
	switch {
	case s.sn13BitsPossible && !haveIPID:
		return 0
	case haveIPID && s.outerIPID6Possible:
		return 1
	case s.sn13BitsPossible:
		return 2
	default:
		return 3
	}
}

// extensionBytes renders the trailing bytes for the extension
// chooseExtension selected: extensions 1 and 2 carry the outer IP-ID
// bits the base UOR-2 header has no room for (6 and 8 bits
// respectively — extension 2 is chosen precisely when 6 bits no
// longer cover the IP-ID's drift from its W-LSB reference), extension
// 3 carries SN's upper 8 bits instead, per spec.md §4.6/RFC 3095
// §5.7.5.
func extensionBytes(outerIPID uint16, newSN uint16, ext int) []byte {
	switch ext {
	case 0:
		return nil
	case 1:
		return []byte{byte(outerIPID & 0x3F)}
	case 2:
		return []byte{byte(outerIPID)}
	default: // 3
		return []byte{byte(newSN >> 8)}
	}
}
