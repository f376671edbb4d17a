// Copyright (2014) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Package ipparse decodes a raw packet buffer into the neutral header
// record the ROHC engine operates on: an outer IPv4/IPv6 header and, if
// the protocol chain says so, one (and only one) inner IP header.
package ipparse

import (
	"errors"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Protocol numbers for IP-in-IP tunneling, used to detect a nested
// inner IP header.
const (
	ProtoIPv4inIP = 4
	ProtoIPv6     = 41
)

var (
	// ErrTooShort is returned when the buffer is shorter than the IP
	// header it claims to carry.
	ErrTooShort = errors.New("ipparse: packet too short")
	// ErrBadVersion is returned when the version nibble is neither 4 nor 6.
	ErrBadVersion = errors.New("ipparse: unrecognized IP version")
	// ErrTripleNesting is returned when a packet carries a third nested
	// IP header; ROHC profiles here support at most one level of tunneling.
	ErrTripleNesting = errors.New("ipparse: more than one nested IP header")
	// ErrLengthMismatch is returned when the declared total length
	// exceeds the buffer actually supplied (bytes beyond a shorter
	// declared length are ignored).
	ErrLengthMismatch = errors.New("ipparse: declared length exceeds buffer")
)

// Header is the neutral record produced for each IP header seen
// (outer, and optionally inner).
type Header struct {
	Version     int
	Src, Dst    net.IP
	TOS         uint8 // IPv4 TOS / IPv6 traffic class
	TTL         uint8 // IPv4 TTL / IPv6 hop limit
	IPID        uint16
	FlowLabel   uint32 // IPv6 only
	DF          bool   // IPv4 only
	NextProto   uint8
	HeaderLen   int
	PayloadOff  int // offset of this header's payload within the original buffer
}

// Chain is the result of parsing a packet: an outer header and,
// optionally, a single inner header (IP-in-IP or 6in4/4in6).
type Chain struct {
	Outer   Header
	Inner   *Header
	Payload []byte // bytes after the innermost IP header
}

// Parse decodes buf into a Chain. It rejects packets nesting more than
// two IP headers and packets whose declared length does not fit inside
// buf, matching the validation rules of the generic RFC 3095 engine's
// change-detection logic (an unparseable packet aborts compression for
// that packet, per spec §4.2 and §7).
func Parse(buf []byte) (*Chain, error) {
	outer, rest, err := parseOne(buf)
	if err != nil {
		return nil, err
	}

	chain := &Chain{Outer: outer}

	if outer.NextProto == ProtoIPv4inIP || outer.NextProto == ProtoIPv6 {
		inner, rest2, err := parseOne(rest)
		if err != nil {
			return nil, err
		}

		if inner.NextProto == ProtoIPv4inIP || inner.NextProto == ProtoIPv6 {
			return nil, ErrTripleNesting
		}

		chain.Inner = &inner
		chain.Payload = rest2
		return chain, nil
	}

	chain.Payload = rest
	return chain, nil
}

// parseOne decodes a single IPv4 or IPv6 header from the front of buf
// using gopacket's layer decoders, returning the neutral Header and the
// remaining bytes (this header's payload).
func parseOne(buf []byte) (Header, []byte, error) {
	if len(buf) < 1 {
		return Header{}, nil, ErrTooShort
	}

	version := buf[0] >> 4
	switch version {
	case 4:
		return parseIPv4(buf)
	case 6:
		return parseIPv6(buf)
	default:
		return Header{}, nil, ErrBadVersion
	}
}

func parseIPv4(buf []byte) (Header, []byte, error) {
	var ip4 layers.IPv4
	if err := ip4.DecodeFromBytes(buf, gopacket.NilDecodeFeedback); err != nil {
		return Header{}, nil, err
	}

	total := int(ip4.Length)
	if total > len(buf) {
		return Header{}, nil, ErrLengthMismatch
	}

	h := Header{
		Version:    4,
		Src:        ip4.SrcIP,
		Dst:        ip4.DstIP,
		TOS:        ip4.TOS,
		TTL:        ip4.TTL,
		IPID:       ip4.Id,
		DF:         ip4.Flags&layers.IPv4DontFragment != 0,
		NextProto:  uint8(ip4.Protocol),
		HeaderLen:  int(ip4.IHL) * 4,
		PayloadOff: int(ip4.IHL) * 4,
	}

	return h, buf[h.HeaderLen:total], nil
}

func parseIPv6(buf []byte) (Header, []byte, error) {
	var ip6 layers.IPv6
	if err := ip6.DecodeFromBytes(buf, gopacket.NilDecodeFeedback); err != nil {
		return Header{}, nil, err
	}

	const headerLen = 40
	total := headerLen + int(ip6.Length)
	if total > len(buf) {
		return Header{}, nil, ErrLengthMismatch
	}

	h := Header{
		Version:    6,
		Src:        ip6.SrcIP,
		Dst:        ip6.DstIP,
		TOS:        ip6.TrafficClass,
		TTL:        ip6.HopLimit,
		FlowLabel:  ip6.FlowLabel,
		NextProto:  uint8(ip6.NextHeader),
		HeaderLen:  headerLen,
		PayloadOff: headerLen,
	}

	return h, buf[headerLen:total], nil
}
