// Copyright (2014) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package ipparse

import (
	"net"
	"testing"
)

// buildIPv4ICMP constructs a minimal valid IPv4/ICMP packet matching
// scenario S1 from spec.md: src=192.0.2.1 dst=192.0.2.2 ttl=64 len=84.
func buildIPv4ICMP(id uint16) []byte {
	b := make([]byte, 84)
	b[0] = 0x45 // version 4, IHL 5
	b[1] = 0x00 // TOS
	b[2] = 0x00
	b[3] = 84 // total length
	b[4] = byte(id >> 8)
	b[5] = byte(id)
	b[6] = 0x00 // flags/fragment
	b[7] = 0x00
	b[8] = 64 // TTL
	b[9] = 1  // protocol = ICMP
	// checksum left as 0 for the test; ipparse does not validate it
	copy(b[12:16], net.IPv4(192, 0, 2, 1).To4())
	copy(b[16:20], net.IPv4(192, 0, 2, 2).To4())
	return b
}

func TestParseIPv4(t *testing.T) {
	buf := buildIPv4ICMP(1)

	chain, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if chain.Outer.Version != 4 {
		t.Errorf("version = %v, want 4", chain.Outer.Version)
	}
	if !chain.Outer.Src.Equal(net.IPv4(192, 0, 2, 1)) {
		t.Errorf("src = %v", chain.Outer.Src)
	}
	if !chain.Outer.Dst.Equal(net.IPv4(192, 0, 2, 2)) {
		t.Errorf("dst = %v", chain.Outer.Dst)
	}
	if chain.Outer.TTL != 64 {
		t.Errorf("ttl = %v, want 64", chain.Outer.TTL)
	}
	if chain.Outer.IPID != 1 {
		t.Errorf("ip-id = %v, want 1", chain.Outer.IPID)
	}
	if chain.Outer.NextProto != 1 {
		t.Errorf("proto = %v, want 1 (ICMP)", chain.Outer.NextProto)
	}
	if chain.Inner != nil {
		t.Errorf("unexpected inner header")
	}
}

func TestParseIPinIPRejectsTripleNesting(t *testing.T) {
	outer := buildIPv4ICMP(1)
	outer[9] = ProtoIPv4inIP // outer carries an inner IP header

	inner := buildIPv4ICMP(2)
	inner[9] = ProtoIPv4inIP // inner claims to carry yet another IP header

	buf := append(outer[:20], inner...)
	buf[3] = byte(len(buf))

	if _, err := Parse(buf); err != ErrTripleNesting {
		t.Errorf("got %v, want ErrTripleNesting", err)
	}
}

func TestParseTooShort(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Errorf("expected error for empty buffer")
	}
}
