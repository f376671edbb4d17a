// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"encoding/binary"
	"testing"

	"github.com/oprsystem/rohc/internal/ipparse"
)

func mustParse(t *testing.T, raw []byte) *ipparse.Chain {
	t.Helper()
	chain, err := ipparse.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return chain
}

func TestRegistryPrefersRTPOverUDPWhenBothEnabled(t *testing.T) {
	r := newRegistry()
	enabled := map[ProfileID]bool{ProfileRTP: true, ProfileUDP: true, ProfileIP: true}
	rtpPorts := map[uint16]bool{5004: true}

	pkt := buildIPv6UDP(64)
	binary.BigEndian.PutUint16(pkt[40:42], 5004)
	rtpHdr := pkt[48:]
	rtpHdr[0] = 0x80

	var key ContextKey
	p := r.selectProfile(enabled, rtpPorts, mustParse(t, pkt), &key)
	if p == nil || p.ID() != ProfileRTP {
		t.Fatalf("expected RTP profile selected, got %v", p)
	}
}

func TestRegistryFallsBackToIPOnly(t *testing.T) {
	r := newRegistry()
	enabled := map[ProfileID]bool{ProfileIP: true, ProfileUncompressed: true}

	pkt := buildIPv4ICMP(1)

	var key ContextKey
	p := r.selectProfile(enabled, nil, mustParse(t, pkt), &key)
	if p == nil || p.ID() != ProfileIP {
		t.Fatalf("expected IP-only profile selected, got %v", p)
	}
}

func TestRegistryUncompressedIsFloor(t *testing.T) {
	r := newRegistry()
	enabled := map[ProfileID]bool{ProfileUncompressed: true}

	pkt := buildIPv4ICMP(1)

	var key ContextKey
	p := r.selectProfile(enabled, nil, mustParse(t, pkt), &key)
	if p == nil || p.ID() != ProfileUncompressed {
		t.Fatalf("expected Uncompressed profile selected, got %v", p)
	}
}
