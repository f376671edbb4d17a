// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// buildIPv4ICMP constructs a minimal, well-formed IPv4/ICMP packet
// matching the src=192.0.2.1 dst=192.0.2.2 ttl=64 len=84 scenario.
func buildIPv4ICMP(id uint16) []byte {
	buf := make([]byte, 84)
	buf[0] = 0x45 // version 4, IHL 5
	buf[1] = 0x00
	binary.BigEndian.PutUint16(buf[2:4], 84) // total length
	binary.BigEndian.PutUint16(buf[4:6], id)
	buf[8] = 64 // ttl
	buf[9] = 1  // ICMP
	copy(buf[12:16], []byte{192, 0, 2, 1})
	copy(buf[16:20], []byte{192, 0, 2, 2})
	return buf
}

// buildIPv6UDP constructs an IPv6/UDP packet with the given total
// UDP payload length (header + data), for segmentation scenarios.
func buildIPv6UDP(udpPayloadLen int) []byte {
	const ipv6Len = 40
	udpLen := 8 + udpPayloadLen
	buf := make([]byte, ipv6Len+udpLen)
	buf[0] = 0x60 // version 6
	binary.BigEndian.PutUint16(buf[4:6], uint16(udpLen))
	buf[6] = 17 // UDP
	buf[7] = 64 // hop limit
	copy(buf[8:24], []byte{0x20, 0x01, 0x0d, 0xb8})
	copy(buf[24:40], []byte{0x20, 0x01, 0x0d, 0xb9})

	u := buf[ipv6Len:]
	binary.BigEndian.PutUint16(u[0:2], 5004)
	binary.BigEndian.PutUint16(u[2:4], 5005)
	binary.BigEndian.PutUint16(u[4:6], uint16(udpLen))
	return buf
}

// buildIPv4UDPRTP constructs an IPv4/UDP/RTP packet on port 5004 with
// the given IP-ID, RTP sequence number, timestamp and SSRC.
func buildIPv4UDPRTP(id uint16, seq uint16, ts, ssrc uint32) []byte {
	const ipLen = 20
	const udpLen = 8
	total := ipLen + udpLen + rtpHeaderLen

	buf := make([]byte, total)
	buf[0] = 0x45 // version 4, IHL 5
	binary.BigEndian.PutUint16(buf[2:4], uint16(total))
	binary.BigEndian.PutUint16(buf[4:6], id)
	buf[8] = 64 // ttl
	buf[9] = 17 // UDP
	copy(buf[12:16], []byte{198, 51, 100, 1})
	copy(buf[16:20], []byte{198, 51, 100, 2})

	u := buf[ipLen:]
	binary.BigEndian.PutUint16(u[0:2], 5004)
	binary.BigEndian.PutUint16(u[2:4], 5004)
	binary.BigEndian.PutUint16(u[4:6], uint16(udpLen+rtpHeaderLen))

	r := u[udpLen:]
	r[0] = 0x80 // version 2, no CSRC/padding/extension
	r[1] = 0x00 // payload type 0, marker clear
	binary.BigEndian.PutUint16(r[2:4], seq)
	binary.BigEndian.PutUint32(r[4:8], ts)
	binary.BigEndian.PutUint32(r[8:12], ssrc)
	return buf
}

func newTestCompressor(t *testing.T, profiles ...ProfileID) *Compressor {
	t.Helper()
	c, err := NewCompressor(SmallCID, 15)
	require.NoError(t, err)
	for _, id := range profiles {
		require.NoError(t, c.EnableProfile(id))
	}
	return c
}

// S1: identical IPv4/ICMP packets converge out of IR within a few
// packets once the IP-only profile's RND/NBO/SID flags stabilize.
func TestScenarioIPOnlyConvergesOutOfIR(t *testing.T) {
	c := newTestCompressor(t, ProfileIP)
	out := make([]byte, 256)

	for i := 0; i < 3; i++ {
		pkt := buildIPv4ICMP(uint16(1 + i))
		result, err := c.Compress(time.Now(), pkt, out)
		require.NoError(t, err)
		require.Equal(t, StatusOK, result.Status)
		require.Equal(t, "IR", c.GetStateDescr(0))
	}

	for i := 3; i < 40; i++ {
		pkt := buildIPv4ICMP(uint16(1 + i))
		_, err := c.Compress(time.Now(), pkt, out)
		require.NoError(t, err)
	}

	require.Equal(t, "SO", c.GetStateDescr(0))
	require.Equal(t, 1, c.NumContextsUsed())
}

// S2: RTP traffic on a registered UDP port (SSRC=0xDEADBEEF, TS step
// 160, SN step 1) is selected by the RTP profile, converges out of IR
// within the first handful of packets, emits a wider TS extension
// across a deliberate timestamp gap, and cycles back through a
// periodic IR refresh once soCount reaches the default 1700.
func TestScenarioRTPConverges(t *testing.T) {
	c := newTestCompressor(t, ProfileRTP, ProfileUDP, ProfileIP)
	require.NoError(t, c.AddRTPPort(5004))

	out := make([]byte, 256)
	const ssrc = 0xDEADBEEF
	const tsStep = 160
	const gapAt = 50

	var seq uint16
	var ts uint32
	var convergedEarly bool
	var sawWiderPacket bool
	var baselineN int

	for i := 1; i <= 1720; i++ {
		seq++
		ts += tsStep
		if i == gapAt {
			// a timestamp jump far larger than the TS window covers,
			// forcing RTP's 2-byte scaled-TS extension.
			ts += 1 << 20
		}

		pkt := buildIPv4UDPRTP(uint16(i), seq, ts, ssrc)
		result, err := c.Compress(time.Now(), pkt, out)
		require.NoError(t, err)
		require.Equal(t, StatusOK, result.Status)

		if i == 8 && c.GetStateDescr(0) != "IR" {
			convergedEarly = true
		}
		switch i {
		case gapAt - 1:
			baselineN = result.N
		case gapAt:
			if result.N > baselineN {
				sawWiderPacket = true
			}
		}
	}

	ctx := c.contexts.lookupCID(0)
	require.NotNil(t, ctx)
	require.Equal(t, ProfileRTP, ctx.profile.ID())
	require.True(t, convergedEarly, "RTP context never left IR by packet 8")
	require.True(t, sawWiderPacket, "timestamp gap never widened the compressed packet")
	require.Equal(t, "IR", c.GetStateDescr(0), "periodic refresh never brought the context back to IR")

	s := c.GetGeneralInfo()
	require.True(t, s.PacketsByType[PacketUOR2RTP] > 0 || s.PacketsByType[PacketUO1TS] > 0,
		"RTP steady state never produced a UO-1-TS or UOR-2-RTP packet")
}

// S3: an oversized packet under a configured MRRU is drained across
// multiple GetSegment calls, the last one signalled by 0xFF.
func TestScenarioSegmentation(t *testing.T) {
	c := newTestCompressor(t, ProfileUDP, ProfileIP)
	require.NoError(t, c.SetMRRU(1500))

	pkt := buildIPv6UDP(1180)
	out := make([]byte, 3)

	result, err := c.Compress(time.Now(), pkt, out)
	require.NoError(t, err)
	require.Equal(t, StatusNeedSegment, result.Status)

	segBuf := make([]byte, 100)
	var seen0xFF bool
	for i := 0; i < 100 && !seen0xFF; i++ {
		r, err := c.GetSegment(segBuf)
		require.NoError(t, err)
		require.Greater(t, r.N, 0)
		if segBuf[0] == 0xFF {
			seen0xFF = true
			require.Equal(t, StatusOK, r.Status)
		} else {
			require.Equal(t, byte(0xFE), segBuf[0])
			require.Equal(t, StatusNeedSegment, r.Status)
		}
	}
	require.True(t, seen0xFF, "segmentation never reached a final 0xFF segment")
}

// S4: feedback for a CID that was never allocated is accepted without
// panicking and without side effects (it simply has no context to
// touch).
func TestScenarioFeedbackUnknownCID(t *testing.T) {
	c := newTestCompressor(t, ProfileIP)
	ctx := c.contexts.lookupCID(3)
	require.Nil(t, ctx)
	// No API currently routes decompressor feedback into an unknown
	// CID's profile (there is no context to call Feedback on), so the
	// generic ring accepts the bytes and GetStateDescr stays empty.
	require.NoError(t, c.feedback.piggyback([]byte{0x00}))
	require.Equal(t, "", c.GetStateDescr(3))
}

// S5: with only the Uncompressed profile enabled, every packet is
// sent as a Normal packet.
func TestScenarioUncompressedFallback(t *testing.T) {
	c := newTestCompressor(t, ProfileUncompressed)
	out := make([]byte, 256)

	pkt := buildIPv4ICMP(1)
	result, err := c.Compress(time.Now(), pkt, out)
	require.NoError(t, err)
	require.Equal(t, byte(0xFC), out[0])
	require.Equal(t, len(pkt)+1, result.N)
}

// S6: removing an RTP port destroys any context using it and routes
// subsequent packets on that port to the UDP profile instead.
func TestScenarioRemoveRTPPort(t *testing.T) {
	c := newTestCompressor(t, ProfileRTP, ProfileUDP, ProfileIP)
	require.NoError(t, c.AddRTPPort(1234))
	require.NoError(t, c.AddRTPPort(5004))

	rtpPkt := buildIPv6UDP(200)
	binary.BigEndian.PutUint16(rtpPkt[40:42], 1234) // src port
	rtpHdr := rtpPkt[48:]
	rtpHdr[0] = 0x80 // version 2
	rtpHdr[1] = 0x00

	out := make([]byte, 512)
	_, err := c.Compress(time.Now(), rtpPkt, out)
	require.NoError(t, err)
	require.Equal(t, 1, c.NumContextsUsed())

	require.NoError(t, c.RemoveRTPPort(1234))
	require.Equal(t, 0, c.NumContextsUsed())

	_, err = c.Compress(time.Now(), rtpPkt, out)
	require.NoError(t, err)
	ctx := c.contexts.lookupCID(0)
	require.NotNil(t, ctx)
	require.Equal(t, ProfileUDP, ctx.profile.ID())
}
