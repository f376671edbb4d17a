// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Package rohc implements the core of a RObust Header Compression
// (ROHC) compressor per RFC 3095, RFC 3843 (IP-only), and RFC 3828/4019
// (UDP-Lite). It takes uncompressed IP packets and produces compressed
// ROHC packets; the symmetric decompressor is outside this package.
package rohc

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/oprsystem/rohc/internal/bitstream"
	log "github.com/oprsystem/rohc/minilog"
)

// CIDType selects the wire width of context identifiers.
type CIDType int

const (
	// SmallCID restricts CIDs to [0,15], encoded with the 4-bit Add-CID
	// octet (1110xxxx).
	SmallCID CIDType = iota
	// LargeCID allows CIDs in [0,16383], SDVL-encoded on the wire.
	LargeCID
)

// Status is the outcome of Compress or GetSegment.
type Status int

const (
	// StatusOK means out holds a complete, ready-to-send ROHC packet.
	StatusOK Status = iota
	// StatusNeedSegment means the packet was buffered for segmentation;
	// call GetSegment repeatedly to drain it.
	StatusNeedSegment
)

// Result is returned by Compress and GetSegment.
type Result struct {
	Status Status
	N      int // bytes written to the caller's output buffer
}

// Sentinel errors, per the taxonomy in spec.md §7.
var (
	ErrNilBuffer       = errors.New("rohc: nil or empty input buffer")
	ErrBadCID          = errors.New("rohc: cid out of range for configured cid type")
	ErrNoProfile       = errors.New("rohc: no enabled profile accepted this packet")
	ErrContextsFull    = errors.New("rohc: no context available and no eviction candidate")
	ErrRingFull        = errors.New("rohc: feedback ring is full")
	ErrOutputTooSmall  = errors.New("rohc: output buffer too small and segmentation unavailable")
	ErrEncodingFailed  = errors.New("rohc: profile encoding failed and fallback also failed")
	ErrConfigLocked    = errors.New("rohc: configuration is immutable after the first packet")
	ErrInvalidMRRU     = errors.New("rohc: mrru exceeds ROHCMaxMRRU")
	ErrInvalidWindow   = errors.New("rohc: w-lsb window width must be a power of two")
	ErrInvalidRefresh  = errors.New("rohc: periodic refresh requires ir > fo > 0")
	ErrInvalidPort     = errors.New("rohc: port must be in [1,65535]")
)

// ROHCMaxMRRU bounds SetMRRU, per spec.md §6.
const ROHCMaxMRRU = 65535

// MaxCID is the largest CID representable by CIDType.
func (t CIDType) MaxCID() int {
	if t == SmallCID {
		return 15
	}
	return 16383
}

// RandomFunc supplies the per-context random initial SN (RFC 3095
// §5.11.1). TraceFunc receives human-readable trace lines; both are
// compressor-owned callbacks rather than process-wide globals, per
// spec.md §9.
type RandomFunc func() uint16
type TraceFunc func(format string, args ...interface{})

// Compressor is a process-wide, single-threaded ROHC compressor
// instance. All operations on one Compressor MUST be externally
// serialized; independent instances share no state.
type Compressor struct {
	id string // short correlation id for log lines, see rohcstats

	cidType CIDType
	maxCID  int
	mrru    int // 0 disables segmentation

	enabledProfiles map[ProfileID]bool
	wlsbWidth       int
	irRefresh       int // CHANGE_TO_IR_COUNT
	foRefresh       int // CHANGE_TO_FO_COUNT

	crc    *bitstream.CRCTables
	random RandomFunc
	trace  TraceFunc

	rtpPorts map[uint16]bool

	contexts *contextStore
	feedback *feedbackRing
	rru      *rru

	numPackets uint64 // locks configuration once > 0

	stats Stats
}

// Stats mirrors the "aggregate counters" of spec.md §3. rohcstats wraps
// these as Prometheus metrics; the core only ever increments them.
type Stats struct {
	PacketsCompressed  uint64
	PacketsByType      map[PacketType]uint64
	ContextsCreated    uint64
	ContextsEvicted    uint64
	FeedbackDropped    uint64
	SegmentsEmitted    uint64
	CompressionFailed  uint64
}

// NewCompressor creates a Compressor using the given CID type and
// MAX_CID. Defaults: W-LSB window width 16, IR refresh 1700 packets, FO
// refresh 700 packets (spec.md §4.5), all profiles disabled until
// EnableProfile is called.
func NewCompressor(cidType CIDType, maxCID int) (*Compressor, error) {
	if maxCID < 0 || maxCID > cidType.MaxCID() {
		return nil, ErrBadCID
	}

	c := &Compressor{
		id:              xidLike(),
		cidType:         cidType,
		maxCID:          maxCID,
		enabledProfiles: make(map[ProfileID]bool),
		wlsbWidth:       16,
		irRefresh:       1700,
		foRefresh:       700,
		crc:             bitstream.NewCRCTables(),
		random:          defaultRandom,
		rtpPorts:        make(map[uint16]bool),
		contexts:        newContextStore(maxCID),
		feedback:        newFeedbackRing(feedbackRingSize),
		rru:             &rru{},
		stats: Stats{
			PacketsByType: make(map[PacketType]uint64),
		},
	}

	log.Debug("rohc[%s]: new compressor cidType=%v maxCID=%v", c.id, cidType, maxCID)
	return c, nil
}

// xidLike produces a short correlation id from math/rand, independent
// of the compressor's own RandomFunc. cmd/rohcc's shell does not replace
// it; it tags its trace lines with a separate github.com/rs/xid id.
func xidLike() string {
	return fmt.Sprintf("%08x", rand.Uint32())
}

func defaultRandom() uint16 {
	return uint16(rand.Uint32())
}

// locked reports whether configuration has been frozen by a prior
// successful Compress call (spec.md §6).
func (c *Compressor) locked() bool {
	return c.numPackets > 0
}

// SetTracesCB installs the trace callback.
func (c *Compressor) SetTracesCB(fn TraceFunc) {
	c.trace = fn
}

// SetRandomCB installs the per-context SN-seeding callback.
func (c *Compressor) SetRandomCB(fn RandomFunc) {
	if fn == nil {
		c.random = defaultRandom
		return
	}
	c.random = fn
}

// EnableProfile enables a profile for selection.
func (c *Compressor) EnableProfile(id ProfileID) error {
	if c.locked() {
		return ErrConfigLocked
	}
	c.enabledProfiles[id] = true
	return nil
}

// DisableProfile disables a profile.
func (c *Compressor) DisableProfile(id ProfileID) error {
	if c.locked() {
		return ErrConfigLocked
	}
	delete(c.enabledProfiles, id)
	return nil
}

// SetWLSBWindowWidth sets the shared W-LSB window width for every field
// (SN, IP-ID, RTP TS); width must be a power of two (spec.md §9's Open
// Question: one width for all windows, matching the source).
func (c *Compressor) SetWLSBWindowWidth(width int) error {
	if c.locked() {
		return ErrConfigLocked
	}
	if width <= 0 || width&(width-1) != 0 {
		return ErrInvalidWindow
	}
	c.wlsbWidth = width
	return nil
}

// SetPeriodicRefreshes sets CHANGE_TO_IR_COUNT and CHANGE_TO_FO_COUNT;
// ir must exceed fo, and fo must be positive.
func (c *Compressor) SetPeriodicRefreshes(ir, fo int) error {
	if c.locked() {
		return ErrConfigLocked
	}
	if !(ir > fo && fo > 0) {
		return ErrInvalidRefresh
	}
	c.irRefresh = ir
	c.foRefresh = fo
	return nil
}

// SetMRRU sets the Maximum Reconstructed Reception Unit; 0 disables
// segmentation.
func (c *Compressor) SetMRRU(bytes int) error {
	if c.locked() {
		return ErrConfigLocked
	}
	if bytes < 0 || bytes > ROHCMaxMRRU {
		return ErrInvalidMRRU
	}
	c.mrru = bytes
	return nil
}

// GetMRRU returns the configured MRRU.
func (c *Compressor) GetMRRU() int { return c.mrru }

// GetMaxCID returns the configured MAX_CID.
func (c *Compressor) GetMaxCID() int { return c.maxCID }

// GetCIDType returns the configured CID type.
func (c *Compressor) GetCIDType() CIDType { return c.cidType }

// AddRTPPort registers a UDP port as an RTP-detection hint; per-packet
// toggle, exempt from the post-first-packet configuration lock
// (spec.md §6).
func (c *Compressor) AddRTPPort(port uint16) error {
	if port == 0 {
		return ErrInvalidPort
	}
	c.rtpPorts[port] = true
	return nil
}

// RemoveRTPPort unregisters a port. Any existing context whose flow
// uses this port is destroyed, per scenario S6.
func (c *Compressor) RemoveRTPPort(port uint16) error {
	if port == 0 {
		return ErrInvalidPort
	}
	delete(c.rtpPorts, port)
	c.contexts.destroyMatching(func(ctx *Context) bool {
		return ctx.profile.UsesUDPPort(ctx, port)
	})
	return nil
}

// ResetRTPPorts clears every registered RTP port.
func (c *Compressor) ResetRTPPorts() {
	c.rtpPorts = make(map[uint16]bool)
}

// ForceContextsReinit forces every active context back to the IR
// state, e.g. after link re-establishment.
func (c *Compressor) ForceContextsReinit() {
	c.contexts.forEachUsed(func(ctx *Context) {
		ctx.state = StateIR
		ctx.irCount = 0
	})
}

// GetStateDescr returns a human-readable state name for a context, or
// "" if the CID is not in use.
func (c *Compressor) GetStateDescr(cid int) string {
	ctx := c.contexts.lookupCID(cid)
	if ctx == nil {
		return ""
	}
	return ctx.state.String()
}

// GetGeneralInfo returns a snapshot of the aggregate counters.
func (c *Compressor) GetGeneralInfo() Stats {
	return c.stats
}

// NumContextsUsed reports how many of maxCID+1 context slots are
// currently allocated, for rohcstats' gauge.
func (c *Compressor) NumContextsUsed() int {
	return c.contexts.numContextsUsed()
}

// ID returns the compressor's correlation id, for labeling external
// metrics and logs (rohcstats, cmd/rohcc).
func (c *Compressor) ID() string {
	return c.id
}

func (c *Compressor) tracef(format string, args ...interface{}) {
	if c.trace != nil {
		c.trace(format, args...)
	}
	log.Debug(format, args...)
}
