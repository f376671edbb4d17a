// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"time"

	"github.com/oprsystem/rohc/internal/bitstream"
)

// State is a context's position in the RFC 3095 state machine.
type State int

const (
	StateIR State = iota
	StateFO
	StateSO
)

func (s State) String() string {
	switch s {
	case StateIR:
		return "IR"
	case StateFO:
		return "FO"
	case StateSO:
		return "SO"
	}
	return "?"
}

// Mode is the ROHC operating mode. Only U-mode compression is
// implemented here; O and R exist as named values because the wire
// format's mode bits reference them (spec.md §9 Open Question).
type Mode int

const (
	ModeU Mode = iota
	ModeO
	ModeR
)

const (
	maxIRCount = 3 // MAX_IR_COUNT
	maxFOCount = 3 // MAX_FO_COUNT

	// optimisticRepeat is the number of consecutive packets an IPv4
	// RND/NBO/SID property must hold before the state machine treats it
	// as converged (RFC 3095's "optimistic approach" repetition count).
	optimisticRepeat = 3
)

// ipv4Flags tracks the "consecutive packets since this property
// stabilized" counters spec.md §3 requires per IPv4 header (outer or
// inner).
type ipv4Flags struct {
	ipID uint16 // last observed IP-ID, network order

	rnd    bool
	nbo    bool
	sid    bool
	rndCnt int
	nboCnt int
	sidCnt int
}

// update bumps the consecutive-stability counter of each flag,
// resetting it to zero whenever the observed value flips.
func (f *ipv4Flags) update(rnd, nbo, sid bool) {
	bump := func(cur *bool, cnt *int, v bool) {
		if *cur == v {
			*cnt++
		} else {
			*cur = v
			*cnt = 0
		}
	}
	bump(&f.rnd, &f.rndCnt, rnd)
	bump(&f.nbo, &f.nboCnt, nbo)
	bump(&f.sid, &f.sidCnt, sid)
}

func (f *ipv4Flags) converged() bool {
	return f.rndCnt >= optimisticRepeat && f.nboCnt >= optimisticRepeat && f.sidCnt >= optimisticRepeat
}

// classifyIPID derives the RND/NBO/SID properties RFC 3095 §5.7
// expects per observed IP-ID, by comparing the delta from prevIPID in
// both its natural and byte-swapped interpretation: a middlebox that
// rewrites IP-ID in host byte order shows a small increasing delta
// only after swapping, and an IP-ID that shows a small increasing
// delta under neither interpretation is flagged random.
func classifyIPID(prevIPID, ipID uint16) (rnd, nbo, sid bool) {
	swap := func(v uint16) uint16 { return v<<8 | v>>8 }

	delta := int(ipID) - int(prevIPID)
	swappedDelta := int(swap(ipID)) - int(swap(prevIPID))

	small := func(d int) bool { return d >= 0 && d < 256 }

	sid = delta == 0
	nbo = small(delta) || !small(swappedDelta)
	rnd = !small(delta) && !small(swappedDelta)
	return
}

// genericContext is the profile-agnostic RFC 3095 block embedded in
// every Context: the wrapping sequence number, per-IP-header flags and
// W-LSB windows, and the per-packet scratch recomputed on each encode.
type genericContext struct {
	sn uint16 // 16-bit monotonically wrapping sequence number

	outer     ipv4Flags
	inner     ipv4Flags
	haveInner bool
	outerIsV4 bool
	innerIsV4 bool

	snWindow     *bitstream.Window
	outerIPIDWin *bitstream.Window
	innerIPIDWin *bitstream.Window

	// staticChain is the static chain captured at context creation,
	// compared against each packet's recomputed static chain to detect
	// a context-key collision between two different flows (spec.md
	// §4.3's CheckContext).
	staticChain []byte

	// scratch, recomputed at the top of every encode call
	scratch packetScratch
}

// packetScratch holds the per-packet bit-requirement predicates and
// change counters spec.md §4.6 describes.
type packetScratch struct {
	newSN uint16

	sn4BitsPossible  bool
	sn5BitsPossible  bool
	sn13BitsPossible bool

	noOuterIPIDBits    bool
	outerIPID6Possible bool
	noInnerIPIDBits    bool

	sendStatic  bool
	sendDynamic int

	packetType PacketType
	extension  int
}

// Context is one per active flow.
type Context struct {
	cid     int
	profile Profile
	key     ContextKey

	state State
	mode  Mode

	used bool

	firstUsed  time.Time
	latestUsed time.Time

	packetCount     uint64
	recentOutcomes  [16]bool // ring of the last 16 compression outcomes
	recentIdx       int

	irCount int // successful IRs sent since entering/re-entering IR
	foCount int // successful FOs sent since entering FO
	soCount int // SO packets sent since the context last left IR (periodic FO/IR refresh)

	generic genericContext

	// specific is the profile-owned block (e.g. RTP SSRC/TS state).
	specific interface{}

	compressor *Compressor // non-owning back-reference, per spec.md §9
}

// ContextKey is an opaque, profile-computed key used to match an
// incoming packet against an existing context without decoding the
// full packet twice.
type ContextKey uint64

// recordOutcome pushes a compress/fail outcome into the last-16 ring.
func (ctx *Context) recordOutcome(ok bool) {
	ctx.recentOutcomes[ctx.recentIdx%16] = ok
	ctx.recentIdx++
}

// touch marks a context used at t (zero time leaves latestUsed
// unchanged, per spec.md §5's "zero value disables time-dependent
// features").
func (ctx *Context) touch(t time.Time) {
	if t.IsZero() {
		return
	}
	if ctx.firstUsed.IsZero() {
		ctx.firstUsed = t
	}
	ctx.latestUsed = t
}

// compressorWindowWidth returns the owning Compressor's configured
// W-LSB window width, for profiles (like RTP) that keep an extra
// window of their own alongside the generic SN/IP-ID windows.
func (ctx *Context) compressorWindowWidth() int {
	return ctx.compressor.wlsbWidth
}

// newGenericContext allocates the W-LSB windows at the compressor's
// configured width.
func newGenericContext(width int) genericContext {
	snWin, _ := bitstream.NewWindow(width, 16)
	outerWin, _ := bitstream.NewWindow(width, 16)
	innerWin, _ := bitstream.NewWindow(width, 16)
	return genericContext{
		snWindow:     snWin,
		outerIPIDWin: outerWin,
		innerIPIDWin: innerWin,
	}
}
