// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"time"

	"github.com/oprsystem/rohc/internal/ipparse"
	log "github.com/oprsystem/rohc/minilog"
)

// Compress consumes one uncompressed IP packet and emits a compressed
// ROHC packet into out, per the control flow of spec.md §2: parse the
// IP chain, select a profile and context, drain feedback, encode the
// header, append the payload (or hand off to the segmenter), and update
// statistics.
//
// arrival is the packet's wall-clock arrival time; a zero Time disables
// time-dependent features without affecting packet-count-driven
// periodic refresh (spec.md §5).
func (c *Compressor) Compress(arrival time.Time, in []byte, out []byte) (Result, error) {
	if len(in) == 0 {
		return Result{}, ErrNilBuffer
	}

	chain, err := ipparse.Parse(in)
	if err != nil {
		c.stats.CompressionFailed++
		return Result{}, err
	}

	var key ContextKey
	profile := registryInstance.selectProfile(c.enabledProfiles, c.rtpPorts, chain, &key)
	if profile == nil {
		c.stats.CompressionFailed++
		return Result{}, ErrNoProfile
	}

	storeFull := c.contexts.numContextsUsed() == c.maxCID+1
	ctx, created, err := c.contexts.findOrCreate(profile, key, func(ctx *Context) bool {
		return profile.CheckContext(ctx, chain)
	}, arrival)
	if err != nil {
		c.stats.CompressionFailed++
		return Result{}, err
	}

	if created {
		ctx.profile = profile
		ctx.key = key
		ctx.state = StateIR
		ctx.mode = ModeU
		ctx.generic = newGenericContext(c.wlsbWidth)
		ctx.generic.sn = c.random()
		ctx.compressor = c
		profile.Create(ctx, chain)
		c.stats.ContextsCreated++
		if storeFull {
			c.stats.ContextsEvicted++
		}
		c.tracef("rohc[%s]: cid=%d new context profile=%s", c.id, ctx.cid, profile.Description())
	}

	body, ptype, err := c.encodeContext(ctx, chain, in)
	if err != nil {
		c.feedback.unlock()
		c.stats.CompressionFailed++
		return Result{}, err
	}

	framed, err := wireHeader(c.cidType, ctx.cid, body)
	if err != nil {
		c.feedback.unlock()
		c.stats.CompressionFailed++
		return Result{}, err
	}

	// Drain any piggybacked feedback ahead of the packet itself.
	var fb [256]byte
	fbN, _ := c.feedback.get(fb[:])

	total := fbN + len(framed) + len(chain.Payload)
	if total > len(out) {
		if c.mrru > 0 && total <= c.mrru {
			// Feedback drained above is re-attached ahead of the ROHC
			// packet itself inside the buffered unit, so the first
			// emitted segment carries it (spec.md §5's segmentation
			// ordering rule); the ring is then unlocked rather than
			// committed, per the two-phase contract (spec.md §4.8/§8
			// invariant 5).
			payload := make([]byte, 0, fbN+len(framed)+len(chain.Payload))
			payload = append(payload, fb[:fbN]...)
			payload = append(payload, framed...)
			payload = append(payload, chain.Payload...)
			if err := c.rru.buffer(payload, c.crc); err != nil {
				c.feedback.unlock()
				c.stats.CompressionFailed++
				return Result{}, err
			}
			c.feedback.unlock()
			c.afterSuccess(ctx, ptype)
			return c.GetSegment(out)
		}
		c.feedback.unlock()
		c.stats.CompressionFailed++
		return Result{}, ErrOutputTooSmall
	}

	n := copy(out, fb[:fbN])
	n += copy(out[n:], framed)
	n += copy(out[n:], chain.Payload)

	c.feedback.removeLocked()
	c.afterSuccess(ctx, ptype)

	return Result{Status: StatusOK, N: n}, nil
}

// afterSuccess updates counters and context bookkeeping common to every
// packet family once a packet has been successfully produced.
func (c *Compressor) afterSuccess(ctx *Context, ptype PacketType) {
	c.numPackets++
	ctx.packetCount++
	ctx.recordOutcome(true)
	c.stats.PacketsCompressed++
	c.stats.PacketsByType[ptype]++

	ctx.generic.sn++
	ctx.generic.snWindow.Add(uint32(ctx.generic.sn))

	c.advanceState(ctx, ptype)
}

// advanceState drives the IR → FO → SO → refresh machine of spec.md §4.5.
func (c *Compressor) advanceState(ctx *Context, ptype PacketType) {
	switch ctx.state {
	case StateIR:
		ctx.irCount++
		if ctx.irCount >= maxIRCount && ctx.generic.outer.converged() && (!ctx.generic.haveInner || ctx.generic.inner.converged()) {
			ctx.state = StateFO
			ctx.foCount = 0
			ctx.soCount = 0
		}
	case StateFO:
		if ptype == PacketIRDYN {
			// a required resync does not count toward FO->SO progress
			return
		}
		ctx.foCount++
		if ctx.foCount >= maxFOCount && !ctx.generic.scratch.sendStatic && ctx.generic.snWindow.Fits(uint32(ctx.generic.sn+1), -1, 13) {
			ctx.state = StateSO
		}
	case StateSO:
		ctx.soCount++
		if ctx.soCount >= c.irRefresh {
			ctx.state = StateIR
			ctx.irCount = 0
		} else if ctx.soCount >= c.foRefresh && ctx.soCount%c.foRefresh == 0 {
			ctx.state = StateFO
			ctx.foCount = 0
		}
	}
}

// encodeContext recomputes the per-packet scratch, lets the profile
// build the compressed header, and falls back to the Uncompressed
// profile if the chosen profile's Encode fails (spec.md §7's "encoding
// fallback").
func (c *Compressor) encodeContext(ctx *Context, chain *ipparse.Chain, in []byte) ([]byte, PacketType, error) {
	newSN := ctx.generic.sn + 1

	outerChanged := chain.Outer.Version == 4 && chain.Outer.IPID != ctx.generic.outer.ipID
	innerChanged := chain.Inner != nil && chain.Inner.Version == 4 && chain.Inner.IPID != ctx.generic.inner.ipID

	ctx.computeScratch(chain, newSN, outerChanged, innerChanged)
	ctx.generic.scratch.sendStatic = !ctx.profile.CheckContext(ctx, chain)

	if chain.Outer.Version == 4 {
		rnd, nbo, sid := classifyIPID(ctx.generic.outer.ipID, chain.Outer.IPID)
		ctx.generic.outer.update(rnd, nbo, sid)
		ctx.generic.outer.ipID = chain.Outer.IPID
		ctx.generic.outerIPIDWin.Add(uint32(chain.Outer.IPID))
	}
	if chain.Inner != nil && chain.Inner.Version == 4 {
		rnd, nbo, sid := classifyIPID(ctx.generic.inner.ipID, chain.Inner.IPID)
		ctx.generic.inner.update(rnd, nbo, sid)
		ctx.generic.inner.ipID = chain.Inner.IPID
		ctx.generic.innerIPIDWin.Add(uint32(chain.Inner.IPID))
	}

	out := make([]byte, 0, 256)
	n, ptype, err := ctx.profile.Encode(ctx, chain, in, c.crc, out)
	if err == nil {
		return out[:n], ptype, nil
	}

	log.Error("rohc[%s]: cid=%d profile %s encode failed (%v), falling back to Uncompressed", c.id, ctx.cid, ctx.profile.Description(), err)
	uncompressed := newUncompressedProfile()
	n2, ptype2, err2 := uncompressed.Encode(ctx, chain, in, c.crc, out)
	if err2 != nil {
		return nil, 0, ErrEncodingFailed
	}
	return out[:n2], ptype2, nil
}

// registryInstance is the single, stateless, priority-ordered profile
// list every Compressor consults. It holds no per-flow state (that
// lives in Context.specific), so sharing it across instances is safe.
var registryInstance = newRegistry()
