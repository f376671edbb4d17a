// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import "time"

// contextStore is a fixed-capacity array indexed by CID, grounded on
// vlans.AllocatedVLANs's map-plus-allocation idiom but adapted to a
// dense vector since CIDs are a small, bounded space (spec.md §9).
type contextStore struct {
	slots       []Context
	numUsed     int
	maxCID      int
}

func newContextStore(maxCID int) *contextStore {
	return &contextStore{
		slots:  make([]Context, maxCID+1),
		maxCID: maxCID,
	}
}

// allocate picks a slot for a new context: the lowest unused CID, or
// (if every slot is used) the one with the smallest latestUsed.
// Destruction invokes profile.Destroy on the evicted context first.
func (s *contextStore) allocate() (*Context, error) {
	for i := range s.slots {
		if !s.slots[i].used {
			s.slots[i].cid = i
			s.slots[i].used = true
			s.numUsed++
			return &s.slots[i], nil
		}
	}

	victim := s.lruVictim()
	if victim == nil {
		return nil, ErrContextsFull
	}
	s.destroy(victim)
	victim.used = true
	s.numUsed++
	return victim, nil
}

// findOrCreate returns the existing context matching (profile, key,
// matches) if one exists, touching its latestUsed; otherwise it
// allocates a fresh context (evicting an LRU victim if necessary) and
// reports created=true.
func (s *contextStore) findOrCreate(profile Profile, key ContextKey, matches func(*Context) bool, now time.Time) (ctx *Context, created bool, err error) {
	if existing := s.lookup(profile, key, matches); existing != nil {
		existing.touch(now)
		return existing, false, nil
	}

	ctx, err = s.allocate()
	if err != nil {
		return nil, false, err
	}
	ctx.used = true
	ctx.touch(now)
	return ctx, true, nil
}

func (s *contextStore) lruVictim() *Context {
	var best *Context
	for i := range s.slots {
		c := &s.slots[i]
		if !c.used {
			continue
		}
		if best == nil || c.latestUsed.Before(best.latestUsed) {
			best = c
		}
	}
	return best
}

func (s *contextStore) destroy(ctx *Context) {
	if ctx.profile != nil {
		ctx.profile.Destroy(ctx)
	}
	*ctx = Context{cid: ctx.cid}
	s.numUsed--
}

// lookup finds a used context whose profile and key match, scanning at
// most numUsed used slots (spec.md §4.3's early-exit rule).
func (s *contextStore) lookup(profile Profile, key ContextKey, matches func(*Context) bool) *Context {
	visited := 0
	for i := range s.slots {
		c := &s.slots[i]
		if !c.used {
			continue
		}
		visited++
		if c.profile != nil && c.profile.ID() == profile.ID() && c.key == key && matches(c) {
			return c
		}
		if visited >= s.numUsed {
			break
		}
	}
	return nil
}

func (s *contextStore) lookupCID(cid int) *Context {
	if cid < 0 || cid >= len(s.slots) || !s.slots[cid].used {
		return nil
	}
	return &s.slots[cid]
}

func (s *contextStore) forEachUsed(fn func(*Context)) {
	for i := range s.slots {
		if s.slots[i].used {
			fn(&s.slots[i])
		}
	}
}

func (s *contextStore) destroyMatching(pred func(*Context) bool) {
	for i := range s.slots {
		c := &s.slots[i]
		if c.used && pred(c) {
			s.destroy(c)
		}
	}
}

// numContextsUsed satisfies invariant I2/I6 of spec.md §3/§8.
func (s *contextStore) numContextsUsed() int {
	return s.numUsed
}
