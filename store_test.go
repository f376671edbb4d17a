// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import (
	"testing"
	"time"
)

func TestContextStoreAllocateLowestFreeCID(t *testing.T) {
	s := newContextStore(3)

	a, err := s.allocate()
	if err != nil || a.cid != 0 {
		t.Fatalf("first allocate: cid=%d err=%v", a.cid, err)
	}
	b, err := s.allocate()
	if err != nil || b.cid != 1 {
		t.Fatalf("second allocate: cid=%d err=%v", b.cid, err)
	}

	s.destroy(a)
	c, err := s.allocate()
	if err != nil || c.cid != 0 {
		t.Fatalf("reused allocate: cid=%d err=%v", c.cid, err)
	}
}

func TestContextStoreLRUEviction(t *testing.T) {
	s := newContextStore(1) // two slots: cid 0, 1

	now := time.Now()
	a, _ := s.allocate()
	a.used = true
	a.touch(now)

	b, _ := s.allocate()
	b.used = true
	b.touch(now.Add(time.Second))

	victim, err := s.allocate()
	if err != nil {
		t.Fatalf("eviction allocate: %v", err)
	}
	if victim.cid != a.cid {
		t.Fatalf("expected to evict cid %d (older), evicted cid %d", a.cid, victim.cid)
	}
}

func TestContextStoreFindOrCreate(t *testing.T) {
	s := newContextStore(3)
	p := newIPOnlyProfile()

	ctx1, created1, err := s.findOrCreate(p, ContextKey(42), func(*Context) bool { return true }, time.Now())
	if err != nil || !created1 {
		t.Fatalf("expected creation: created=%v err=%v", created1, err)
	}
	ctx1.profile = p
	ctx1.key = 42

	ctx2, created2, err := s.findOrCreate(p, ContextKey(42), func(*Context) bool { return true }, time.Now())
	if err != nil || created2 {
		t.Fatalf("expected lookup hit, not creation: created=%v err=%v", created2, err)
	}
	if ctx1 != ctx2 {
		t.Fatalf("expected same context pointer across findOrCreate calls")
	}
}

func TestContextStoreFullReturnsErrContextsFull(t *testing.T) {
	s := &contextStore{slots: nil, maxCID: -1}
	if _, err := s.allocate(); err != ErrContextsFull {
		t.Fatalf("expected ErrContextsFull, got %v", err)
	}
}
