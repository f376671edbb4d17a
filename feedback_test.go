// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rohc

import "testing"

func TestFeedbackRingRoundTrip(t *testing.T) {
	r := newFeedbackRing(4)

	if err := r.piggyback([]byte{0xAA, 0xBB, 0xCC}); err != nil {
		t.Fatalf("piggyback: %v", err)
	}

	var out [16]byte
	n, err := r.get(out[:])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if n != 4 || out[0] != 0xF3 {
		t.Fatalf("get: n=%d header=%#x, want n=4 header=0xf3", n, out[0])
	}

	r.removeLocked()
	n2, err := r.get(out[:])
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if n2 != 0 {
		t.Fatalf("expected empty ring after commit, got n=%d", n2)
	}
}

func TestFeedbackRingRollback(t *testing.T) {
	r := newFeedbackRing(4)
	_ = r.piggyback([]byte{0x01})

	var out [16]byte
	if _, err := r.get(out[:]); err != nil {
		t.Fatalf("get: %v", err)
	}

	r.unlock()

	n, err := r.get(out[:])
	if err != nil {
		t.Fatalf("get after rollback: %v", err)
	}
	if n == 0 {
		t.Fatalf("expected rolled-back entry to be retryable")
	}
}

func TestFeedbackRingFullReturnsError(t *testing.T) {
	r := newFeedbackRing(1)
	if err := r.piggyback([]byte{0x01}); err != nil {
		t.Fatalf("first piggyback: %v", err)
	}
	if err := r.piggyback([]byte{0x02}); err != ErrRingFull {
		t.Fatalf("expected ErrRingFull, got %v", err)
	}
}
