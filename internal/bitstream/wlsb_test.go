// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package bitstream

import "testing"

func TestWindowWidthMustBePowerOfTwo(t *testing.T) {
	if _, err := NewWindow(3, 16); err != ErrWindowWidth {
		t.Errorf("got %v, want ErrWindowWidth", err)
	}
	if _, err := NewWindow(0, 16); err != ErrWindowWidth {
		t.Errorf("got %v, want ErrWindowWidth", err)
	}
	if _, err := NewWindow(4, 16); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWindowKNeededSN(t *testing.T) {
	// SN uses offset p = -1 and wraps mod 2^16.
	w, err := NewWindow(4, 16)
	if err != nil {
		t.Fatal(err)
	}

	w.Add(10)
	// candidate new SN is 11 (current + 1); covering a single adjacent
	// reference should need very few bits.
	k := w.KNeeded(11, -1, 16)
	if k > 4 {
		t.Errorf("expected small k for a single close reference, got %v", k)
	}
	if !w.Fits(11, -1, k) {
		t.Errorf("Fits should agree with KNeeded")
	}

	w.Add(11)
	w.Add(12)
	w.Add(13)
	k = w.KNeeded(14, -1, 16)
	if !w.Fits(14, -1, k) {
		t.Errorf("Fits should agree with KNeeded after filling window")
	}
}

func TestWindowWraparound(t *testing.T) {
	w, err := NewWindow(2, 16)
	if err != nil {
		t.Fatal(err)
	}

	w.Add(65534)
	w.Add(65535)

	k := w.KNeeded(0, -1, 16)
	if k > 4 {
		t.Errorf("expected small k across wraparound, got %v", k)
	}
}

func TestWindowEviction(t *testing.T) {
	w, err := NewWindow(2, 16)
	if err != nil {
		t.Fatal(err)
	}

	w.Add(0)
	w.Add(100)
	w.Add(200) // evicts 0

	if len(w.refs) != 2 {
		t.Fatalf("window should retain at most width references, got %v", len(w.refs))
	}
	if w.refs[0] != 100 {
		t.Errorf("oldest surviving reference should be 100, got %v", w.refs[0])
	}
}
