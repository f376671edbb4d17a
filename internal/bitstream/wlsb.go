// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package bitstream

import "errors"

// ErrWindowWidth is returned when a window is constructed with a width
// that is not a power of two.
var ErrWindowWidth = errors.New("bitstream: window width must be a power of two")

// Window is a bounded sliding window of recent reference values for a
// wrapping N-bit field (SN, IP-ID, RTP timestamp). It answers the
// W-LSB question "how many bits k are required so that the new value
// falls inside the interval f(v_ref, k, p) of every stored reference
// v_ref".
type Window struct {
	width int
	bits  uint // modulus is 2^bits; field wraps mod 2^bits
	refs  []uint32
}

// NewWindow returns an empty window of the given width (must be a power
// of two) over a field that wraps modulo 2^bits.
func NewWindow(width int, bits uint) (*Window, error) {
	if width <= 0 || width&(width-1) != 0 {
		return nil, ErrWindowWidth
	}
	return &Window{width: width, bits: bits}, nil
}

// Add admits a new reference value into the window, evicting the oldest
// entry once the window is full.
func (w *Window) Add(value uint32) {
	w.refs = append(w.refs, value&w.mask())
	if len(w.refs) > w.width {
		w.refs = w.refs[len(w.refs)-w.width:]
	}
}

func (w *Window) mask() uint32 {
	if w.bits >= 32 {
		return 0xFFFFFFFF
	}
	return 1<<w.bits - 1
}

// Empty reports whether any reference has been admitted yet.
func (w *Window) Empty() bool {
	return len(w.refs) == 0
}

// covers reports whether value falls in f(v_ref, k, p) for the stored
// reference v_ref = ref, i.e. in [lo, lo+span) mod 2^bits.
func (w *Window) covers(ref uint32, value uint32, k uint, p int) bool {
	mod := uint64(1) << w.bits
	span := uint64(1) << k

	// f(v_ref, k, p) = [v_ref - p, v_ref - p + 2^k - 1] mod 2^bits
	lo := (int64(ref) - int64(p) + int64(mod)) % int64(mod)
	if lo < 0 {
		lo += int64(mod)
	}

	// distance of value from lo, going forward (mod), must be < span.
	dist := (uint64(value) + mod - uint64(lo)) % mod
	return dist < span
}

// KNeeded returns the minimum k in [0, maxBits] such that f(value, k, p)
// covers every reference currently held in the window. maxBits bounds
// the search (the field's own bit width, e.g. 16 for SN).
func (w *Window) KNeeded(value uint32, p int, maxBits uint) uint {
	for k := uint(0); k <= maxBits; k++ {
		ok := true
		for _, ref := range w.refs {
			if !w.covers(ref, value, k, p) {
				ok = false
				break
			}
		}
		if ok {
			return k
		}
	}
	return maxBits
}

// Fits reports whether k bits suffice to cover the window for value,
// i.e. whether KNeeded(value, p, k) <= k.
func (w *Window) Fits(value uint32, p int, k uint) bool {
	for _, ref := range w.refs {
		if !w.covers(ref, value, k, p) {
			return false
		}
	}
	return true
}
