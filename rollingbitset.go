// rollingbitset.go: a fixed-width rolling bit-set used by the message wire
// contract's duplicate request-id rejection.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import "sync"

// rollingBitset tracks membership of a sliding window of the most recent N
// monotonically increasing indices (epochs, or request ids) without
// retaining unbounded history: setting bit i implicitly clears bit i-N,
// since the window always covers [i-N+1, i].
type rollingBitset struct {
	mu    sync.Mutex
	bits  []uint64 // per slot: the index last marked there, plus one (0 = empty)
	width uint64
}

func newRollingBitset(width int) *rollingBitset {
	if width <= 0 {
		width = 64
	}
	return &rollingBitset{bits: make([]uint64, width), width: uint64(width)}
}

// mark records index as completed/seen. It is safe to call out of strict
// order (a later epoch's quiescence may be confirmed before an earlier
// one's, though the segmented target's barrier does not rely on that).
func (s *rollingBitset) mark(index uint64) {
	s.mu.Lock()
	s.bits[index%s.width] = index + 1
	s.mu.Unlock()
}

// has reports whether index is currently marked within the live window.
// Once the window advances past index by width, has returns false again —
// the caller (duplicate-request-id rejection) relies on this to bound
// memory, accepting that sufficiently old ids may be treated as novel.
func (s *rollingBitset) has(index uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bits[index%s.width] == index+1
}

// clear unmarks index if its slot still holds it; a later index that has
// since reused the slot stays marked.
func (s *rollingBitset) clear(index uint64) {
	s.mu.Lock()
	if i := index % s.width; s.bits[i] == index+1 {
		s.bits[i] = 0
	}
	s.mu.Unlock()
}
