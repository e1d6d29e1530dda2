// Package ring implements the bounded MPMC ring buffer used by the
// segmented-file target's pending-message queue (C4 in the engine's
// component design): a power-of-two-sized buffer with two 64-bit cursors on
// distinct cache lines and an explicit four-state per-slot state machine
// (VACANT -> WRITING -> READY -> READING), as opposed to the two-state
// multi-producer single-consumer design of the sibling
// internal/zephyroslite package.
//
// Grounded on the slot-state design note in the engine specification and on
// the claim-then-publish idiom of the real github.com/agilira/lethe ring
// buffer (atomic.Pointer slots, CAS-reserve-then-write push).
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package ring

import (
	"errors"
	"runtime"
	"sync/atomic"
)

// Slot states. The producer claims a monotonically increasing index, waits
// for the slot to be Vacant, writes the payload, publishes Ready. The
// consumer waits for Ready, consumes, publishes Vacant, and advances its
// own read cursor.
const (
	Vacant uint32 = iota
	Writing
	Ready
	Reading
)

// cachelinePad is sized to keep two adjacent fields from sharing a cache
// line on common 64-byte-line architectures.
type cachelinePad [64]byte

// Ring is a bounded multi-producer multi-consumer queue of byte slices.
// Capacity is fixed at construction and must be a power of two.
type Ring struct {
	mask uint64

	_          cachelinePad
	writeCursor uint64 // next index to be claimed by a producer
	_          cachelinePad
	readCursor uint64 // next index to be claimed by a consumer
	_          cachelinePad

	states []uint32
	slots  [][]byte
}

// ErrInvalidCapacity is returned when capacity is not a positive power of two.
var ErrInvalidCapacity = errors.New("ring: capacity must be a power of two")

// New constructs a Ring with the given capacity, which must be a power of
// two (callers that need an arbitrary-size bounded ring should round up
// internally; this constructor enforces power-of-two for the lock-free
// index masking used here).
func New(capacity int) (*Ring, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, ErrInvalidCapacity
	}
	return &Ring{
		mask:   uint64(capacity - 1),
		states: make([]uint32, capacity),
		slots:  make([][]byte, capacity),
	}, nil
}

// Cap returns the ring's fixed capacity.
func (r *Ring) Cap() int { return int(r.mask) + 1 }

// Push enqueues payload, spin-waiting with CPU relaxation while the target
// slot is not yet Vacant (i.e. the ring is full). Push has no return value
// and the ring has no Close, so it waits until the slot frees; callers
// needing a non-blocking attempt should use TryPush.
func (r *Ring) Push(payload []byte) {
	idx := atomic.AddUint64(&r.writeCursor, 1) - 1
	slot := idx & r.mask

	spins := 0
	for !atomic.CompareAndSwapUint32(&r.states[slot], Vacant, Writing) {
		spins++
		if spins > 64 {
			runtime.Gosched()
			spins = 0
		}
	}
	r.slots[slot] = payload
	atomic.StoreUint32(&r.states[slot], Ready)
}

// TryPush attempts to enqueue payload without blocking, returning false if
// the target slot is not currently Vacant (the ring is full at that slot).
func (r *Ring) TryPush(payload []byte) bool {
	idx := atomic.AddUint64(&r.writeCursor, 1) - 1
	slot := idx & r.mask
	if !atomic.CompareAndSwapUint32(&r.states[slot], Vacant, Writing) {
		// Undo the cursor reservation is not possible without breaking
		// monotonicity for other producers already past this point, so we
		// restore Vacant-eligibility by simply leaving the slot claimed by
		// whoever holds it and report failure to this caller; the caller
		// must treat this as "ring full" and fall back (e.g. spin on Push).
		return false
	}
	r.slots[slot] = payload
	atomic.StoreUint32(&r.states[slot], Ready)
	return true
}

// Pop dequeues the next record in FIFO order, spin-waiting with CPU
// relaxation while the slot is not yet Ready.
func (r *Ring) Pop() []byte {
	idx := atomic.AddUint64(&r.readCursor, 1) - 1
	slot := idx & r.mask

	spins := 0
	for !atomic.CompareAndSwapUint32(&r.states[slot], Ready, Reading) {
		spins++
		if spins > 64 {
			runtime.Gosched()
			spins = 0
		}
	}
	payload := r.slots[slot]
	r.slots[slot] = nil
	atomic.StoreUint32(&r.states[slot], Vacant)
	return payload
}

// TryPop attempts to dequeue without blocking; ok is false if nothing is
// Ready yet at the next slot.
func (r *Ring) TryPop() (payload []byte, ok bool) {
	cur := atomic.LoadUint64(&r.readCursor)
	slot := cur & r.mask
	if !atomic.CompareAndSwapUint32(&r.states[slot], Ready, Reading) {
		return nil, false
	}
	atomic.AddUint64(&r.readCursor, 1)
	payload = r.slots[slot]
	r.slots[slot] = nil
	atomic.StoreUint32(&r.states[slot], Vacant)
	return payload, true
}

// Size reports the number of items currently enqueued. It is monotone with
// respect to Push/Pop issuance order but, under concurrent access, only an
// approximation at the instant of the call (spec invariant 9: size is
// monotone with respect to push and pop issuances, not an exact snapshot).
func (r *Ring) Size() int {
	w := atomic.LoadUint64(&r.writeCursor)
	rd := atomic.LoadUint64(&r.readCursor)
	if w < rd {
		return 0
	}
	return int(w - rd)
}

// DrainAll pops every currently Ready item in FIFO order without blocking,
// used by the segmented target's rotator to empty a segment's pending ring
// before closing the old file handle.
func (r *Ring) DrainAll() [][]byte {
	var out [][]byte
	for {
		p, ok := r.TryPop()
		if !ok {
			break
		}
		out = append(out, p)
	}
	return out
}
