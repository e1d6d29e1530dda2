// Package statslot implements the per-goroutine statistics substrate (C3):
// a fixed-size array of cache-line-padded atomic counters, with slots
// acquired through a sync.Pool-backed handle rather than a true
// thread-local, since Go gives goroutines neither a stable identity nor an
// exit hook to reclaim one (see DESIGN.md's Open Question resolution for
// C3).
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package statslot

import (
	"sync"
	"sync/atomic"
)

// paddedCounter is one cache-line-padded int64 counter; each slot holds n
// of them, so no two counters, whether in the same slot or in neighboring
// slots, share a cache line.
type paddedCounter struct {
	_ [64]byte
	v int64
	_ [64]byte
}

// Table is a ceiling-sized array of per-slot counter sets. add(slot, n)
// stores only to the calling goroutine's slot; Sum aggregates across all
// slots, including ones whose owning goroutine has since exited (Go cannot
// signal that, so a slot's last values simply persist until reused).
type Table struct {
	ceiling int
	n       int // number of distinct counters tracked per slot
	slots   [][]paddedCounter

	mu       sync.Mutex
	inUse    []bool
	pool     sync.Pool
	overflow int64 // count of acquisitions beyond ceiling, accounted as dropped
}

// NewTable allocates a table with the given slot ceiling and number of
// distinct counters per slot (e.g. submitted/written/failed/bytes/flushes).
func NewTable(ceiling, counters int) *Table {
	t := &Table{
		ceiling: ceiling,
		n:       counters,
		slots:   make([][]paddedCounter, ceiling),
		inUse:   make([]bool, ceiling),
	}
	for i := range t.slots {
		t.slots[i] = make([]paddedCounter, counters)
	}
	t.pool.New = func() interface{} {
		h := t.acquireSlot()
		return h
	}
	return t
}

// Handle is a lease on one slot, acquired once per dispatch and released
// explicitly at dispatch completion.
type Handle struct {
	slot  int
	valid bool
}

// Acquire leases a slot handle from the pool. If a new slot is needed and
// the ceiling is exhausted, the handle is invalid and that acquisition is
// counted in Dropped; adds through an invalid handle are ignored.
func (t *Table) Acquire() *Handle {
	h := t.pool.Get().(*Handle)
	return h
}

// Release returns h to the pool for reuse by a later dispatch (by this or
// any other goroutine — slots are not goroutine-pinned beyond the span of
// one lease).
func (t *Table) Release(h *Handle) {
	t.pool.Put(h)
}

func (t *Table) acquireSlot() *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, used := range t.inUse {
		if !used {
			t.inUse[i] = true
			return &Handle{slot: i, valid: true}
		}
	}
	atomic.AddInt64(&t.overflow, 1)
	return &Handle{valid: false}
}

// Add adds n to counter idx of h's slot. A no-op if h is invalid (ceiling
// exhausted); the drop was counted once, when h was acquired.
func (t *Table) Add(h *Handle, idx int, n int64) {
	if !h.valid {
		return
	}
	atomic.AddInt64(&t.slots[h.slot][idx].v, n)
}

// Sum aggregates counter idx across every slot.
func (t *Table) Sum(idx int) int64 {
	var total int64
	for i := range t.slots {
		total += atomic.LoadInt64(&t.slots[i][idx].v)
	}
	return total
}

// Dropped returns the count of Acquire calls that found no free slot
// (beyond the configured ceiling).
func (t *Table) Dropped() int64 {
	return atomic.LoadInt64(&t.overflow)
}

// Reset zeroes every counter in every slot. Intended for tests.
func (t *Table) Reset() {
	for i := range t.slots {
		for j := range t.slots[i] {
			atomic.StoreInt64(&t.slots[i][j].v, 0)
		}
	}
}
