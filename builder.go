// builder.go: Record Builder & Buffer (C1) — per-goroutine scratch buffer
// that formats one record.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"bytes"
	"fmt"
	"sync"
)

// inlineBufferSize is the fixed capacity embedded directly in a builder,
// avoiding any allocation for the common case.
const inlineBufferSize = 1024

// overflowPool recycles *bytes.Buffer instances for builders that outgrow
// their inline storage, following the same Get/Put lifecycle as
// internal/bufferpool but scoped to the record-builder concern specifically
// (a builder's overflow buffer is released at record completion, never at
// goroutine teardown — Go has no such teardown hook to misuse).
var overflowPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

// builder is the Record Builder: a fixed inline array that transitions to a
// pooled heap buffer on overflow. Builders form a singly linked stack per
// Logger so that re-entrant logging (a sink's write path itself logging)
// pushes a fresh builder rather than clobbering an in-progress one.
type builder struct {
	inline   [inlineBufferSize]byte
	offset   int
	overflow *bytes.Buffer // non-nil once inline capacity is exceeded
	started  bool          // true once startLog has been called (multi-part API)
	next     *builder      // re-entrancy stack link
}

// reset returns the builder to its initial empty state and releases any
// overflow buffer back to the pool. Called at record completion, not at any
// goroutine-exit time.
func (b *builder) reset() {
	b.offset = 0
	b.started = false
	if b.overflow != nil {
		b.overflow.Reset()
		overflowPool.Put(b.overflow)
		b.overflow = nil
	}
}

// write appends p to the buffer, spilling to a pooled heap buffer once the
// inline array is exhausted. Once spilled, all subsequent writes go to the
// overflow buffer (the inline prefix was already copied in at spill time).
func (b *builder) write(p []byte) {
	if b.overflow != nil {
		b.overflow.Write(p)
		return
	}
	room := inlineBufferSize - b.offset
	if len(p) <= room {
		copy(b.inline[b.offset:], p)
		b.offset += len(p)
		return
	}
	b.spill()
	b.overflow.Write(p)
}

func (b *builder) spill() {
	ovf := overflowPool.Get().(*bytes.Buffer)
	ovf.Reset()
	ovf.Write(b.inline[:b.offset])
	b.overflow = ovf
	b.offset = 0
}

// bytes returns the formatted message currently held, borrowed from the
// builder's storage. The caller must not retain it past the builder's next
// reset (use Record.Clone to outlive that boundary).
func (b *builder) bytes() []byte {
	if b.overflow != nil {
		return b.overflow.Bytes()
	}
	return b.inline[:b.offset]
}

// formatInto renders a printf-style message directly into the builder,
// growing to heap storage transparently if the formatted output would
// overflow the inline array.
func (b *builder) formatInto(format string, args ...interface{}) {
	if len(args) == 0 {
		b.write([]byte(format))
		return
	}
	// Format into a stack scratch array (fmt.Appendf moves to the heap only
	// if the output does not fit), then copy the result into the builder.
	var scratch [inlineBufferSize]byte
	out := fmt.Appendf(scratch[:0], format, args...)
	b.write(out)
}

// builderPool backs the re-entrancy stack: pushBuilder borrows a fresh
// *builder from here instead of allocating, and popBuilder returns it.
var builderPool = sync.Pool{
	New: func() interface{} { return new(builder) },
}

func acquireBuilder() *builder {
	return builderPool.Get().(*builder)
}

func releaseBuilder(b *builder) {
	b.reset()
	b.next = nil
	builderPool.Put(b)
}
