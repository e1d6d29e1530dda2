// record.go: Log Record (C2) — the immutable descriptor of one emission.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// nextRecordID is the process-wide monotonic record id counter: a 64-bit
// id assigned once per record, process-wide.
var nextRecordID uint64

func allocateRecordID() uint64 {
	return atomic.AddUint64(&nextRecordID, 1)
}

// Record is the immutable descriptor of one logged emission. It is a value,
// constructed on the issuing goroutine, never mutated once the dispatcher
// has been invoked. Msg is a borrowed slice into the producing Builder's
// buffer: it must not be retained past dispatch without an explicit Clone
// (used by the pre-init buffer).
type Record struct {
	ID        uint64
	Timestamp time.Time
	GoroutineID uint64 // opaque per-call thread id, see currentGoroutineID
	SourceID  uint32
	Level     Level
	Msg       []byte
	// Logger is a weak (non-owning) back-reference used by sinks that defer
	// formatting, to recover source metadata.
	Logger *Logger
}

// Clone copies Msg into a private buffer so the Record outlives the Builder
// that produced it. Used by the Pre-Init Buffer (C16), which holds records
// across a dispatch boundary; the Segmented File Target's pending ring
// (C14) holds copies of already formatted bytes instead.
func (r Record) Clone() Record {
	msg := make([]byte, len(r.Msg))
	copy(msg, r.Msg)
	r.Msg = msg
	return r
}

// now returns the current wall-clock time from the shared cache, falling
// back transparently to time.Now if the cache has not been started (the
// external go-timecache reader is only active once referenced).
func now() time.Time {
	return timecache.CachedTime()
}
