// stats.go: Statistics Substrate (C3) — per-goroutine counter slots with
// cross-slot aggregation.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import "github.com/agilira/elog/internal/statslot"

// Counter indices shared by every Stats instance. Sinks that need extra
// counters keep them outside Stats (segmented.go's segmentedStats holds
// plain atomic fields), so the base set stays stable.
const (
	statSubmitted = iota
	statWritten
	statFailed
	statBytes
	statFlushes
	statDropped
	numBaseStats
)

// defaultSlotCeiling bounds the number of concurrent goroutines whose
// dispatch calls can hold a distinct counter slot at once; acquisitions
// beyond the ceiling are accounted as dropped.
const defaultSlotCeiling = 4096

// Stats is the per-target statistics substrate. It embeds a statslot.Table
// sized for the base counters; sinks needing more counters keep their own
// separate atomic counters (see segmented.go's segmentedStats).
type Stats struct {
	table *statslot.Table
}

// NewStats allocates a Stats with the base counter set.
func NewStats() *Stats {
	return &Stats{table: statslot.NewTable(defaultSlotCeiling, numBaseStats)}
}

// begin acquires a slot handle for the calling dispatch; the caller must
// call end(h) exactly once when the dispatch completes.
func (s *Stats) begin() *statslot.Handle { return s.table.Acquire() }
func (s *Stats) end(h *statslot.Handle)  { s.table.Release(h) }

func (s *Stats) addSubmitted(h *statslot.Handle, n int64) { s.table.Add(h, statSubmitted, n) }
func (s *Stats) addWritten(h *statslot.Handle, n int64)   { s.table.Add(h, statWritten, n) }
func (s *Stats) addFailed(h *statslot.Handle, n int64)    { s.table.Add(h, statFailed, n) }
func (s *Stats) addBytes(h *statslot.Handle, n int64)     { s.table.Add(h, statBytes, n) }
func (s *Stats) addFlushes(h *statslot.Handle, n int64)   { s.table.Add(h, statFlushes, n) }
func (s *Stats) addDropped(h *statslot.Handle, n int64)   { s.table.Add(h, statDropped, n) }

// Submitted returns the total records submitted for write across all slots.
func (s *Stats) Submitted() int64 { return s.table.Sum(statSubmitted) }

// Written returns the total records successfully written.
func (s *Stats) Written() int64 { return s.table.Sum(statWritten) }

// Failed returns the total records that failed to write.
func (s *Stats) Failed() int64 { return s.table.Sum(statFailed) }

// Bytes returns the total bytes written.
func (s *Stats) Bytes() int64 { return s.table.Sum(statBytes) }

// Flushes returns the total flush operations performed.
func (s *Stats) Flushes() int64 { return s.table.Sum(statFlushes) }

// Dropped returns records dropped either by filter or by slot exhaustion.
func (s *Stats) Dropped() int64 { return s.table.Sum(statDropped) + s.table.Dropped() }

// Snapshot is an immutable point-in-time view, convenient for
// getStats()/monitoring sinks.
type Snapshot struct {
	Submitted, Written, Failed, Bytes, Flushes, Dropped int64
}

// Snapshot captures the current aggregate values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Submitted: s.Submitted(),
		Written:   s.Written(),
		Failed:    s.Failed(),
		Bytes:     s.Bytes(),
		Flushes:   s.Flushes(),
		Dropped:   s.Dropped(),
	}
}
