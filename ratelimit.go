// ratelimit.go: Rate Limiter & Moderator (C6).
//
// The sliding-window formula and window-roll logic are grounded verbatim on
// original_source/src/elog/src/elog_rate_limiter.cpp; the Moderator's
// burst-summary fields are grounded on elog_rate_limiter.h's ELogModerate.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"sync/atomic"
	"time"
)

// RateLimiter is an approximate sliding-window admission filter: at most
// ~M records are admitted per window W. It is intentionally not strict — a
// sudden thundering herd may transiently cross M — in exchange for O(1)
// atomics-only admission with no background timer.
type RateLimiter struct {
	maxPerWindow int64
	window       time.Duration

	currWindow      int64 // index of the window currently being counted
	currWindowCount int64
	prevWindowCount int64
}

// NewRateLimiter creates a limiter admitting at most maxPerWindow records
// per window of the given duration.
func NewRateLimiter(maxPerWindow int64, window time.Duration) *RateLimiter {
	return &RateLimiter{maxPerWindow: maxPerWindow, window: window}
}

// Admit evaluates the limiter against ts, the record's own timestamp (the
// reference implementation derives the window from incoming-message
// timestamps rather than an independent background timer). It returns
// whether the record is admitted, atomically updating the window counters.
func (r *RateLimiter) Admit(ts time.Time) bool {
	windowIdx := ts.UnixNano() / int64(r.window)
	curr := atomic.LoadInt64(&r.currWindow)

	if curr == windowIdx {
		prevCount := atomic.LoadInt64(&r.prevWindowCount)
		currCount := atomic.LoadInt64(&r.currWindowCount)
		elapsed := ts.UnixNano() % int64(r.window)
		remainingFrac := float64(int64(r.window)-elapsed) / float64(r.window)
		approx := float64(prevCount)*remainingFrac + float64(currCount)
		if approx < float64(r.maxPerWindow) {
			atomic.AddInt64(&r.currWindowCount, 1)
			return true
		}
		return false
	}

	// A window boundary was crossed since the last admitted record.
	if curr == windowIdx-1 {
		currCount := atomic.LoadInt64(&r.currWindowCount)
		atomic.StoreInt64(&r.prevWindowCount, currCount)
	} else {
		atomic.StoreInt64(&r.prevWindowCount, 0)
	}
	atomic.StoreInt64(&r.currWindowCount, 1)
	atomic.StoreInt64(&r.currWindow, windowIdx)
	return true
}

// Moderator wraps a RateLimiter plus a format-string key, reporting
// aggregate suppression through the Report Channel: the first record
// admitted after a burst of denials emits a single summary ("discarded N
// times in M ms") before its own message.
type Moderator struct {
	key     string
	limiter *RateLimiter
	report  func(format string, args ...interface{})

	discardTotal   int64
	discarding     int32
	burstStartTime int64 // unix nano, set when discarding begins
	burstStartCnt  int64
}

// NewModerator creates a Moderator keyed by key (typically the format
// string of the moderated call site), reporting summaries via report.
func NewModerator(key string, limiter *RateLimiter, report func(format string, args ...interface{})) *Moderator {
	return &Moderator{key: key, limiter: limiter, report: report}
}

// Moderate evaluates ts against the wrapped limiter. It returns true if the
// record should proceed. On the transition out of a discard burst, it
// emits exactly one summary carrying the exact denied count of that burst
// (invariant 8).
func (m *Moderator) Moderate(ts time.Time) bool {
	if m.limiter.Admit(ts) {
		if atomic.CompareAndSwapInt32(&m.discarding, 1, 0) {
			start := atomic.LoadInt64(&m.burstStartCnt)
			denied := atomic.LoadInt64(&m.discardTotal) - start
			startedAt := time.Unix(0, atomic.LoadInt64(&m.burstStartTime))
			elapsedMs := ts.Sub(startedAt).Milliseconds()
			if m.report != nil {
				m.report("discarded %d times in %d ms (key=%s)", denied, elapsedMs, m.key)
			}
		}
		return true
	}
	if atomic.CompareAndSwapInt32(&m.discarding, 0, 1) {
		atomic.StoreInt64(&m.burstStartTime, ts.UnixNano())
		atomic.StoreInt64(&m.burstStartCnt, atomic.LoadInt64(&m.discardTotal))
	}
	atomic.AddInt64(&m.discardTotal, 1)
	return false
}

// DiscardTotal returns the cumulative count of denied records over the
// moderator's lifetime.
func (m *Moderator) DiscardTotal() int64 { return atomic.LoadInt64(&m.discardTotal) }

// IsDiscarding reports whether the moderator is currently mid-burst.
func (m *Moderator) IsDiscarding() bool { return atomic.LoadInt32(&m.discarding) == 1 }
