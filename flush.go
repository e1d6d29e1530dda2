// flush.go: Flush Policy (C9) — decides when a sink must flush.
//
// Group's leader/follower wait is styled after idle_strategies.go's
// backoff strategies rather than a raw spin loop.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"sync"
	"sync/atomic"
	"time"
)

// FlushPolicy decides, after each successful write of n bytes, whether the
// target should flush now. ShouldFlush must be safe for concurrent calls by
// multiple writers. Flush itself (on the Target) is always idempotent;
// policies only decide *when* to request it.
type FlushPolicy interface {
	ShouldFlush(bytesWritten int) bool
}

// NeverFlush lets the sink decide on its own (the default).
type NeverFlush struct{}

// ShouldFlush always returns false.
func (NeverFlush) ShouldFlush(int) bool { return false }

// ImmediateFlush requests a flush after every successful write.
type ImmediateFlush struct{}

// ShouldFlush always returns true.
func (ImmediateFlush) ShouldFlush(int) bool { return true }

// CountFlush requests a flush every n writes.
type CountFlush struct {
	n       int64
	counter int64
}

// NewCountFlush creates a CountFlush policy requesting a flush every n
// writes.
func NewCountFlush(n int64) *CountFlush { return &CountFlush{n: n} }

// ShouldFlush reports true on every n-th call.
func (c *CountFlush) ShouldFlush(int) bool {
	v := atomic.AddInt64(&c.counter, 1)
	return c.n > 0 && v%c.n == 0
}

// SizeFlush requests a flush once cumulative bytes since the last flush
// reach a threshold.
type SizeFlush struct {
	threshold int64
	written   int64
}

// NewSizeFlush creates a SizeFlush policy with the given byte threshold.
func NewSizeFlush(threshold int64) *SizeFlush { return &SizeFlush{threshold: threshold} }

// ShouldFlush accumulates bytesWritten and reports true once the threshold
// is reached, resetting the accumulator.
func (s *SizeFlush) ShouldFlush(bytesWritten int) bool {
	v := atomic.AddInt64(&s.written, int64(bytesWritten))
	if v >= s.threshold {
		atomic.AddInt64(&s.written, -v)
		return true
	}
	return false
}

// TimeFlush requests a flush from a background timer every d, independent
// of write volume. ShouldFlush always returns false (the timer drives
// flushing directly via the flush function supplied to NewTimeFlush); install it
// alongside a target and call Stop() on target Stop.
type TimeFlush struct {
	ticker *time.Ticker
	stopCh chan struct{}
	once   sync.Once
}

// NewTimeFlush starts a background ticker invoking flush every d until
// Stop is called.
func NewTimeFlush(d time.Duration, flush func() error) *TimeFlush {
	t := &TimeFlush{ticker: time.NewTicker(d), stopCh: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				_ = flush()
			case <-t.stopCh:
				return
			}
		}
	}()
	return t
}

// ShouldFlush always returns false; flushing is driven by the background
// ticker, not by the write path.
func (t *TimeFlush) ShouldFlush(int) bool { return false }

// Stop halts the background ticker. Idempotent.
func (t *TimeFlush) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.stopCh)
	})
}

// GroupFlush elects one leader writer per group to perform the actual
// flush while followers wait and are released together; follower flush
// requests are discarded (counted), not treated as errors.
type GroupFlush struct {
	size    int
	timeout time.Duration

	mu       sync.Mutex
	pending  int
	gen      uint64
	released chan struct{}

	discarded int64
}

// NewGroupFlush creates a GroupFlush electing a leader once size followers
// (including the leader) have enqueued, or after timeout elapses.
func NewGroupFlush(size int, timeout time.Duration) *GroupFlush {
	return &GroupFlush{size: size, timeout: timeout, released: make(chan struct{})}
}

// ShouldFlush enqueues the caller into the current group; exactly one
// caller per group is told to flush (true), the rest discard their request
// and wait briefly for the leader's release, mirroring idle_strategies.go's
// bounded-spin-then-yield backoff instead of blocking indefinitely.
func (g *GroupFlush) ShouldFlush(int) bool {
	g.mu.Lock()
	g.pending++
	isLeader := g.pending == 1
	myGen := g.gen
	released := g.released
	g.mu.Unlock()

	if isLeader {
		timer := time.NewTimer(g.timeout)
		defer timer.Stop()
		for {
			g.mu.Lock()
			full := g.pending >= g.size
			g.mu.Unlock()
			if full {
				break
			}
			select {
			case <-timer.C:
				goto leaderProceeds
			default:
				time.Sleep(50 * time.Microsecond)
			}
		}
	leaderProceeds:
		return true
	}

	atomic.AddInt64(&g.discarded, 1)
	select {
	case <-released:
	case <-time.After(g.timeout):
	}
	_ = myGen
	return false
}

// ReleaseFollowers is called by the target once the leader's flush
// completes, waking every follower waiting in ShouldFlush and starting a
// fresh group.
func (g *GroupFlush) ReleaseFollowers() {
	g.mu.Lock()
	close(g.released)
	g.released = make(chan struct{})
	g.pending = 0
	g.gen++
	g.mu.Unlock()
}

// Discarded returns the count of follower flush requests discarded so far.
func (g *GroupFlush) Discarded() int64 { return atomic.LoadInt64(&g.discarded) }

// ChainFlush composes a controller policy (decides *when*) with a
// moderator policy (decides *how* — serialization/batching is left to the
// moderator's own ShouldFlush semantics, typically CountFlush or SizeFlush).
type ChainFlush struct {
	Controller FlushPolicy
	Moderator  FlushPolicy
}

// ShouldFlush requests a flush only when both the controller and the
// moderator agree.
func (c ChainFlush) ShouldFlush(n int) bool {
	return c.Controller.ShouldFlush(n) && c.Moderator.ShouldFlush(n)
}
