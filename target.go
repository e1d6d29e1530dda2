// target.go: Log Target (Sink) Abstraction (C12) and the built-in
// stdlib-only system sinks (stdout, stderr, syslog).
//
// Grounded on sink.go's WriteSyncer/SyncWriter contracts, adapted into
// a richer Target interface, and on opencoff-go-logger's NewSyslog for
// the syslog target.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"log/syslog"
	"os"
	"sync"
	"sync/atomic"
)

// Target is the common sink contract. log is the public
// entry point: it evaluates the target's own level/filter, formats if
// needed, calls writeLogRecord, updates statistics, and consults the flush
// policy. writeLogRecord may return 0 when nothing was written (for example
// after Stop).
type Target interface {
	Start() error
	Stop() error
	Log(r Record)
	WriteLogRecord(r Record) (bytesWritten int, err error)
	Flush() error
	GetStats() Snapshot
	GetName() string
	GetID() uint32
	GetPassKey() uint32
}

// baseTarget centralizes the bookkeeping every concrete Target shares: id,
// name, level, optional filter/formatter override, flush policy,
// pass-key, stats, and a one-shot start/stop guard: start/stop are
// idempotent, and a target must reject new work once stop returns true.
type baseTarget struct {
	id      uint32
	name    string
	passKey uint32
	system  bool // marks a target installed during initialization; ClearAll does not consult it

	level     *AtomicLevel
	filter    atomic.Pointer[Filter]
	formatter atomic.Pointer[Formatter]
	flush     FlushPolicy

	stats *Stats

	started int32
	stopped int32
}

func newBaseTarget(id uint32, name string) *baseTarget {
	return &baseTarget{
		id:    id,
		name:  name,
		level: NewAtomicLevel(Diag),
		stats: NewStats(),
		flush: NeverFlush{},
	}
}

func (b *baseTarget) GetName() string   { return b.name }
func (b *baseTarget) GetID() uint32     { return b.id }
func (b *baseTarget) GetPassKey() uint32 { return b.passKey }
func (b *baseTarget) GetStats() Snapshot { return b.stats.Snapshot() }

// start marks the target started, returning false if already started
// (idempotent).
func (b *baseTarget) start() bool {
	return atomic.CompareAndSwapInt32(&b.started, 0, 1)
}

// stop marks the target stopped, returning false if already stopped.
func (b *baseTarget) stop() bool {
	return atomic.CompareAndSwapInt32(&b.stopped, 0, 1)
}

// isStopped reports whether Stop has already completed; writers must
// consult this and reject/drop new work rather than crash.
func (b *baseTarget) isStopped() bool {
	return atomic.LoadInt32(&b.stopped) == 1
}

// SetFilter atomically replaces the target's optional filter.
func (b *baseTarget) SetFilter(f Filter) { b.filter.Store(&f) }

// SetFormatter atomically replaces the target's optional formatter override.
func (b *baseTarget) SetFormatter(f *Formatter) { b.formatter.Store(f) }

// SetFlushPolicy replaces the attached flush policy.
func (b *baseTarget) SetFlushPolicy(p FlushPolicy) { b.flush = p }

// writerTarget is a Target whose WriteLogRecord is supplied by a simple
// io.Writer, used for the stdlib-only stdout/stderr/syslog sinks that need
// no buffering of their own.
type writerTarget struct {
	*baseTarget
	mu sync.Mutex
	w  interface {
		Write([]byte) (int, error)
	}
}

// NewStdoutTarget creates a Target writing directly to os.Stdout.
func NewStdoutTarget(id uint32) Target {
	return &writerTarget{baseTarget: newBaseTarget(id, "stdout"), w: os.Stdout}
}

// NewStderrTarget creates a Target writing directly to os.Stderr.
func NewStderrTarget(id uint32) Target {
	return &writerTarget{baseTarget: newBaseTarget(id, "stderr"), w: os.Stderr}
}

// NewSyslogTarget dials the local syslog daemon with priority
// LOG_INFO|LOG_USER and the given tag,
// mirroring opencoff-go-logger's NewSyslog wiring of the stdlib log/syslog
// package — the only syslog integration present anywhere in the retrieved
// pack.
func NewSyslogTarget(id uint32, tag string) (Target, error) {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, tag)
	if err != nil {
		return nil, wrapEngineError(err, ErrCodeIoError, "failed to dial syslog")
	}
	return &writerTarget{baseTarget: newBaseTarget(id, "syslog"), w: w}, nil
}

func (t *writerTarget) Start() error {
	t.start()
	return nil
}

func (t *writerTarget) Stop() error {
	t.stop()
	return nil
}

func (t *writerTarget) Log(r Record) {
	h := t.stats.begin()
	defer t.stats.end(h)

	if !t.level.Enabled(r.Level) {
		return
	}
	if f := t.filter.Load(); f != nil && !(*f).Admit(r) {
		t.stats.addDropped(h, 1)
		return
	}
	t.stats.addSubmitted(h, 1)
	n, err := t.WriteLogRecord(r)
	if err != nil {
		t.stats.addFailed(h, 1)
		handleError(wrapEngineError(err, ErrCodeIoError, "target write failed").WithContext("target", t.name))
		return
	}
	t.stats.addWritten(h, 1)
	t.stats.addBytes(h, int64(n))
	if t.flush != nil && t.flush.ShouldFlush(n) {
		_ = t.Flush()
	}
}

func (t *writerTarget) WriteLogRecord(r Record) (int, error) {
	if t.isStopped() {
		return 0, nil
	}
	var buf [2048]byte
	out := buf[:0]
	if f := t.formatter.Load(); f != nil {
		out = (*f).FormatInto(out, r)
	} else {
		out = DefaultFormatter.FormatInto(out, r)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Write(out)
}

func (t *writerTarget) Flush() error {
	h := t.stats.begin()
	defer t.stats.end(h)
	t.stats.addFlushes(h, 1)
	if s, ok := t.w.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}
