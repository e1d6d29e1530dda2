// logger.go: Logger (C11) — thread-safe front-end bound to a Source.
//
// Built around a thin printf/multi-part builder API for descending-severity
// levels, alongside a structured Field-union API kept separately (see
// field.go) for callers who prefer it.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"runtime"
	"sync/atomic"
)

// Logger is a handle bound to a Source used to emit records. A shared
// Logger may be invoked from any goroutine concurrently; a private Logger
// may not.
type Logger struct {
	source *Source
	shared bool

	engine *Engine // dispatcher this logger's records flow through

	// top is the head of this logger's re-entrancy builder stack. Shared
	// loggers guard the swap with a spinlock (builderLock) since Go gives
	// no free per-goroutine storage the way a true thread-local would.
	top        *builder
	builderLock int32
}

func newLogger(source *Source, shared bool, engine *Engine) *Logger {
	l := &Logger{source: source, shared: shared, engine: engine}
	source.addLogger(l)
	return l
}

// Source returns the Source this Logger is bound to.
func (l *Logger) Source() *Source { return l.source }

// CanLog reports whether level is admitted by the bound source's current
// ceiling.
func (l *Logger) CanLog(level Level) bool {
	return l.source.CanLog(level)
}

func (l *Logger) lock() {
	if !l.shared {
		return
	}
	for !atomic.CompareAndSwapInt32(&l.builderLock, 0, 1) {
		// Contention here means two goroutines are sharing one Logger
		// concurrently, which is allowed for shared loggers; back off
		// briefly rather than burning a full core.
		runtime.Gosched()
	}
}

func (l *Logger) unlock() {
	if !l.shared {
		return
	}
	atomic.StoreInt32(&l.builderLock, 0)
}

// pushBuilder acquires a fresh builder, pushing it onto the re-entrancy
// stack if the current top is already in use. A shared Logger always takes
// a fresh builder, since another goroutine may be filling the current top.
func (l *Logger) pushBuilder() *builder {
	l.lock()
	defer l.unlock()
	if l.shared || l.top == nil || l.top.offset != 0 || l.top.overflow != nil || l.top.started {
		b := acquireBuilder()
		b.next = l.top
		l.top = b
		return b
	}
	return l.top
}

func (l *Logger) popBuilder(b *builder) {
	l.lock()
	defer l.unlock()
	if l.top == b {
		l.top = b.next
	}
	releaseBuilder(b)
}

// LogFormat is the single-shot printf-style log call.
func (l *Logger) LogFormat(level Level, format string, args ...interface{}) {
	if !l.CanLog(level) {
		return
	}
	b := l.pushBuilder()
	b.formatInto(format, args...)
	l.finish(level, b)
}

// LogNoFormat logs msg verbatim with no printf interpretation.
func (l *Logger) LogNoFormat(level Level, msg string) {
	if !l.CanLog(level) {
		return
	}
	b := l.pushBuilder()
	b.write([]byte(msg))
	l.finish(level, b)
}

// multiPart holds an in-progress startLog/appendLog/finishLog sequence. It
// is intentionally separate from the single-shot path's builder handling so
// that a nested LogFormat call during an in-progress multi-part record
// pushes its own builder rather than clobbering this one.
type multiPart struct {
	level Level
	b     *builder
}

// StartLog begins a multi-part record at level, returning a handle to pass
// to AppendLog/FinishLog. Returns nil if level is not admitted.
func (l *Logger) StartLog(level Level) *multiPart {
	if !l.CanLog(level) {
		return nil
	}
	b := l.pushBuilder()
	b.started = true
	return &multiPart{level: level, b: b}
}

// AppendLog appends format-rendered text to an in-progress multi-part
// record. Calling it with a nil mp (no preceding StartLog) is reported
// through the Report Channel as a misuse but never panics.
func (l *Logger) AppendLog(mp *multiPart, format string, args ...interface{}) {
	if mp == nil {
		l.reportMisuse("appendLog called without startLog")
		return
	}
	mp.b.formatInto(format, args...)
}

// FinishLog completes and dispatches a multi-part record.
func (l *Logger) FinishLog(mp *multiPart) {
	if mp == nil {
		l.reportMisuse("finishLog called without startLog")
		return
	}
	l.finish(mp.level, mp.b)
}

func (l *Logger) finish(level Level, b *builder) {
	r := Record{
		ID:          allocateRecordID(),
		Timestamp:   now(),
		GoroutineID: currentGoroutineID(),
		SourceID:    l.source.ID(),
		Level:       level,
		Msg:         b.bytes(),
		Logger:      l,
	}
	if l.engine != nil {
		l.engine.dispatch(r)
	}
	l.popBuilder(b)
}

// LogFields logs msg followed by each of fields rendered as " key=value",
// an opt-in structured-enrichment sibling to the printf-style LogFormat
//.
// Invalid fields (per ValidateField) are rendered as "key=<invalid>"
// rather than dropped, so a caller always sees every key it passed.
func (l *Logger) LogFields(level Level, msg string, fields ...Field) {
	if !l.CanLog(level) {
		return
	}
	b := l.pushBuilder()
	b.write([]byte(msg))
	for _, f := range fields {
		b.write([]byte(" "))
		b.write([]byte(f.Key))
		b.write([]byte("="))
		if err := ValidateField(f); err != nil {
			b.write([]byte("<invalid>"))
			continue
		}
		b.write([]byte(GetFieldString(f)))
	}
	l.finish(level, b)
}

func (l *Logger) reportMisuse(msg string) {
	if l.engine != nil {
		l.engine.report.Warnf("logger misuse: %s", msg)
	}
}

// Convenience level methods, mirroring the engine's eight severities.
func (l *Logger) Fatal(format string, args ...interface{})  { l.LogFormat(Fatal, format, args...) }
func (l *Logger) Error(format string, args ...interface{})  { l.LogFormat(Error, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})   { l.LogFormat(Warn, format, args...) }
func (l *Logger) Notice(format string, args ...interface{}) { l.LogFormat(Notice, format, args...) }
func (l *Logger) Info(format string, args ...interface{})   { l.LogFormat(Info, format, args...) }
func (l *Logger) Trace(format string, args ...interface{})  { l.LogFormat(Trace, format, args...) }
func (l *Logger) Debug(format string, args ...interface{})  { l.LogFormat(Debug, format, args...) }
func (l *Logger) Diag(format string, args ...interface{})   { l.LogFormat(Diag, format, args...) }

var goroutineIDCounter uint64

// currentGoroutineID approximates an opaque 64-bit thread id field.
// Go deliberately exposes no real goroutine id; rather than parse the
// runtime stack trace (fragile, slow, and unsupported API), every call
// through a Logger gets a fresh monotonic id. Callers must not assume
// stability across calls; this stays allocation-free and dependency-free.
func currentGoroutineID() uint64 {
	return atomic.AddUint64(&goroutineIDCounter, 1)
}
