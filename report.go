// report.go: Report Channel (C17) — the engine's own diagnostic channel,
// used to surface internal conditions (dropped records, misuse, moderator
// summaries) without a dedicated side API.
//
// Reports are themselves routed through the dispatcher as ordinary
// records on a reserved source, with a recursion depth guard so a
// report emitted while handling a report cannot loop.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"fmt"
	"os"
	"sync/atomic"
)

// reportSourceName is the reserved qualified name of the source every
// internal diagnostic is logged under.
const reportSourceName = "elog"

// maxReportDepth bounds recursive report emission.
const maxReportDepth = 2

// ReportChannel routes the engine's own diagnostics through the normal
// dispatch path, falling back to stderr when recursion or absence of a
// configured source/engine would otherwise swallow the message.
type ReportChannel struct {
	engine *Engine
	source *Source
	depth  int32
}

func newReportChannel(engine *Engine, source *Source) *ReportChannel {
	return &ReportChannel{engine: engine, source: source}
}

// Warnf emits a Warn-level diagnostic.
func (r *ReportChannel) Warnf(format string, args ...interface{}) {
	r.emit(Warn, format, args...)
}

// Errorf emits an Error-level diagnostic.
func (r *ReportChannel) Errorf(format string, args ...interface{}) {
	r.emit(Error, format, args...)
}

// Infof emits an Info-level diagnostic, used for benign summaries such as
// moderator burst reports.
func (r *ReportChannel) Infof(format string, args ...interface{}) {
	r.emit(Info, format, args...)
}

func (r *ReportChannel) emit(level Level, format string, args ...interface{}) {
	depth := atomic.AddInt32(&r.depth, 1)
	defer atomic.AddInt32(&r.depth, -1)

	msg := fmt.Sprintf(format, args...)
	if depth > maxReportDepth || r.engine == nil || r.source == nil {
		fmt.Fprintf(os.Stderr, "elog: %s\n", msg)
		return
	}
	if !r.source.CanLog(level) {
		return
	}
	rec := Record{
		ID:        allocateRecordID(),
		Timestamp: now(),
		SourceID:  r.source.ID(),
		Level:     level,
		Msg:       []byte(msg),
	}
	r.engine.dispatch(rec)
}
