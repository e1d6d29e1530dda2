// target_test.go: Tests for the Log Target (Sink) Abstraction (C12) and
// its writerTarget-backed built-in sinks.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	goerrors "github.com/agilira/go-errors"
)

type memWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *memWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func newMemWriterTarget(id uint32) (*writerTarget, *memWriter) {
	w := &memWriter{}
	return &writerTarget{baseTarget: newBaseTarget(id, "mem"), w: w}, w
}

func TestWriterTarget_LogWritesFormattedRecord(t *testing.T) {
	target, w := newMemWriterTarget(1)
	target.Log(Record{Level: Info, Msg: []byte("hello")})

	if got := w.String(); got == "" {
		t.Fatal("expected something written to the backing writer")
	}
}

func TestWriterTarget_RespectsLevelCeiling(t *testing.T) {
	target, w := newMemWriterTarget(1)
	target.level.SetLevel(Error)
	target.Log(Record{Level: Info, Msg: []byte("should be dropped")})

	if got := w.String(); got != "" {
		t.Fatalf("expected no output below the ceiling, got %q", got)
	}
}

func TestWriterTarget_StopRejectsFurtherWrites(t *testing.T) {
	target, w := newMemWriterTarget(1)
	_ = target.Stop()

	n, err := target.WriteLogRecord(Record{Level: Info, Msg: []byte("after stop")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected zero bytes written after Stop, got %d", n)
	}
	if w.String() != "" {
		t.Fatalf("expected no output after Stop, got %q", w.String())
	}
}

func TestWriterTarget_FilterDropsAndCountsStats(t *testing.T) {
	target, _ := newMemWriterTarget(1)
	target.SetFilter(FilterFunc(admitNever))
	target.Log(Record{Level: Info, Msg: []byte("filtered out")})

	snap := target.GetStats()
	if snap.Dropped != 1 {
		t.Fatalf("Dropped = %d, want 1", snap.Dropped)
	}
}

func TestWriterTarget_WriteFailureIsReportedThroughErrorHandler(t *testing.T) {
	target := &writerTarget{baseTarget: newBaseTarget(1, "broken"), w: failingWriter{}}
	var captured *goerrors.Error
	SetErrorHandler(func(err *goerrors.Error) { captured = err })
	defer SetErrorHandler(nil)

	target.Log(Record{Level: Info, Msg: []byte("x")})

	if captured == nil {
		t.Fatal("expected the write failure to reach the installed error handler")
	}
	if target.GetStats().Failed != 1 {
		t.Fatalf("Failed = %d, want 1", target.GetStats().Failed)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }

func TestBaseTarget_StartStopIsIdempotent(t *testing.T) {
	b := newBaseTarget(1, "x")
	if !b.start() {
		t.Fatal("first start() should succeed")
	}
	if b.start() {
		t.Fatal("second start() should report already-started")
	}
	if !b.stop() {
		t.Fatal("first stop() should succeed")
	}
	if b.stop() {
		t.Fatal("second stop() should report already-stopped")
	}
	if !b.isStopped() {
		t.Fatal("isStopped() should be true after stop()")
	}
}
