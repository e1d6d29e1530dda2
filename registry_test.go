// registry_test.go: Tests for Registry & Dispatch (C15)
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"sync"
	"testing"
)

// recordingTarget is a minimal Target used only to observe which records a
// dispatch call routes to it.
type recordingTarget struct {
	*baseTarget
	mu      sync.Mutex
	records []Record
}

func newRecordingTarget(id uint32, name string) *recordingTarget {
	return &recordingTarget{baseTarget: newBaseTarget(id, name)}
}

func (t *recordingTarget) Start() error { t.start(); return nil }
func (t *recordingTarget) Stop() error  { t.stop(); return nil }
func (t *recordingTarget) Log(r Record) {
	t.mu.Lock()
	t.records = append(t.records, r)
	t.mu.Unlock()
}
func (t *recordingTarget) WriteLogRecord(r Record) (int, error) { return 0, nil }
func (t *recordingTarget) Flush() error                         { return nil }

func (t *recordingTarget) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := newEngine()
	t.Cleanup(e.shutdown)
	return e
}

func TestDispatch_FansOutToAllMatchingTargets(t *testing.T) {
	e := newTestEngine(t)
	a := newRecordingTarget(10, "a")
	b := newRecordingTarget(11, "b")
	if err := e.AddTarget(a); err != nil {
		t.Fatalf("AddTarget(a): %v", err)
	}
	if err := e.AddTarget(b); err != nil {
		t.Fatalf("AddTarget(b): %v", err)
	}

	src := e.GetOrCreateSource("app.http")
	l := e.NewLogger("app.http", false)
	l.Info("hello")

	if a.count() != 1 || b.count() != 1 {
		t.Fatalf("expected both targets to receive one record, got a=%d b=%d", a.count(), b.count())
	}
	_ = src
}

func TestDispatch_AffinityRestrictsDelivery(t *testing.T) {
	e := newTestEngine(t)
	a := newRecordingTarget(10, "a")
	b := newRecordingTarget(11, "b")
	_ = e.AddTarget(a)
	_ = e.AddTarget(b)

	src := e.GetOrCreateSource("app.db")
	src.SetAffinity(1 << 10) // only target 10

	l := e.NewLogger("app.db", false)
	l.Info("query")

	if a.count() != 1 {
		t.Errorf("expected affine target to receive the record, got %d", a.count())
	}
	if b.count() != 0 {
		t.Errorf("expected non-affine target to receive nothing, got %d", b.count())
	}
}

func TestDispatch_PassKeyGatesDelivery(t *testing.T) {
	e := newTestEngine(t)
	gated := newRecordingTarget(10, "gated")
	gated.passKey = 42
	_ = e.AddTarget(gated)

	src := e.GetOrCreateSource("app.secrets")
	l := e.NewLogger("app.secrets", false)
	l.Info("no key yet")
	if gated.count() != 0 {
		t.Fatalf("expected no delivery before the source holds the pass-key, got %d", gated.count())
	}

	src.AddPassKey(42)
	l.Info("now with key")
	if gated.count() != 1 {
		t.Fatalf("expected delivery once the source holds the pass-key, got %d", gated.count())
	}
}

func TestDispatch_FallsBackToDefaultTargetWhenNothingMatches(t *testing.T) {
	e := newTestEngine(t)
	gated := newRecordingTarget(10, "gated")
	gated.passKey = 99
	_ = e.AddTarget(gated)

	defaultTarget := newRecordingTarget(0, "default")
	_ = defaultTarget.Start()
	e.defaultTarget = defaultTarget

	l := e.NewLogger("app.nobody", false)
	l.Info("orphan record")

	if gated.count() != 0 {
		t.Errorf("gated target should not have matched, got %d", gated.count())
	}
	if defaultTarget.count() != 1 {
		t.Errorf("expected the default target to receive the unmatched record, got %d", defaultTarget.count())
	}
}

func TestAddTarget_RejectsWhenFull(t *testing.T) {
	e := newTestEngine(t)
	for i := uint32(1); i <= maxTargets; i++ {
		if err := e.AddTarget(newRecordingTarget(i, "t")); err != nil {
			t.Fatalf("AddTarget #%d: unexpected error: %v", i, err)
		}
	}
	if err := e.AddTarget(newRecordingTarget(maxTargets+1, "overflow")); err == nil {
		t.Fatal("expected an error once the target array is full")
	}
}

func TestRemoveTarget(t *testing.T) {
	e := newTestEngine(t)
	a := newRecordingTarget(10, "a")
	_ = e.AddTarget(a)
	if !e.RemoveTarget(10) {
		t.Fatal("expected RemoveTarget to succeed")
	}
	if e.GetTarget(10) != nil {
		t.Error("expected the target to be gone after RemoveTarget")
	}
	if e.RemoveTarget(10) {
		t.Error("expected a second RemoveTarget on the same id to report false")
	}
}

func TestGetOrCreateSource_CreatesMissingAncestors(t *testing.T) {
	e := newTestEngine(t)
	s := e.GetOrCreateSource("app.http.handlers")
	if s.QualifiedName() != "app.http.handlers" {
		t.Fatalf("QualifiedName() = %q", s.QualifiedName())
	}
	if s.Parent() == nil || s.Parent().QualifiedName() != "app.http" {
		t.Fatalf("expected parent app.http, got %v", s.Parent())
	}
	if s.Parent().Parent() == nil || s.Parent().Parent().QualifiedName() != "app" {
		t.Fatalf("expected grandparent app, got %v", s.Parent().Parent())
	}

	again := e.GetOrCreateSource("app.http.handlers")
	if again != s {
		t.Error("expected GetOrCreateSource to return the same Source on a second call")
	}
}

func TestInitializeTerminate_Lifecycle(t *testing.T) {
	if IsInitialized() {
		t.Fatal("expected no engine initialized at test start")
	}
	e, err := Initialize()
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !IsInitialized() || Current() != e {
		t.Fatal("expected Current() to return the initialized engine")
	}
	if _, err := Initialize(); err == nil {
		t.Fatal("expected a double Initialize to fail")
	}
	Terminate()
	if IsInitialized() {
		t.Fatal("expected Terminate to clear the shared engine")
	}
	Terminate() // idempotent, must not panic
}
