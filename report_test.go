// report_test.go: Tests for the Report Channel (C17)
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import "testing"

func TestReportChannel_RoutesThroughDispatch(t *testing.T) {
	e := newTestEngine(t)
	target := newRecordingTarget(10, "diag")
	if err := e.AddTarget(target); err != nil {
		t.Fatalf("AddTarget: %v", err)
	}

	e.Report().Warnf("disk at %d%%", 90)

	if target.count() != 1 {
		t.Fatalf("expected the warning to reach the target, got %d", target.count())
	}
	if string(target.records[0].Msg) != "disk at 90%" {
		t.Errorf("Msg = %q, want %q", target.records[0].Msg, "disk at 90%")
	}
	if target.records[0].Level != Warn {
		t.Errorf("Level = %v, want Warn", target.records[0].Level)
	}
}

func TestReportChannel_RespectsSourceLevel(t *testing.T) {
	e := newTestEngine(t)
	target := newRecordingTarget(10, "diag")
	_ = e.AddTarget(target)

	e.GetOrCreateSource(reportSourceName).setLevel(Error, PropagateNone)
	e.Report().Warnf("should be suppressed")

	if target.count() != 0 {
		t.Fatalf("expected a Warn report to be suppressed at Error ceiling, got %d deliveries", target.count())
	}

	e.Report().Errorf("should pass")
	if target.count() != 1 {
		t.Fatalf("expected the Error report to be delivered, got %d", target.count())
	}
}

func TestReportChannel_NilEngineFallsBackWithoutPanic(t *testing.T) {
	r := &ReportChannel{}
	r.Warnf("no engine attached")
}
