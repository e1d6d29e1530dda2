// targetfactory_test.go: Tests for the target URL grammar wiring onto
// concrete Target constructors.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import "testing"

func TestBuildTarget_SysStdoutAndStderr(t *testing.T) {
	for _, typ := range []string{"stdout", "stderr"} {
		tc, err := ParseTargetURL("sys:///" + typ)
		if err != nil {
			t.Fatalf("ParseTargetURL(%s): %v", typ, err)
		}
		target, err := BuildTarget(tc)
		if err != nil {
			t.Fatalf("BuildTarget(%s): %v", typ, err)
		}
		if target == nil {
			t.Fatalf("BuildTarget(%s) returned a nil target", typ)
		}
	}
}

func TestBuildTarget_SysUnknownTypeFails(t *testing.T) {
	tc, err := ParseTargetURL("sys:///bogus")
	if err != nil {
		t.Fatalf("ParseTargetURL: %v", err)
	}
	if _, err := BuildTarget(tc); err == nil {
		t.Fatal("expected an unknown sys target type to fail")
	}
}

func TestBuildTarget_FileSegmentedUsesQueryParameters(t *testing.T) {
	dir := t.TempDir()
	tc, err := ParseTargetURL("file://segmented?dir=" + dir + "&cap=1024&max_segments=4")
	if err != nil {
		t.Fatalf("ParseTargetURL: %v", err)
	}
	target, err := BuildTarget(tc)
	if err != nil {
		t.Fatalf("BuildTarget: %v", err)
	}
	seg, ok := target.(*SegmentedTarget)
	if !ok {
		t.Fatalf("expected a *SegmentedTarget, got %T", target)
	}
	if seg.segmentCap != 1024 {
		t.Errorf("segmentCap = %d, want 1024", seg.segmentCap)
	}
	if seg.maxSegments != 4 {
		t.Errorf("maxSegments = %d, want 4", seg.maxSegments)
	}
	_ = seg.Stop()
}

func TestBuildTarget_UnregisteredSchemeFails(t *testing.T) {
	tc := TargetConfig{Scheme: "nope", Type: "widget"}
	if _, err := BuildTarget(tc); err == nil {
		t.Fatal("expected an unregistered scheme to fail")
	}
}

func TestParseQueryInt_FallsBackOnMissingOrInvalid(t *testing.T) {
	tc, _ := ParseTargetURL("file://segmented?cap=not-a-number")
	if parseQueryInt(tc.Query, "cap", 42) != 42 {
		t.Fatal("expected parseQueryInt to fall back to the default on an invalid value")
	}
	if parseQueryInt(tc.Query, "missing", 7) != 7 {
		t.Fatal("expected parseQueryInt to fall back to the default when the key is absent")
	}
}
