// control_test.go: Tests for the Control-Plane Hooks (C18)
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"regexp"
	"testing"
)

func TestListSources_FiltersByIncludeExclude(t *testing.T) {
	e := newTestEngine(t)
	e.GetOrCreateSource("app.http")
	e.GetOrCreateSource("app.db")
	e.GetOrCreateSource("infra.metrics")

	rows := e.ListSources(regexp.MustCompile(`^app\.`), nil)
	names := map[string]bool{}
	for _, r := range rows {
		names[r.QName] = true
	}
	if !names["app.http"] || !names["app.db"] {
		t.Fatalf("expected app.http and app.db in %v", names)
	}
	if names["infra.metrics"] {
		t.Fatalf("did not expect infra.metrics in %v", names)
	}

	rows = e.ListSources(regexp.MustCompile(`^app\.`), regexp.MustCompile(`db`))
	names = map[string]bool{}
	for _, r := range rows {
		names[r.QName] = true
	}
	if !names["app.http"] || names["app.db"] {
		t.Fatalf("expected only app.http after excluding 'db', got %v", names)
	}
}

func TestUpdateLevels_AppliesInOrder(t *testing.T) {
	e := newTestEngine(t)
	e.GetOrCreateSource("app.http")

	result := e.UpdateLevels([]LevelUpdate{
		{QName: "app", Level: Error, Propagate: PropagateStrict},
		{QName: "app.http", Level: Debug, Propagate: PropagateNone},
	}, Level(-1))
	if !result.OK {
		t.Fatalf("UpdateLevels: %+v", result)
	}

	if got := e.GetOrCreateSource("app.http").Level(); got != Debug {
		t.Fatalf("app.http level = %v, want Debug (the later explicit update must win)", got)
	}
	if got := e.GetOrCreateSource("app").Level(); got != Error {
		t.Fatalf("app level = %v, want Error", got)
	}
}

func TestUpdateLevels_ReportLevelSentinelSkipsUpdate(t *testing.T) {
	e := newTestEngine(t)
	before := e.GetOrCreateSource(reportSourceName).Level()

	e.UpdateLevels(nil, Level(-1))

	if got := e.GetOrCreateSource(reportSourceName).Level(); got != before {
		t.Fatalf("report level changed from %v to %v despite the sentinel", before, got)
	}

	e.UpdateLevels(nil, Debug)
	if got := e.GetOrCreateSource(reportSourceName).Level(); got != Debug {
		t.Fatalf("report level = %v, want Debug", got)
	}
}

func TestReload_NilSnapshotFails(t *testing.T) {
	e := newTestEngine(t)
	result := e.Reload(nil)
	if result.OK {
		t.Fatal("expected Reload(nil) to fail")
	}
}

func TestReload_AppliesConfig(t *testing.T) {
	e := newTestEngine(t)
	cfg := DefaultConfig()
	cfg.RootLevel = Debug

	result := e.Reload(cfg)
	if !result.OK {
		t.Fatalf("Reload: %+v", result)
	}
	if got := e.Root().Level(); got != Debug {
		t.Fatalf("root level = %v, want Debug", got)
	}
}
