// control.go: Control-Plane Hooks (C18) — the API surface an external
// configuration/service-discovery collaborator drives.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import "regexp"

// SourceLevel is one entry of ListSources's result.
type SourceLevel struct {
	QName string
	Level Level
}

// ListSources returns every defined source whose qualified name matches
// include and does not match exclude (either may be nil to mean
// "unconstrained").
func (e *Engine) ListSources(include, exclude *regexp.Regexp) []SourceLevel {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	out := make([]SourceLevel, 0, len(e.byQName))
	for qname, src := range e.byQName {
		if include != nil && !include.MatchString(qname) {
			continue
		}
		if exclude != nil && exclude.MatchString(qname) {
			continue
		}
		out = append(out, SourceLevel{QName: qname, Level: src.Level()})
	}
	return out
}

// LevelUpdate is one entry of an UpdateLevels call.
type LevelUpdate struct {
	QName     string
	Level     Level
	Propagate PropagateMode
}

// UpdateLevelsResult is UpdateLevels's and Reload's return shape.
type UpdateLevelsResult struct {
	OK      bool
	Message string
}

// UpdateLevels applies each entry of updates in order, so that a later
// explicit descendant setting is never clobbered by an earlier ancestor's
// propagation. Also sets the report source's level when reportLevel is a
// real level (Fatal..Diag); any other value, such as a negative Level,
// leaves the report level unchanged.
func (e *Engine) UpdateLevels(updates []LevelUpdate, reportLevel Level) UpdateLevelsResult {
	for _, u := range updates {
		src := e.GetOrCreateSource(u.QName)
		src.setLevel(u.Level, u.Propagate)
	}
	if reportLevel >= Fatal && reportLevel <= Diag {
		if reportSrc := e.GetOrCreateSource(reportSourceName); reportSrc != nil {
			reportSrc.setLevel(reportLevel, PropagateNone)
		}
	}
	return UpdateLevelsResult{OK: true}
}

// Reload applies a full configuration snapshot idempotently: existing
// targets are left running, new ones from snapshot are added, and levels
// are (re)applied.
func (e *Engine) Reload(snapshot *Config) UpdateLevelsResult {
	if snapshot == nil {
		return UpdateLevelsResult{OK: false, Message: "nil configuration snapshot"}
	}
	if err := snapshot.Apply(e); err != nil {
		return UpdateLevelsResult{OK: false, Message: err.Error()}
	}
	return UpdateLevelsResult{OK: true}
}
