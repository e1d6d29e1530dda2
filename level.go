// level.go: severity levels and level-propagation primitives for elog
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Level is the severity ordinal of a log record. Unlike most Go logging
// libraries, a LOWER ordinal is MORE severe: Fatal < Error < Warn < Notice <
// Info < Trace < Debug < Diag. A record is admitted when its ordinal is
// less than or equal to the ceiling configured on the source (canLog
// returns true iff level.ordinal <= source.currentLevel.ordinal).
type Level int32

// The eight levels of the engine, in ascending ordinal (descending
// severity) order.
const (
	Fatal Level = iota
	Error
	Warn
	Notice
	Info
	Trace
	Debug
	Diag

	// levelOff disables a source entirely: nothing is ever admitted. It is
	// one below the most severe real level so that canLog's <= comparison
	// naturally rejects everything once the ceiling is set this low.
	levelOff Level = Fatal - 1
)

var levelNames = [...]string{"fatal", "error", "warn", "notice", "info", "trace", "debug", "diag"}

var levelAliases = map[string]Level{
	"fatal": Fatal,
	"error": Error, "err": Error,
	"warn": Warn, "warning": Warn,
	"notice": Notice,
	"info":   Info,
	"trace":  Trace,
	"debug":  Debug,
	"diag":   Diag, "diagnostic": Diag,
	"off": levelOff, "none": levelOff,
}

// String returns the lower-case canonical name of the level.
func (l Level) String() string {
	if l >= Fatal && int(l) < len(levelNames) {
		return levelNames[l]
	}
	if l == levelOff {
		return "off"
	}
	return "unknown"
}

// ParseLevel parses a level name, case-insensitively, accepting the
// aliases "err"/"warning"/"diagnostic" and "off"/"none" for a disabled
// ceiling.
func ParseLevel(s string) (Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if lvl, ok := levelAliases[normalized]; ok {
		return lvl, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	str := l.String()
	if str == "unknown" {
		return nil, fmt.Errorf("cannot marshal unknown level %d", l)
	}
	return []byte(str), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return fmt.Errorf("failed to unmarshal level: %w", err)
	}
	*l = parsed
	return nil
}

// AllLevels returns every real (non-sentinel) level, in ascending ordinal
// order.
func AllLevels() []Level {
	return []Level{Fatal, Error, Warn, Notice, Info, Trace, Debug, Diag}
}

// AllLevelNames returns the canonical names of AllLevels.
func AllLevelNames() []string {
	names := make([]string, len(levelNames))
	copy(names, levelNames[:])
	return names
}

// IsValidLevel reports whether level is one of the eight defined levels.
func IsValidLevel(level Level) bool {
	return level >= Fatal && level <= Diag
}

// AtomicLevel provides lock-free load/store of a Level for a source's
// hot-path ceiling check and for publication under reload.
type AtomicLevel struct {
	v int32
}

// NewAtomicLevel creates an AtomicLevel initialized to level.
func NewAtomicLevel(level Level) *AtomicLevel {
	return &AtomicLevel{v: int32(level)}
}

// Level atomically loads the current ceiling.
func (al *AtomicLevel) Level() Level {
	return Level(atomic.LoadInt32(&al.v))
}

// SetLevel atomically stores a new ceiling.
func (al *AtomicLevel) SetLevel(level Level) {
	atomic.StoreInt32(&al.v, int32(level))
}

// Enabled reports canLog semantics against the current ceiling: level is
// enabled iff level.ordinal <= ceiling.ordinal.
func (al *AtomicLevel) Enabled(level Level) bool {
	return int32(level) <= atomic.LoadInt32(&al.v)
}

func (al *AtomicLevel) String() string { return al.Level().String() }

// MarshalText implements encoding.TextMarshaler.
func (al *AtomicLevel) MarshalText() ([]byte, error) { return al.Level().MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (al *AtomicLevel) UnmarshalText(b []byte) error {
	var level Level
	if err := level.UnmarshalText(b); err != nil {
		return err
	}
	al.SetLevel(level)
	return nil
}

// LevelFlag adapts a *Level to the flag.Value interface.
type LevelFlag struct {
	level *Level
}

// NewLevelFlag creates a LevelFlag bound to level.
func NewLevelFlag(level *Level) *LevelFlag {
	return &LevelFlag{level: level}
}

func (lf *LevelFlag) String() string {
	if lf.level == nil {
		return Info.String()
	}
	return lf.level.String()
}

// Set parses s and stores the result, satisfying flag.Value.
func (lf *LevelFlag) Set(s string) error {
	if lf.level == nil {
		return fmt.Errorf("cannot set level on nil LevelFlag")
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return fmt.Errorf("failed to set level flag: %w", err)
	}
	*lf.level = parsed
	return nil
}

// Type returns the flag value's type description for help text.
func (lf *LevelFlag) Type() string { return "level" }
