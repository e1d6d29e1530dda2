// targetfactory.go: wires the target URL grammar onto concrete
// Target constructors, registering each scheme/type combination the core
// ships with against internal/sinkreg so a future out-of-tree sink package
// only needs to call sinkreg.RegisterTargetFactory for its own scheme.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"net/url"
	"strconv"

	"github.com/agilira/elog/internal/sinkreg"
)

var nextBuiltinTargetID uint32 = 1

func allocateTargetID() uint32 {
	id := nextBuiltinTargetID
	nextBuiltinTargetID++
	return id
}

func init() {
	sinkreg.RegisterTargetFactory("sys", buildSysTarget)
	sinkreg.RegisterTargetFactory("file", buildFileTarget)
}

func buildSysTarget(typ string, _ url.Values) (interface{}, error) {
	switch typ {
	case "stdout":
		return NewStdoutTarget(allocateTargetID()), nil
	case "stderr":
		return NewStderrTarget(allocateTargetID()), nil
	case "syslog":
		return NewSyslogTarget(allocateTargetID(), "elog")
	default:
		return nil, newEngineError(ErrCodeInvalidArgument, "buildSysTarget", "unknown sys target type: "+typ)
	}
}

// buildFileTarget builds a rotating segmented-file target for every type:
// typ is used as the log name ("elog" when empty), so "file://segmented"
// writes segmented.<NNNNNN>.log files. There is no non-rotating
// single-file target. Query parameters: dir (default "."), cap (bytes,
// default 64 MiB), max_segments, buffer (bytes), ring (pending capacity).
func buildFileTarget(typ string, q url.Values) (interface{}, error) {
	dir := q.Get("dir")
	if dir == "" {
		dir = "."
	}
	name := typ
	if name == "" {
		name = "elog"
	}
	capBytes := parseQueryInt(q, "cap", 64*1024*1024)
	maxSegments := int(parseQueryInt(q, "max_segments", 0))
	bufCap := int(parseQueryInt(q, "buffer", defaultBufferedWriterCapacity))
	ringCap := int(parseQueryInt(q, "ring", defaultPendingRingCapacity))

	return NewSegmentedTarget(allocateTargetID(), SegmentedTargetConfig{
		Dir:              dir,
		LogName:          name,
		SegmentCapBytes:  capBytes,
		MaxSegments:      maxSegments,
		PendingRingCap:   ringCap,
		BufferedCapacity: bufCap,
	})
}

func parseQueryInt(q url.Values, key string, def int64) int64 {
	v := q.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// BuildTarget constructs a concrete Target from tc by dispatching through
// internal/sinkreg. Schemes registered by an out-of-tree sink package
// (a future elogkafka, elogpg, ...) are reached exactly the same way.
func BuildTarget(tc TargetConfig) (Target, error) {
	q := tc.Query
	raw := tc.Scheme + "://" + tc.Type
	if encoded := q.Encode(); encoded != "" {
		raw += "?" + encoded
	}
	built, err := sinkreg.NewTargetFromURL(raw)
	if err != nil {
		return nil, err
	}
	t, ok := built.(Target)
	if !ok {
		return nil, newEngineError(ErrCodeInvalidState, "BuildTarget", "factory for scheme "+tc.Scheme+" did not return a Target")
	}
	return t, nil
}
