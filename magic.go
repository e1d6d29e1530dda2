// magic.go: segmented file target construction that consults a registered
// Lethe capability provider (github.com/agilira/lethe imported alongside
// this package) for its buffer-size hint, and uses the engine default
// otherwise. Records are always written by the plain segmented target.
//
// Usage:
//
//	import (
//	    "github.com/agilira/elog"
//	    _ "github.com/agilira/lethe"
//	)
//
//	target, err := elog.NewMagicFileTarget(id, "app", "/var/log/app", elog.Info)
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"path/filepath"
	"strings"

	"github.com/agilira/elog/internal/lethe"
)

// NewMagicFileTarget creates a segmented file target at dir/logName. When a
// Lethe capability provider is registered (runtime capability detection via
// internal/lethe), the target's buffered-writer capacity follows the
// provider sink's size hint; records are still written by the ordinary
// SegmentedTarget, not through the provider's sink. Without a provider, or
// if the provider cannot serve the request, the default capacity is used.
func NewMagicFileTarget(id uint32, logName, dir string, level Level) (Target, error) {
	if err := validateLogDir(dir); err != nil {
		return nil, err
	}

	cfg := SegmentedTargetConfig{
		Dir:              dir,
		LogName:          logName,
		SegmentCapBytes:  100 * 1024 * 1024,
		MaxSegments:      5,
		BufferedCapacity: defaultBufferedWriterCapacity,
	}

	if lethe.HasLetheCapabilities() {
		if t, err := newMagicLetheTarget(id, logName, dir, level, cfg); err == nil {
			return t, nil
		}
		// Provider present but unable to satisfy this request: degrade to
		// the plain segmented target rather than fail the caller.
	}

	t, err := NewSegmentedTarget(id, cfg)
	if err != nil {
		return nil, err
	}
	t.level.SetLevel(level)
	return t, nil
}

// newMagicLetheTarget asks the registered Lethe provider for an optimized
// sink and, if it exposes the richer LetheWriter surface, builds a plain
// SegmentedTarget whose buffered-writer capacity is the sink's
// GetOptimalBufferSize instead of the engine default. The sink itself is
// not wrapped or written to.
func newMagicLetheTarget(id uint32, logName, dir string, level Level, cfg SegmentedTargetConfig) (Target, error) {
	provider, ok := lethe.GetLetheProvider()
	if !ok {
		return nil, newEngineError(ErrCodeInvalidState, "newMagicLetheTarget", "no lethe provider registered")
	}

	path := filepath.Join(dir, logName+".log")
	sink, err := provider.CreateOptimizedSink(path,
		"maxSize", "100MB",
		"maxBackups", cfg.MaxSegments,
		"compress", true,
		"hotReload", true,
	)
	if err != nil {
		return nil, wrapEngineError(err, ErrCodeIoError, "lethe provider failed to create sink")
	}

	letheWriter := lethe.DetectLetheCapabilities(sink)
	if letheWriter == nil {
		return nil, newEngineError(ErrCodeInvalidState, "newMagicLetheTarget", "lethe sink does not expose LetheWriter")
	}

	cfg.BufferedCapacity = letheWriter.GetOptimalBufferSize()
	t, err := NewSegmentedTarget(id, cfg)
	if err != nil {
		_ = letheWriter.Close()
		return nil, err
	}
	t.level.SetLevel(level)
	return t, nil
}

func validateLogDir(dir string) error {
	clean := filepath.Clean(dir)
	if strings.Contains(clean, "..") {
		return newEngineError(ErrCodeInvalidArgument, "validateLogDir", "path contains directory traversal: "+dir)
	}
	return nil
}
