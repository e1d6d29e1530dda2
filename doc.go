// Package elog provides a hierarchical, structured logging engine for Go
// services, built around a tree of named log sources, a dispatcher that
// fans each record out to a set of concurrently-running targets, and a
// segmented file target that rotates under sustained concurrent load
// without ever blocking a writer on disk I/O.
//
// # Key Features
//
//   - Severity ordered by descending ordinal (Fatal is the most severe,
//     Diag the least), with per-source level ceilings and four
//     propagation modes (none, loose, strict, force) down a source tree
//   - A concurrent multi-producer ring buffer feeding a bounded pending
//     queue during segment rotation, so writers never stall a rotation
//     in progress
//   - A registry dispatching each record to every target whose affinity
//     bitmask and pass-key accept the emitting source, falling back to a
//     default target when nothing else matches
//   - A pre-init buffer that captures records emitted before the first
//     real target is installed, replayed exactly once
//   - Hot configuration reload over an Argus file watch, and a
//     control-plane surface (ListSources, UpdateLevels, Reload) an
//     external operator tool can drive directly
//
// # Quick Start
//
//	engine, err := elog.Initialize()
//	if err != nil {
//		panic(err)
//	}
//	defer elog.Terminate()
//
//	logger := engine.NewLogger("app.http", true)
//	logger.Info("listening on %s", addr)
//
// # Configuration
//
// A Config can be built programmatically, parsed from JSON
// (LoadConfigFromJSON), loaded from environment variables
// (LoadConfigFromEnv), or watched for changes on disk (NewConfigWatcher):
//
//	cfg, err := elog.LoadConfigFromJSON("app.json")
//	if err != nil {
//		panic(err)
//	}
//	if err := cfg.Apply(engine); err != nil {
//		panic(err)
//	}
//
// # Targets
//
// Targets are addressed by a `scheme://type?key=value` URL grammar
// (sys://stdout, sys://stderr, sys://syslog, file://segmented?dir=...)
// resolved through internal/sinkreg, so an out-of-tree package can
// register its own scheme without modifying this module.
package elog
