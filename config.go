// config.go: semantic configuration object produced from a parsed
// configuration file/string/environment.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SourceConfig is one `<qname>.*` configuration entry.
type SourceConfig struct {
	QName     string
	Level     Level
	Propagate PropagateMode
	Affinity  []uint32
}

// TargetConfig is one `log_target` entry, either an inline URL string or a
// decomposed scheme/type/key-value map, normalized to the same shape the
// target URL grammar parses.
type TargetConfig struct {
	Scheme string
	Type   string
	Query  url.Values
}

// RateLimitConfig is a parsed `log_rate_limit` spec ("maxMsg:timeout:units").
type RateLimitConfig struct {
	MaxMessages int64
	Timeout     time.Duration
}

// Config is the semantic configuration object a parser (JSON, env, or the
// external configuration service) must produce.
type Config struct {
	RootLevel     Level
	RootPropagate PropagateMode

	Sources []SourceConfig

	Format    string
	FilterSpec string

	RateLimit *RateLimitConfig

	Targets []TargetConfig

	ReportLevel Level
}

// DefaultConfig returns a Config with the engine's baseline defaults: root
// at Info, no targets (the registry's stderr default target applies), no
// rate limit, report channel at Warn.
func DefaultConfig() *Config {
	return &Config{
		RootLevel:     Info,
		RootPropagate: PropagateNone,
		ReportLevel:   Warn,
	}
}

// ParsePropagatedLevel parses a `log_level`-style value carrying an
// optional propagation suffix: "info", "info+:strict", "info+:force",
// "info+:loose".
func ParsePropagatedLevel(raw string) (Level, PropagateMode, error) {
	levelPart := raw
	mode := PropagateNone
	if idx := strings.Index(raw, "+:"); idx >= 0 {
		levelPart = raw[:idx]
		switch raw[idx+2:] {
		case "loose":
			mode = PropagateLoose
		case "strict":
			mode = PropagateStrict
		case "force":
			mode = PropagateForce
		default:
			return 0, 0, newEngineError(ErrCodeInvalidArgument, "ParsePropagatedLevel",
				fmt.Sprintf("unknown propagation mode %q", raw[idx+2:]))
		}
	}
	lvl, err := ParseLevel(levelPart)
	if err != nil {
		return 0, 0, wrapEngineError(err, ErrCodeInvalidArgument, "invalid level in log_level")
	}
	return lvl, mode, nil
}

// ParseRateLimitSpec parses "maxMsg:timeout:units" (units one of ms, s, m).
func ParseRateLimitSpec(spec string) (*RateLimitConfig, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return nil, newEngineError(ErrCodeInvalidArgument, "ParseRateLimitSpec",
			fmt.Sprintf("expected maxMsg:timeout:units, got %q", spec))
	}
	maxMsg, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, wrapEngineError(err, ErrCodeInvalidArgument, "invalid maxMsg in rate limit spec")
	}
	timeoutVal, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, wrapEngineError(err, ErrCodeInvalidArgument, "invalid timeout in rate limit spec")
	}
	var unit time.Duration
	switch parts[2] {
	case "ms":
		unit = time.Millisecond
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	default:
		return nil, newEngineError(ErrCodeInvalidArgument, "ParseRateLimitSpec",
			fmt.Sprintf("unknown time unit %q", parts[2]))
	}
	return &RateLimitConfig{MaxMessages: maxMsg, Timeout: time.Duration(timeoutVal) * unit}, nil
}

// ParseTargetURL parses the `scheme://type?key=value&...` target URL
// grammar into a TargetConfig, without yet constructing the target
// (construction happens through internal/sinkreg so unknown schemes fail
// independently of parsing).
func ParseTargetURL(raw string) (TargetConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return TargetConfig{}, wrapEngineError(err, ErrCodeInvalidArgument, "invalid target URL")
	}
	typ := u.Host
	if typ == "" {
		typ = strings.TrimPrefix(u.Path, "/")
	}
	return TargetConfig{Scheme: u.Scheme, Type: typ, Query: u.Query()}, nil
}

// Apply installs these settings of c against engine: root level/propagation,
// per-source levels/affinity, the report level, and every configured
// target (constructed through internal/sinkreg; unrecognized schemes are
// reported through the Report Channel and skipped rather than failing the
// whole Apply, a "properties not recognized are ignored with a warning"
// posture applied to unrecognized schemes). It does not apply c.Format,
// c.FilterSpec or c.RateLimit: Apply never reads those fields, so no
// formatter, filter or rate limiter is installed from them. A built target
// whose name is already registered is stopped and not added again, so a
// repeated Apply leaves the running targets in place.
func (c *Config) Apply(engine *Engine) error {
	engine.Root().setLevel(c.RootLevel, c.RootPropagate)

	for _, sc := range c.Sources {
		src := engine.GetOrCreateSource(sc.QName)
		src.setLevel(sc.Level, sc.Propagate)
		if len(sc.Affinity) > 0 {
			var mask uint64
			for _, id := range sc.Affinity {
				if id < maxAffinityTargets {
					mask |= 1 << id
				}
			}
			src.SetAffinity(mask)
		}
	}

	if reportSrc := engine.GetOrCreateSource(reportSourceName); reportSrc != nil {
		reportSrc.setLevel(c.ReportLevel, PropagateNone)
	}

	for _, tc := range c.Targets {
		t, err := BuildTarget(tc)
		if err != nil {
			engine.Report().Warnf("skipping target %s://%s: %v", tc.Scheme, tc.Type, err)
			continue
		}
		if engine.GetTargetByName(t.GetName()) != nil {
			_ = t.Stop()
			continue
		}
		if err := engine.AddTarget(t); err != nil {
			engine.Report().Warnf("failed to add target %s://%s: %v", tc.Scheme, tc.Type, err)
		}
	}
	return nil
}
