// Package sinkreg is a scheme-keyed target-factory registry, generalizing
// the capability-detection idiom of the sibling internal/lethe package
// (DetectLetheCapabilities/IsLetheWriter) from a single optional writer
// type into an open set of target URL schemes.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package sinkreg

import (
	"fmt"
	"net/url"
	"sync"
)

// TargetFactory builds a sink from a parsed target URL. typ is the "type"
// path segment (e.g. "stdout" in sys://stdout); query carries the
// remaining key=value pairs.
type TargetFactory func(typ string, query url.Values) (interface{}, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]TargetFactory)
)

// RegisterTargetFactory registers fn as the builder for scheme. Re-registering
// the same scheme overwrites the previous factory, a permissive posture that
// suits optional capability providers registering themselves at init time.
func RegisterTargetFactory(scheme string, fn TargetFactory) {
	mu.Lock()
	factories[scheme] = fn
	mu.Unlock()
}

// NewTargetFromURL parses rawURL as scheme://type?key=value&... and
// dispatches to the registered factory for scheme.
func NewTargetFromURL(rawURL string) (interface{}, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("sinkreg: invalid target URL %q: %w", rawURL, err)
	}
	mu.RLock()
	fn, ok := factories[u.Scheme]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("sinkreg: no factory registered for scheme %q", u.Scheme)
	}
	typ := u.Host
	if typ == "" {
		typ = trimLeadingSlash(u.Path)
	}
	return fn(typ, u.Query())
}

func trimLeadingSlash(p string) string {
	if len(p) > 0 && p[0] == '/' {
		return p[1:]
	}
	return p
}

// Registered reports whether scheme has a factory installed.
func Registered(scheme string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := factories[scheme]
	return ok
}
