// registry.go: Registry & Dispatch (C15) — the global target array, source
// tree root, and the fan-out dispatch algorithm every Logger ultimately
// calls into.
//
// addTarget/removeTarget/getTarget/clearAll generalize a flat writer-
// registration surface to target slots gated by affinity and pass-key
// rather than a flat multi-writer fan-out.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"sync"
	"sync/atomic"
)

// maxTargets is the hard cap on registered target slots.
const maxTargets = 256

// Engine is the process-wide dispatcher: the bounded target array, the
// source tree root, the global filter, the pre-init buffer, and the report
// channel all live here. Initialize constructs the single shared instance;
// most applications never construct an Engine directly.
type Engine struct {
	mu        sync.RWMutex
	targets   [maxTargets]Target
	targetSet map[uint32]int // id -> slot index, for O(1) getTarget/removeTarget by id
	byName    map[string]uint32
	nextID    uint32

	defaultTarget Target

	globalFilter atomic.Pointer[Filter]

	root *Source
	next uint32 // next source id

	sourcesMu sync.Mutex
	byQName   map[string]*Source
	byID      map[uint32]*Source

	report *ReportChannel

	preInit      *preInitBuffer
	everInstalled int32 // set once the first non-default target is added
}

var (
	globalEngine   *Engine
	globalEngineMu sync.Mutex
)

// Initialize constructs the shared Engine with a stderr default target and
// an "elog" report source. It returns an error if already initialized
//.
func Initialize() (*Engine, error) {
	globalEngineMu.Lock()
	defer globalEngineMu.Unlock()
	if globalEngine != nil {
		return nil, newEngineError(ErrCodeInvalidState, "Initialize", "engine already initialized")
	}
	e := newEngine()
	globalEngine = e
	return e, nil
}

// Terminate tears down the shared Engine, stopping every registered target.
// Calling it when no engine is initialized is a silent no-op, not an
// error.
func Terminate() {
	globalEngineMu.Lock()
	e := globalEngine
	globalEngine = nil
	globalEngineMu.Unlock()
	if e == nil {
		return
	}
	e.shutdown()
}

// IsInitialized reports whether the shared Engine is live.
func IsInitialized() bool {
	globalEngineMu.Lock()
	defer globalEngineMu.Unlock()
	return globalEngine != nil
}

// Current returns the shared Engine, or nil if not initialized.
func Current() *Engine {
	globalEngineMu.Lock()
	defer globalEngineMu.Unlock()
	return globalEngine
}

func newEngine() *Engine {
	e := &Engine{
		targetSet: make(map[uint32]int),
		byName:    make(map[string]uint32),
		byQName:   make(map[string]*Source),
		byID:      make(map[uint32]*Source),
		preInit:   newPreInitBuffer(defaultPreInitCapacity),
	}
	e.root = e.newSource(nil, "root", "root")
	e.byID[e.root.id] = e.root
	reportSrc := e.defineSource("", reportSourceName)
	reportSrc.level.SetLevel(Warn)
	e.report = newReportChannel(e, reportSrc)
	e.defaultTarget = NewStderrTarget(0)
	_ = e.defaultTarget.Start()
	return e
}

func (e *Engine) shutdown() {
	e.mu.Lock()
	targets := make([]Target, 0, len(e.targetSet))
	for _, idx := range e.targetSet {
		if t := e.targets[idx]; t != nil {
			targets = append(targets, t)
		}
	}
	e.mu.Unlock()
	for _, t := range targets {
		_ = t.Stop()
	}
	if e.defaultTarget != nil {
		_ = e.defaultTarget.Stop()
	}
	e.preInit.discard()
}

func (e *Engine) newSource(parent *Source, name, qname string) *Source {
	s := &Source{
		id:       atomic.AddUint32(&e.next, 1) - 1,
		name:     name,
		qname:    qname,
		level:    NewAtomicLevel(Info),
		affinity: ^uint64(0), // default: affine to every target (original_source's ELOG_ALL_TARGET_AFFINITY_MASK)
	}
	s.applyEnvOverride()
	return s
}

// defineSource returns the existing source at qname's path, creating any
// missing ancestors along the way.
// parentQName is the qualified name of the direct parent ("" for a
// top-level source under root).
func (e *Engine) defineSource(parentQName, name string) *Source {
	qname := name
	if parentQName != "" {
		qname = parentQName + "." + name
	}
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()
	if existing, ok := e.byQName[qname]; ok {
		return existing
	}
	parent := e.root
	if parentQName != "" {
		if p, ok := e.byQName[parentQName]; ok {
			parent = p
		}
	}
	s := e.newSource(parent, name, qname)
	parent.AddChild(s)
	e.byQName[qname] = s
	e.byID[s.id] = s
	return s
}

// GetOrCreateSource resolves a dot-separated qualified name to a Source,
// creating any missing ancestors.
func (e *Engine) GetOrCreateSource(qname string) *Source {
	if qname == "" {
		return e.root
	}
	e.sourcesMu.Lock()
	if s, ok := e.byQName[qname]; ok {
		e.sourcesMu.Unlock()
		return s
	}
	e.sourcesMu.Unlock()

	parent := ""
	var s *Source
	start := 0
	for i := 0; i <= len(qname); i++ {
		if i == len(qname) || qname[i] == '.' {
			name := qname[start:i]
			s = e.defineSource(parent, name)
			if parent == "" {
				parent = name
			} else {
				parent = parent + "." + name
			}
			start = i + 1
		}
	}
	return s
}

// NewLogger returns a Logger bound to the named source, creating the
// source if needed. shared=true permits concurrent use from many
// goroutines; shared=false is cheaper but single-goroutine only.
func (e *Engine) NewLogger(qname string, shared bool) *Logger {
	src := e.GetOrCreateSource(qname)
	return newLogger(src, shared, e)
}

// Report returns the engine's diagnostic channel.
func (e *Engine) Report() *ReportChannel { return e.report }

// Root returns the tree root source.
func (e *Engine) Root() *Source { return e.root }

// SetGlobalFilter installs or clears (nil) the filter consulted before
// every dispatch.
func (e *Engine) SetGlobalFilter(f Filter) {
	if f == nil {
		e.globalFilter.Store(nil)
		return
	}
	e.globalFilter.Store(&f)
}

// AddTarget registers t under its own id (t.GetID()) and name, and starts
// it. Fails if the registry is full.
func (e *Engine) AddTarget(t Target) error {
	e.mu.Lock()
	if len(e.targetSet) >= maxTargets {
		e.mu.Unlock()
		return newEngineError(ErrCodeResourceExhausted, "AddTarget", "target array is full")
	}
	slot := -1
	for i, existing := range e.targets {
		if existing == nil {
			slot = i
			break
		}
	}
	if slot == -1 {
		e.mu.Unlock()
		return newEngineError(ErrCodeResourceExhausted, "AddTarget", "no free target slot")
	}
	e.targets[slot] = t
	e.targetSet[t.GetID()] = slot
	e.byName[t.GetName()] = t.GetID()
	e.mu.Unlock()

	if err := t.Start(); err != nil {
		return wrapEngineError(err, ErrCodeInvalidState, "target Start failed")
	}

	if atomic.CompareAndSwapInt32(&e.everInstalled, 0, 1) {
		for _, r := range e.preInit.drain() {
			e.dispatchTo(t, r)
		}
	}
	return nil
}

// RemoveTarget detaches and stops the target with the given id. Returns
// false if no such target is registered.
func (e *Engine) RemoveTarget(id uint32) bool {
	e.mu.Lock()
	slot, ok := e.targetSet[id]
	if !ok {
		e.mu.Unlock()
		return false
	}
	t := e.targets[slot]
	delete(e.targetSet, id)
	delete(e.byName, t.GetName())
	e.targets[slot] = nil
	e.mu.Unlock()
	_ = t.Stop()
	return true
}

// RemoveTargetByName is RemoveTarget keyed by name.
func (e *Engine) RemoveTargetByName(name string) bool {
	e.mu.RLock()
	id, ok := e.byName[name]
	e.mu.RUnlock()
	if !ok {
		return false
	}
	return e.RemoveTarget(id)
}

// GetTarget returns the target registered under id, or nil.
func (e *Engine) GetTarget(id uint32) Target {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if slot, ok := e.targetSet[id]; ok {
		return e.targets[slot]
	}
	return nil
}

// GetTargetByName returns the target registered under name, or nil.
func (e *Engine) GetTargetByName(name string) Target {
	e.mu.RLock()
	id, ok := e.byName[name]
	e.mu.RUnlock()
	if !ok {
		return nil
	}
	return e.GetTarget(id)
}

// ClearAll stops and removes every target in the target array. The default
// target is held outside the array and is not affected.
func (e *Engine) ClearAll() {
	e.mu.Lock()
	ids := make([]uint32, 0, len(e.targetSet))
	for id := range e.targetSet {
		ids = append(ids, id)
	}
	e.mu.Unlock()
	for _, id := range ids {
		e.RemoveTarget(id)
	}
}

// dispatch runs the full fan-out algorithm for record r.
func (e *Engine) dispatch(r Record) {
	if f := e.globalFilter.Load(); f != nil && !(*f).Admit(r) {
		return
	}

	src := e.sourceByID(r.SourceID)

	if atomic.LoadInt32(&e.everInstalled) == 0 {
		e.preInit.push(r.Clone())
		return
	}

	e.mu.RLock()
	snapshot := e.targets
	e.mu.RUnlock()

	dispatched := false
	for _, t := range snapshot {
		if t == nil {
			continue
		}
		if id := t.GetID(); id <= 63 && src != nil && !src.HasAffinity(id) {
			continue
		}
		if pk := t.GetPassKey(); pk != 0 && (src == nil || !src.HasPassKey(pk)) {
			continue
		}
		t.Log(r)
		dispatched = true
	}
	if !dispatched && e.defaultTarget != nil {
		e.defaultTarget.Log(r)
	}
}

func (e *Engine) dispatchTo(t Target, r Record) {
	src := e.sourceByID(r.SourceID)
	if src != nil {
		if t.GetID() <= 63 && !src.HasAffinity(t.GetID()) {
			return
		}
		if pk := t.GetPassKey(); pk != 0 && !src.HasPassKey(pk) {
			return
		}
	}
	t.Log(r)
}

func (e *Engine) sourceByID(id uint32) *Source {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()
	return e.byID[id]
}
