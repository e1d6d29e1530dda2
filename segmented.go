// segmented.go: Segmented File Target (C14) — a lock-free, multi-writer
// append sink that rotates into a new file once a segment reaches a byte
// cap.
//
// Rotation swaps an atomic current-segment pointer held in this file
// (internal/lethe is not used here), with the pending-message queue
// supplied by internal/ring and per-segment buffering by bufferedwriter.go.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/agilira/elog/internal/bufferpool"
	"github.com/agilira/elog/internal/ring"
)

const defaultPendingRingCapacity = 4096

// segment is one rotation-generation file of a SegmentedTarget.
type segment struct {
	id      uint32
	file    *os.File
	bw      *bufferedFileWriter // nil when the target is configured unbuffered
	pending *ring.Ring

	bytesLogged int64 // atomic fetch-add counter, compared against the cap
	inflight    int64 // atomic count of writers currently inside this segment's write path
	closed      int32
}

func (s *segment) write(p []byte) (int, error) {
	if s.bw != nil {
		return s.bw.Write(p)
	}
	return writeFull(s.file, p)
}

func (s *segment) flush() error {
	if s.bw != nil {
		return s.bw.Flush()
	}
	return s.file.Sync()
}

func (s *segment) close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	if s.bw != nil {
		return s.bw.Close()
	}
	return s.file.Close()
}

// SegmentedTarget implements Target, rotating its output across a bounded
// (or unbounded) sequence of numbered files once each reaches segmentCap
// bytes.
type SegmentedTarget struct {
	*baseTarget

	dir     string
	logName string

	segmentCap  int64
	maxSegments int // 0 = unlimited
	ringCap     int
	bufCapacity int // 0 = unbuffered

	current atomic.Pointer[segment]
	epoch   int64 // atomic; bumped once per rotation

	segmentStats segmentedStats
}

type segmentedStats struct {
	rotations     int64
	pendingWrites int64
	openFailures  int64
	closeFailures int64
	removeFailures int64
}

// SegmentedTargetConfig configures NewSegmentedTarget.
type SegmentedTargetConfig struct {
	Dir              string
	LogName          string
	SegmentCapBytes  int64
	MaxSegments      int // 0 = unlimited ring
	PendingRingCap   int // must be a power of two; 0 picks the default
	BufferedCapacity int // 0 disables per-segment buffering
}

var segmentFilePattern = regexp.MustCompile(`^(.+)\.(\d+)\.log$`)

// NewSegmentedTarget creates a segmented file target writing into cfg.Dir.
// On construction it scans the directory for existing segment files
// matching the naming pattern and resumes from the highest id found; any
// other file in the directory is left untouched but causes construction to
// fail fast's open-question resolution: an operator
// pointing the target at a shared or dirty directory should be told
// immediately rather than have the scan silently skip unrelated files).
func NewSegmentedTarget(id uint32, cfg SegmentedTargetConfig) (*SegmentedTarget, error) {
	ringCap := cfg.PendingRingCap
	if ringCap == 0 {
		ringCap = defaultPendingRingCapacity
	}
	t := &SegmentedTarget{
		baseTarget:  newBaseTarget(id, cfg.LogName),
		dir:         cfg.Dir,
		logName:     cfg.LogName,
		segmentCap:  cfg.SegmentCapBytes,
		maxSegments: cfg.MaxSegments,
		ringCap:     ringCap,
		bufCapacity: cfg.BufferedCapacity,
	}

	resumeID, resumeSize, err := t.scanDirectory()
	if err != nil {
		return nil, err
	}

	seg, err := t.openSegment(resumeID, resumeSize > 0)
	if err != nil {
		return nil, wrapEngineError(err, ErrCodeIoError, "failed to open initial segment")
	}
	t.current.Store(seg)

	if resumeSize >= t.segmentCap && t.segmentCap > 0 {
		// The resumed segment is already at or beyond capacity: force
		// rotation on the very next write rather than waiting for a
		// fetch-add to discover it.
		atomic.StoreInt64(&seg.bytesLogged, t.segmentCap)
	} else {
		atomic.StoreInt64(&seg.bytesLogged, resumeSize)
	}
	return t, nil
}

// paddingWidth returns the zero-padding width for segment ids: derived from
// maxSegments, or 6 digits when unbounded.
func (t *SegmentedTarget) paddingWidth() int {
	if t.maxSegments <= 0 {
		return 6
	}
	width := len(strconv.Itoa(t.maxSegments))
	if width < 1 {
		width = 1
	}
	return width
}

func (t *SegmentedTarget) segmentPath(id uint32) string {
	name := fmt.Sprintf("%s.%0*d.log", t.logName, t.paddingWidth(), id)
	return filepath.Join(t.dir, name)
}

// scanDirectory identifies existing segment files by name pattern and
// returns the highest id found (and that file's current size), or (0, 0,
// nil) if none exist. Any entry in the directory that looks like a file
// but does not match <logName>.<digits>.log is treated as a fatal
// misconfiguration (see NewSegmentedTarget's doc comment).
func (t *SegmentedTarget) scanDirectory() (highestID uint32, size int64, err error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(t.dir, 0o755); mkErr != nil {
				return 0, 0, wrapEngineError(mkErr, ErrCodeIoError, "failed to create segment directory")
			}
			return 0, 0, nil
		}
		return 0, 0, wrapEngineError(err, ErrCodeIoError, "failed to scan segment directory")
	}

	found := false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := segmentFilePattern.FindStringSubmatch(e.Name())
		if m == nil || m[1] != t.logName {
			return 0, 0, newEngineError(ErrCodeInvalidState, "scanDirectory",
				fmt.Sprintf("segment directory %q contains unrelated entry %q", t.dir, e.Name()))
		}
		id64, convErr := strconv.ParseUint(m[2], 10, 32)
		if convErr != nil {
			continue
		}
		id := uint32(id64)
		if !found || id > highestID {
			highestID = id
			found = true
		}
	}
	if !found {
		return 0, 0, nil
	}
	info, statErr := os.Stat(t.segmentPath(highestID))
	if statErr != nil {
		return highestID, 0, nil
	}
	return highestID, info.Size(), nil
}

func (t *SegmentedTarget) openSegment(id uint32, resume bool) (*segment, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if resume {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(t.segmentPath(id), flags, 0o644)
	if err != nil {
		atomic.AddInt64(&t.segmentStats.openFailures, 1)
		return nil, err
	}
	r, err := ring.New(t.ringCap)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	seg := &segment{id: id, file: f, pending: r}
	if t.bufCapacity > 0 {
		seg.bw = newBufferedFileWriter(f, t.bufCapacity, true)
	}
	return seg, nil
}

// Start marks the target started; the segment file was already opened by
// NewSegmentedTarget.
func (t *SegmentedTarget) Start() error {
	t.start()
	return nil
}

// Stop drains and closes the current segment.
func (t *SegmentedTarget) Stop() error {
	if !t.stop() {
		return nil
	}
	seg := t.current.Load()
	if seg == nil {
		return nil
	}
	t.drainPendingInto(seg)
	return seg.close()
}

// Log implements Target's public entry point.
func (t *SegmentedTarget) Log(r Record) {
	h := t.stats.begin()
	defer t.stats.end(h)

	if t.isStopped() {
		return
	}
	if !t.level.Enabled(r.Level) {
		return
	}
	if f := t.filter.Load(); f != nil && !(*f).Admit(r) {
		t.stats.addDropped(h, 1)
		return
	}
	t.stats.addSubmitted(h, 1)
	n, err := t.WriteLogRecord(r)
	if err != nil {
		t.stats.addFailed(h, 1)
		handleError(wrapEngineError(err, ErrCodeIoError, "segmented target write failed").WithContext("target", t.name))
		return
	}
	t.stats.addWritten(h, 1)
	t.stats.addBytes(h, int64(n))
	if t.flush != nil && t.flush.ShouldFlush(n) {
		_ = t.Flush()
	}
}

// WriteLogRecord formats r and writes it through writeFormatted's
// three-branch write protocol.
func (t *SegmentedTarget) WriteLogRecord(r Record) (int, error) {
	var out [2048]byte
	buf := out[:0]
	if f := t.formatter.Load(); f != nil {
		buf = (*f).FormatInto(buf, r)
	} else {
		buf = DefaultFormatter.FormatInto(buf, r)
	}
	return t.writeFormatted(buf)
}

func (t *SegmentedTarget) writeFormatted(payload []byte) (int, error) {
	recordLen := int64(len(payload))

	seg := t.current.Load()
	atomic.AddInt64(&seg.inflight, 1)

	offsetBefore := atomic.AddInt64(&seg.bytesLogged, recordLen) - recordLen
	offsetAfter := offsetBefore + recordLen

	switch {
	case offsetBefore >= t.segmentCap:
		// Rotation already underway against this segment: defer to the
		// pending ring rather than writing into a file about to close.
		atomic.AddInt64(&seg.inflight, -1)
		cp := make([]byte, len(payload))
		copy(cp, payload)
		seg.pending.Push(cp)
		atomic.AddInt64(&t.segmentStats.pendingWrites, 1)
		return len(payload), nil

	case offsetAfter <= t.segmentCap:
		n, err := seg.write(payload)
		atomic.AddInt64(&seg.inflight, -1)
		return n, err

	default:
		// offsetBefore < cap <= offsetAfter: this writer is the rotator.
		defer atomic.AddInt64(&seg.inflight, -1)
		return t.rotate(seg, payload)
	}
}

// rotate performs the full segment-rotation protocol. Only the writer
// whose CAS on t.current succeeds proceeds as rotator; the loser falls
// back to the pending-ring path against the segment it was already
// writing into.
func (t *SegmentedTarget) rotate(old *segment, ownPayload []byte) (int, error) {
	nextID := old.id + 1
	if t.maxSegments > 0 && nextID >= uint32(t.maxSegments) {
		nextID = nextID % uint32(t.maxSegments)
		if rmErr := os.Remove(t.segmentPath(nextID)); rmErr != nil && !os.IsNotExist(rmErr) {
			atomic.AddInt64(&t.segmentStats.removeFailures, 1)
		}
	}

	newSeg, err := t.openSegment(nextID, false)
	if err != nil {
		// Rotation failed outright: the current write is reported as a
		// failure and a later write retries rotation against old.
		return 0, wrapEngineError(err, ErrCodeIoError, "segment rotation failed to open next segment")
	}

	if !t.current.CompareAndSwap(old, newSeg) {
		// Lost the race: another writer already rotated. Degrade to the
		// pending-ring path against old, and discard the segment we opened.
		_ = newSeg.close()
		_ = os.Remove(t.segmentPath(nextID))
		cp := make([]byte, len(ownPayload))
		copy(cp, ownPayload)
		old.pending.Push(cp)
		atomic.AddInt64(&t.segmentStats.pendingWrites, 1)
		return len(ownPayload), nil
	}

	atomic.AddInt64(&t.epoch, 1)
	atomic.AddInt64(&t.segmentStats.rotations, 1)

	// Quiescence barrier: wait until every *other* writer that entered
	// old's write path has left. old.inflight still carries this
	// rotator's own +1 here (writeFormatted's defer only fires after
	// rotate returns), so the barrier is satisfied at 1, not 0.
	for atomic.LoadInt64(&old.inflight) > 1 {
		runtime.Gosched()
	}

	t.drainPendingInto(old)

	n, writeErr := newSeg.write(ownPayload)

	if closeErr := old.close(); closeErr != nil {
		atomic.AddInt64(&t.segmentStats.closeFailures, 1)
	}

	return n, writeErr
}

// drainPendingInto empties seg's pending ring into seg's own file in FIFO
// order, using a pooled scratch buffer for concatenation.
func (t *SegmentedTarget) drainPendingInto(seg *segment) {
	items := seg.pending.DrainAll()
	if len(items) == 0 {
		return
	}
	scratch := bufferpool.Get()
	defer bufferpool.Put(scratch)
	for _, item := range items {
		scratch.Write(item)
	}
	_, _ = seg.write(scratch.Bytes())
}

// Flush flushes the current segment.
func (t *SegmentedTarget) Flush() error {
	h := t.stats.begin()
	defer t.stats.end(h)
	t.stats.addFlushes(h, 1)
	seg := t.current.Load()
	if seg == nil {
		return nil
	}
	return seg.flush()
}

// SegmentStats returns the dedicated rotation-related counters in addition
// to the base target statistics returned by GetStats.
func (t *SegmentedTarget) SegmentStats() (rotations, pendingWrites, openFailures, closeFailures, removeFailures int64) {
	return atomic.LoadInt64(&t.segmentStats.rotations),
		atomic.LoadInt64(&t.segmentStats.pendingWrites),
		atomic.LoadInt64(&t.segmentStats.openFailures),
		atomic.LoadInt64(&t.segmentStats.closeFailures),
		atomic.LoadInt64(&t.segmentStats.removeFailures)
}

