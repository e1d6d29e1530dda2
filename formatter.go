// formatter.go: Formatter (C8) — converts a Log Record into bytes per a
// compiled template.
//
// Built around a compiled token sequence shared by text and binary
// render paths, and a per-second cached date-table for the time field.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"strconv"
	"sync/atomic"
	"time"
)

// fieldKind enumerates the typed selectors a template token may render.
type fieldKind int

const (
	fieldLiteral fieldKind = iota
	fieldRecordID
	fieldTime
	fieldHost
	fieldProgram
	fieldPID
	fieldGoroutineID
	fieldSourceQName
	fieldModule
	fieldLevel
	fieldMessage
)

type templateToken struct {
	kind    fieldKind
	literal string
}

// Formatter holds a compiled, read-only-after-init template. FormatInto is
// safe for concurrent use by multiple targets/goroutines.
type Formatter struct {
	tokens []templateToken
}

// CompileFormat parses a printf-like template into a Formatter. Recognized
// verbs: %id %time %host %program %pid %gid %source %module %level %msg.
// Anything else is copied through literally.
func CompileFormat(template string) *Formatter {
	var tokens []templateToken
	lit := make([]byte, 0, len(template))
	flushLit := func() {
		if len(lit) > 0 {
			tokens = append(tokens, templateToken{kind: fieldLiteral, literal: string(lit)})
			lit = lit[:0]
		}
	}
	verbs := map[string]fieldKind{
		"%id": fieldRecordID, "%time": fieldTime, "%host": fieldHost,
		"%program": fieldProgram, "%pid": fieldPID, "%gid": fieldGoroutineID,
		"%source": fieldSourceQName, "%module": fieldModule,
		"%level": fieldLevel, "%msg": fieldMessage,
	}
	i := 0
	for i < len(template) {
		matched := false
		if template[i] == '%' {
			for verb, kind := range verbs {
				if i+len(verb) <= len(template) && template[i:i+len(verb)] == verb {
					flushLit()
					tokens = append(tokens, templateToken{kind: kind})
					i += len(verb)
					matched = true
					break
				}
			}
		}
		if !matched {
			lit = append(lit, template[i])
			i++
		}
	}
	flushLit()
	return &Formatter{tokens: tokens}
}

// DefaultFormatter renders "level time source: msg\n", the fallback used by
// any target without an explicit formatter override.
var DefaultFormatter = CompileFormat("%level %time %source: %msg\n")

var hostname = func() string {
	if h, err := cachedHostname(); err == nil {
		return h
	}
	return "unknown"
}()

var programName = cachedProgramName()

// dateTableSecond/dateTableText cache the formatted wall-clock second so
// that formatting the time field does not call time.Format on every
// record, only once per distinct second.
var dateTableSecond int64
var dateTableText atomic.Pointer[string]

func cachedTimeText(t time.Time) string {
	sec := t.Unix()
	if atomic.LoadInt64(&dateTableSecond) == sec {
		if p := dateTableText.Load(); p != nil {
			return *p
		}
	}
	text := t.UTC().Format("2006-01-02T15:04:05Z")
	dateTableText.Store(&text)
	atomic.StoreInt64(&dateTableSecond, sec)
	return text
}

// FormatInto appends the rendered record to out and returns the extended
// slice, avoiding an allocation when out has spare capacity (as the
// writerTarget's stack-allocated scratch buffer does in the common case).
func (f *Formatter) FormatInto(out []byte, r Record) []byte {
	for _, tok := range f.tokens {
		switch tok.kind {
		case fieldLiteral:
			out = append(out, tok.literal...)
		case fieldRecordID:
			out = strconv.AppendUint(out, r.ID, 10)
		case fieldTime:
			out = append(out, cachedTimeText(r.Timestamp)...)
		case fieldHost:
			out = append(out, hostname...)
		case fieldProgram:
			out = append(out, programName...)
		case fieldPID:
			out = strconv.AppendInt(out, int64(processID()), 10)
		case fieldGoroutineID:
			out = strconv.AppendUint(out, r.GoroutineID, 10)
		case fieldSourceQName:
			if r.Logger != nil && r.Logger.source != nil {
				out = append(out, r.Logger.source.QualifiedName()...)
			}
		case fieldModule:
			if r.Logger != nil && r.Logger.source != nil {
				out = append(out, r.Logger.source.ModuleName()...)
			}
		case fieldLevel:
			out = append(out, r.Level.String()...)
		case fieldMessage:
			out = append(out, r.Msg...)
		}
	}
	return out
}
