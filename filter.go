// filter.go: Filter Tree (C7) — composable admission predicates.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"regexp"
	"strings"
)

// Filter is an immutable admission predicate evaluated against a Record.
// Filters are replaced atomically (see baseTarget.SetFilter); they are
// never mutated in place after installation.
type Filter interface {
	Admit(r Record) bool
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc func(r Record) bool

// Admit calls f.
func (f FilterFunc) Admit(r Record) bool { return f(r) }

// andFilter admits iff every child admits, short-circuiting on the first
// rejection.
type andFilter struct{ children []Filter }

// And composes filters with short-circuit conjunction.
func And(filters ...Filter) Filter { return andFilter{children: filters} }

func (a andFilter) Admit(r Record) bool {
	for _, c := range a.children {
		if !c.Admit(r) {
			return false
		}
	}
	return true
}

// orFilter admits iff any child admits, short-circuiting on the first
// acceptance.
type orFilter struct{ children []Filter }

// Or composes filters with short-circuit disjunction.
func Or(filters ...Filter) Filter { return orFilter{children: filters} }

func (o orFilter) Admit(r Record) bool {
	for _, c := range o.children {
		if c.Admit(r) {
			return true
		}
	}
	return false
}

// notFilter inverts its child.
type notFilter struct{ child Filter }

// Not negates a filter.
func Not(f Filter) Filter { return notFilter{child: f} }

func (n notFilter) Admit(r Record) bool { return !n.child.Admit(r) }

// countFilter admits every n-th record (the n-th, 2n-th, ... call admits;
// the first call admits only when n is 1).
type countFilter struct {
	n       int64
	counter *int64
}

// Count admits every n-th record that reaches it.
func Count(n int64) Filter {
	c := int64(0)
	return &countFilter{n: n, counter: &c}
}

func (c *countFilter) Admit(Record) bool {
	*c.counter++
	if c.n <= 0 {
		return true
	}
	return (*c.counter)%c.n == 0
}

// rateLimitFilter adapts a RateLimiter (C6) to the Filter interface.
type rateLimitFilter struct {
	limiter *RateLimiter
}

// RateLimit wraps limiter as a Filter.
func RateLimit(limiter *RateLimiter) Filter {
	return rateLimitFilter{limiter: limiter}
}

func (r rateLimitFilter) Admit(rec Record) bool {
	return r.limiter.Admit(rec.Timestamp)
}

// ExprOp is a comparison operator usable in an Expression leaf.
type ExprOp string

const (
	OpEQ       ExprOp = "=="
	OpNE       ExprOp = "!="
	OpLT       ExprOp = "<"
	OpLE       ExprOp = "<="
	OpGT       ExprOp = ">"
	OpGE       ExprOp = ">="
	OpContains ExprOp = "contains"
	OpMatches  ExprOp = "matches"
)

// FieldSelector extracts a comparable string from a Record for use as the
// left-hand side of an Expression leaf.
type FieldSelector func(r Record) string

// SourceNameField selects the record's source qualified name.
func SourceNameField(r Record) string {
	if r.Logger != nil && r.Logger.source != nil {
		return r.Logger.source.QualifiedName()
	}
	return ""
}

// MessageField selects the formatted message text.
func MessageField(r Record) string { return string(r.Msg) }

// exprFilter implements a single `lhs op rhs` leaf predicate.
type exprFilter struct {
	lhs FieldSelector
	op  ExprOp
	rhs string
	re  *regexp.Regexp // compiled at construction for OpMatches
}

// Expression builds a leaf filter comparing lhs(record) against rhs using
// op. For OpMatches, rhs is compiled as a regular expression once at
// construction time: an invalid regex panics at filter-construction time
// rather than on every per-record evaluation.
func Expression(lhs FieldSelector, op ExprOp, rhs string) Filter {
	e := &exprFilter{lhs: lhs, op: op, rhs: rhs}
	if op == OpMatches {
		e.re = regexp.MustCompile(rhs)
	}
	return e
}

func (e *exprFilter) Admit(r Record) bool {
	v := e.lhs(r)
	switch e.op {
	case OpEQ:
		return v == e.rhs
	case OpNE:
		return v != e.rhs
	case OpLT:
		return v < e.rhs
	case OpLE:
		return v <= e.rhs
	case OpGT:
		return v > e.rhs
	case OpGE:
		return v >= e.rhs
	case OpContains:
		return strings.Contains(v, e.rhs)
	case OpMatches:
		return e.re.MatchString(v)
	default:
		return false
	}
}
