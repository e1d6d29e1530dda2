// builder_test.go: Tests for the Record Builder & Buffer (C1)
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"bytes"
	"strings"
	"testing"
)

func TestBuilder_WriteStaysInline(t *testing.T) {
	b := &builder{}
	b.write([]byte("hello"))
	if got := string(b.bytes()); got != "hello" {
		t.Fatalf("got %q", got)
	}
	if b.overflow != nil {
		t.Fatal("expected no overflow buffer for a small write")
	}
}

func TestBuilder_SpillsToOverflowPastInlineCapacity(t *testing.T) {
	b := &builder{}
	big := bytes.Repeat([]byte("x"), inlineBufferSize+10)
	b.write(big)

	if b.overflow == nil {
		t.Fatal("expected an overflow buffer once inline capacity is exceeded")
	}
	if len(b.bytes()) != len(big) {
		t.Fatalf("bytes() length = %d, want %d", len(b.bytes()), len(big))
	}
}

func TestBuilder_WritesAcrossSpillBoundaryPreserveAllBytes(t *testing.T) {
	b := &builder{}
	part1 := bytes.Repeat([]byte("a"), inlineBufferSize-3)
	part2 := []byte("bbbbbbbbbb")
	b.write(part1)
	b.write(part2)

	want := append(append([]byte{}, part1...), part2...)
	if !bytes.Equal(b.bytes(), want) {
		t.Fatal("bytes lost or reordered across the spill boundary")
	}
}

func TestBuilder_ResetReleasesOverflowAndClearsState(t *testing.T) {
	b := &builder{}
	b.write(bytes.Repeat([]byte("y"), inlineBufferSize+1))
	b.reset()
	if b.overflow != nil {
		t.Fatal("expected overflow to be released by reset")
	}
	if len(b.bytes()) != 0 {
		t.Fatalf("expected an empty builder after reset, got %q", b.bytes())
	}
}

func TestBuilder_FormatIntoRendersArgs(t *testing.T) {
	b := &builder{}
	b.formatInto("count=%d name=%s", 3, "x")
	if got := string(b.bytes()); got != "count=3 name=x" {
		t.Fatalf("got %q", got)
	}
}

func TestBuilder_FormatIntoWithNoArgsSkipsFormatting(t *testing.T) {
	b := &builder{}
	b.formatInto("100%% literal")
	if got := string(b.bytes()); got != "100%% literal" {
		t.Fatalf("got %q, want the literal text passed through untouched", got)
	}
}

func TestAcquireReleaseBuilder_RoundTripsThroughPool(t *testing.T) {
	b := acquireBuilder()
	b.write([]byte("leftover"))
	releaseBuilder(b)

	b2 := acquireBuilder()
	if len(b2.bytes()) != 0 {
		t.Fatal("expected a released-and-reacquired builder to be empty")
	}
	releaseBuilder(b2)
}

func TestBuilder_FormatIntoLargeOutputSpills(t *testing.T) {
	b := &builder{}
	long := strings.Repeat("z", inlineBufferSize+50)
	b.formatInto("%s", long)
	if len(b.bytes()) != len(long) {
		t.Fatalf("bytes() length = %d, want %d", len(b.bytes()), len(long))
	}
}
