// ring_test.go: Tests for the bounded MPMC ring
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ring

import (
	"sort"
	"strconv"
	"sync"
	"testing"
)

func TestNew_RejectsNonPowerOfTwo(t *testing.T) {
	cases := []int{0, -1, 3, 5, 100}
	for _, c := range cases {
		if _, err := New(c); err != ErrInvalidCapacity {
			t.Errorf("New(%d): expected ErrInvalidCapacity, got %v", c, err)
		}
	}
}

func TestNew_AcceptsPowerOfTwo(t *testing.T) {
	r, err := New(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Cap() != 16 {
		t.Errorf("Cap() = %d, want 16", r.Cap())
	}
}

func TestPushPop_FIFOOrder(t *testing.T) {
	r, _ := New(8)
	for i := 0; i < 5; i++ {
		r.Push([]byte(strconv.Itoa(i)))
	}
	for i := 0; i < 5; i++ {
		got := string(r.Pop())
		if got != strconv.Itoa(i) {
			t.Errorf("Pop() #%d = %q, want %q", i, got, strconv.Itoa(i))
		}
	}
}

func TestTryPush_FailsWhenFull(t *testing.T) {
	r, _ := New(2)
	if !r.TryPush([]byte("a")) {
		t.Fatal("expected first TryPush to succeed")
	}
	if !r.TryPush([]byte("b")) {
		t.Fatal("expected second TryPush to succeed")
	}
	if r.TryPush([]byte("c")) {
		t.Fatal("expected third TryPush on a full ring of capacity 2 to fail")
	}
	if got := string(r.Pop()); got != "a" {
		t.Errorf("Pop() = %q, want %q", got, "a")
	}
}

func TestTryPop_FailsWhenEmpty(t *testing.T) {
	r, _ := New(4)
	if _, ok := r.TryPop(); ok {
		t.Fatal("expected TryPop on an empty ring to fail")
	}
}

func TestSize_TracksPushAndPop(t *testing.T) {
	r, _ := New(8)
	if r.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", r.Size())
	}
	r.Push([]byte("x"))
	r.Push([]byte("y"))
	if r.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", r.Size())
	}
	r.Pop()
	if r.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", r.Size())
	}
}

func TestDrainAll_EmptiesRingInOrder(t *testing.T) {
	r, _ := New(8)
	for i := 0; i < 4; i++ {
		r.Push([]byte(strconv.Itoa(i)))
	}
	drained := r.DrainAll()
	if len(drained) != 4 {
		t.Fatalf("DrainAll() returned %d items, want 4", len(drained))
	}
	for i, p := range drained {
		if string(p) != strconv.Itoa(i) {
			t.Errorf("drained[%d] = %q, want %q", i, p, strconv.Itoa(i))
		}
	}
	if r.Size() != 0 {
		t.Errorf("Size() after DrainAll() = %d, want 0", r.Size())
	}
}

// TestConcurrentProducers exercises many goroutines pushing concurrently
// followed by a single-goroutine drain, checking no item is lost or
// duplicated (the ring's core MPMC safety property).
func TestConcurrentProducers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrency stress test in -short mode")
	}
	const producers = 16
	const perProducer = 200
	r, _ := New(4096) // holds all producers*perProducer items before the drain

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		p := p
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				r.Push([]byte(strconv.Itoa(p*perProducer + i)))
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, producers*perProducer)
	for i := 0; i < producers*perProducer; i++ {
		seen[string(r.Pop())] = true
	}
	if len(seen) != producers*perProducer {
		t.Fatalf("got %d distinct items, want %d", len(seen), producers*perProducer)
	}
}

// TestConcurrentProducersAndConsumers checks that concurrent Push/Pop pairs
// never lose or duplicate an item, regardless of interleaving.
func TestConcurrentProducersAndConsumers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrency stress test in -short mode")
	}
	const n = 2000
	r, _ := New(256)

	var produced, consumed []string
	var muP, muC sync.Mutex
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			s := strconv.Itoa(i)
			r.Push([]byte(s))
			muP.Lock()
			produced = append(produced, s)
			muP.Unlock()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			s := string(r.Pop())
			muC.Lock()
			consumed = append(consumed, s)
			muC.Unlock()
		}
	}()

	wg.Wait()
	sort.Strings(produced)
	sort.Strings(consumed)
	if len(produced) != len(consumed) {
		t.Fatalf("produced %d items, consumed %d", len(produced), len(consumed))
	}
	for i := range produced {
		if produced[i] != consumed[i] {
			t.Fatalf("mismatch at %d: produced %q, consumed %q", i, produced[i], consumed[i])
		}
	}
}
