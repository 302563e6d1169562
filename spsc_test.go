// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq_test

import (
	"errors"
	"testing"
	"unsafe"

	"code.hybscloud.com/ringq"
)

// TestSPSCBasic exercises fill-to-capacity, full detection, FIFO drain, and
// empty detection for the Lamport ring.
func TestSPSCBasic(t *testing.T) {
	q := ringq.NewSPSC[int](3)

	if q.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", q.Cap())
	}

	for i := range 4 {
		v := i + 100
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}

	v := 999
	if err := q.Enqueue(&v); !errors.Is(err, ringq.ErrWouldBlock) {
		t.Fatalf("Enqueue on full: got %v, want ErrWouldBlock", err)
	}

	for i := range 4 {
		val, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if val != i+100 {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, val, i+100)
		}
	}

	if _, err := q.Dequeue(); !errors.Is(err, ringq.ErrWouldBlock) {
		t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
	}
}

// TestSPSCDequeueInto exercises the caller-provided-storage dequeue variant.
func TestSPSCDequeueInto(t *testing.T) {
	q := ringq.NewSPSC[int](4)

	v := 42
	if err := q.Enqueue(&v); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	var out int
	if !q.DequeueInto(&out) {
		t.Fatal("DequeueInto: got false, want true")
	}
	if out != 42 {
		t.Fatalf("DequeueInto: got %d, want 42", out)
	}

	out = -1
	if q.DequeueInto(&out) {
		t.Fatal("DequeueInto on empty: got true, want false")
	}
	if out != -1 {
		t.Fatalf("DequeueInto on empty must not touch out: got %d", out)
	}
}

// TestSPSCSequential is S1: N=1024, push 0..9999, expect the exact sequence
// back out (with interleaved pushes since capacity < count).
func TestSPSCSequential(t *testing.T) {
	q := ringq.NewSPSC[int](1024)
	const total = 10000

	next := 0
	popped := make([]int, 0, total)
	for next < total || len(popped) < total {
		if next < total {
			v := next
			if err := q.Enqueue(&v); err == nil {
				next++
			}
		}
		if val, err := q.Dequeue(); err == nil {
			popped = append(popped, val)
		}
	}

	for i, v := range popped {
		if v != i {
			t.Fatalf("popped[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestSPSCIndirectAndPtr(t *testing.T) {
	iq := ringq.NewSPSCIndirect(4)
	if err := iq.Enqueue(42); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if v, err := iq.Dequeue(); err != nil || v != 42 {
		t.Fatalf("Dequeue: got (%d, %v), want (42, nil)", v, err)
	}

	type box struct{ n int }
	pq := ringq.NewSPSCPtr(4)
	b := &box{n: 7}
	if err := pq.Enqueue(unsafe.Pointer(b)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	got, err := pq.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if b2 := (*box)(got); b2.n != 7 {
		t.Fatalf("Dequeue: got n=%d, want 7", b2.n)
	}
}
