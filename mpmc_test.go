// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/ringq"
)

func TestMPMCBasic(t *testing.T) {
	q := ringq.NewMPMC[int](3)

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

	seen := map[int]bool{}
	for range 4 {
		val, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		seen[val] = true
	}
	for i := range 4 {
		if !seen[i+100] {
			t.Fatalf("missing value %d", i+100)
		}
	}
}

func TestMPMCDrain(t *testing.T) {
	q := ringq.NewMPMC[int](4)
	v := 1
	if err := q.Enqueue(&v); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	q.Drain()
	if _, err := q.Dequeue(); err != nil {
		t.Fatalf("Dequeue after Drain: %v", err)
	}
	if _, err := q.Dequeue(); !errors.Is(err, ringq.ErrWouldBlock) {
		t.Fatalf("Dequeue on drained-empty ring: got %v, want ErrWouldBlock", err)
	}
}


func TestMPMCDequeueInto(t *testing.T) {
	q := ringq.NewMPMC[int](4)
	v := 7
	if err := q.Enqueue(&v); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	var out int
	if !q.DequeueInto(&out) {
		t.Fatal("DequeueInto: got false, want true")
	}
	if out != 7 {
		t.Fatalf("DequeueInto: got %d, want 7", out)
	}
	if q.DequeueInto(&out) {
		t.Fatal("DequeueInto on empty: got true, want false")
	}
}
