// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/ringq"
)

func TestMPSCBasic(t *testing.T) {
	q := ringq.NewMPSC[int](3)

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

func TestMPSCSeqBasic(t *testing.T) {
	q := ringq.NewMPSCSeq[int](3)

	for i := range 4 {
		v := i
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	for i := range 4 {
		val, err := q.Dequeue()
		if err != nil || val != i {
			t.Fatalf("Dequeue(%d): got (%d, %v), want (%d, nil)", i, val, err, i)
		}
	}
}

func TestMPSCDequeueInto(t *testing.T) {
	q := ringq.NewMPSC[int](4)
	v := 9
	if err := q.Enqueue(&v); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	var out int
	if !q.DequeueInto(&out) {
		t.Fatal("DequeueInto: got false, want true")
	}
	if out != 9 {
		t.Fatalf("DequeueInto: got %d, want 9", out)
	}
}
