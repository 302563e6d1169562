// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/ringq"
)

func TestSPMCBasic(t *testing.T) {
	q := ringq.NewSPMC[int](3)

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
			t.Fatalf("missing value %d in unicast drain", i+100)
		}
	}
}

func TestSPMCSeqBasic(t *testing.T) {
	q := ringq.NewSPMCSeq[int](3)
	for i := range 4 {
		v := i
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
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
		if !seen[i] {
			t.Fatalf("missing value %d", i)
		}
	}
}

// TestSPMCUnicastPartition is S2: N=1024, K=3, producer pushes 0..29, three
// consumers each pop until 30 values are seen in total. Expected: the three
// disjoint pop sequences union to {0..29}, each strictly increasing.
func TestSPMCUnicastPartition(t *testing.T) {
	q := ringq.NewSPMC[int](1024)
	for i := range 30 {
		v := i
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}

	const consumers = 3
	seqs := make([][]int, consumers)
	total := 0
	for total < 30 {
		for c := 0; c < consumers && total < 30; c++ {
			if v, err := q.Dequeue(); err == nil {
				seqs[c] = append(seqs[c], v)
				total++
			}
		}
	}

	union := map[int]bool{}
	for _, seq := range seqs {
		for i := 1; i < len(seq); i++ {
			if seq[i] <= seq[i-1] {
				t.Fatalf("consumer sequence not strictly increasing: %v", seq)
			}
		}
		for _, v := range seq {
			if union[v] {
				t.Fatalf("value %d observed by more than one consumer", v)
			}
			union[v] = true
		}
	}
	for i := range 30 {
		if !union[i] {
			t.Fatalf("value %d never observed", i)
		}
	}
}
