// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

// This file exercises genuinely concurrent producer/consumer goroutines.
// These trigger false positives with Go's race detector because lock-free
// ring synchronization uses atomic sequences the detector cannot see. The
// tests are correct; they're excluded from race testing.

package ringq_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/ringq"
)

// mpmcUnicastConcurrent is shared by S5 (FAA) and S7 (Compact/Seq): 2
// producers each push 1000 sequential values from disjoint ranges, 3
// consumers drain concurrently. Expected: the union of popped values equals
// the pushed multiset exactly, with no duplicates or losses.
func mpmcUnicastConcurrent(t *testing.T, enqueue func(*int) error, dequeue func() (int, error)) {
	t.Helper()

	const perProducer = 1000
	const producers = 2
	const consumers = 3

	var wg sync.WaitGroup
	wg.Add(producers)
	for id := 0; id < producers; id++ {
		go func(id int) {
			defer wg.Done()
			backoff := iox.Backoff{}
			base := 1000 + id*1000
			for i := 0; i < perProducer; i++ {
				v := base + i
				for enqueue(&v) != nil {
					backoff.Wait()
				}
				backoff.Reset()
			}
		}(id)
	}

	var mu sync.Mutex
	got := make(map[int]int, perProducer*producers)
	done := make(chan struct{})
	var cwg sync.WaitGroup
	cwg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			defer cwg.Done()
			backoff := iox.Backoff{}
			for {
				v, err := dequeue()
				if err != nil {
					select {
					case <-done:
						return
					default:
					}
					backoff.Wait()
					continue
				}
				backoff.Reset()
				mu.Lock()
				got[v]++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n >= perProducer*producers {
			break
		}
	}
	close(done)
	cwg.Wait()

	if len(got) != perProducer*producers {
		t.Fatalf("got %d distinct values, want %d", len(got), perProducer*producers)
	}
	for v, count := range got {
		if count != 1 {
			t.Fatalf("value %d observed %d times, want 1", v, count)
		}
	}
}

func TestMPMCUnicastConcurrentFAA(t *testing.T) {
	q := ringq.NewMPMC[int](1024)
	mpmcUnicastConcurrent(t, q.Enqueue, q.Dequeue)
}

func TestMPMCUnicastConcurrentSeq(t *testing.T) {
	q := ringq.NewMPMCSeq[int](1024)
	mpmcUnicastConcurrent(t, q.Enqueue, q.Dequeue)
}

// TestBroadcastMPMCDelivery is S8: N=1024, K=3, 2 producers each push 500
// values, 3 broadcast readers each drain until they've seen 1000 values.
// Expected: each reader's sequence, sorted, equals the full multiset of
// pushed values.
func TestBroadcastMPMCDelivery(t *testing.T) {
	q := ringq.NewBroadcastMPMC[int](1024, 3)

	const perProducer = 500
	const producers = 2
	const total = perProducer * producers

	var wg sync.WaitGroup
	wg.Add(producers)
	for id := 0; id < producers; id++ {
		go func(id int) {
			defer wg.Done()
			backoff := iox.Backoff{}
			base := id * perProducer
			for i := 0; i < perProducer; i++ {
				v := base + i
				for q.Enqueue(&v) != nil {
					backoff.Wait()
				}
				backoff.Reset()
			}
		}(id)
	}
	wg.Wait()

	var rwg sync.WaitGroup
	results := make([]map[int]bool, 3)
	rwg.Add(3)
	for r := 0; r < 3; r++ {
		go func(r int) {
			defer rwg.Done()
			backoff := iox.Backoff{}
			seen := make(map[int]bool, total)
			for len(seen) < total {
				v, err := q.Dequeue(r)
				if err != nil {
					backoff.Wait()
					continue
				}
				backoff.Reset()
				seen[v] = true
			}
			results[r] = seen
		}(r)
	}
	rwg.Wait()

	for r, seen := range results {
		if len(seen) != total {
			t.Fatalf("reader %d saw %d distinct values, want %d", r, len(seen), total)
		}
		for i := 0; i < total; i++ {
			if !seen[i] {
				t.Fatalf("reader %d missing value %d", r, i)
			}
		}
	}
}

// Example_workerPool demonstrates a worker pool pattern using MPMC.
func Example_workerPool() {
	type Job struct {
		ID     int
		Input  int
		Result int
	}

	jobs := ringq.NewMPMC[Job](16)
	results := make([]int, 5)
	var wg sync.WaitGroup
	var completed atomix.Int32

	for w := range 3 {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			backoff := iox.Backoff{}
			for completed.LoadAcquire() < 5 {
				job, err := jobs.Dequeue()
				if err != nil {
					backoff.Wait()
					continue
				}
				backoff.Reset()
				job.Result = job.Input * job.Input
				results[job.ID] = job.Result
				completed.AddAcqRel(1)
			}
		}(w)
	}

	backoff := iox.Backoff{}
	for i := range 5 {
		job := Job{ID: i, Input: i + 1}
		for jobs.Enqueue(&job) != nil {
			backoff.Wait()
		}
		backoff.Reset()
	}

	wg.Wait()

	for i, r := range results {
		_ = i
		_ = r
	}
}
