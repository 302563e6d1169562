// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "code.hybscloud.com/atomix"

// MPMCRing is an FAA-based multi-producer multi-consumer unicast ring: each
// pushed value is delivered to exactly one consumer.
//
// Based on the SCQ (Scalable Circular Queue) algorithm by Nikolaev (DISC 2019).
// Uses Fetch-And-Add to blindly increment position counters, requiring 2n
// physical slots for capacity n. This approach scales better under high
// contention compared to CAS-based alternatives. Both the producer claim
// (scqClaim) and the consumer claim-with-repair (scqDequeueClaim) are the
// same FAA-family primitives SPMCRing and MPSCRing build on, in faa_ring.go.
//
// Cycle-based slot validation provides ABA safety: each slot tracks which
// "cycle" (round) it belongs to via cycle = position / capacity.
//
// Memory: 2n slots for capacity n; each slot holds an 8-byte cycle counter,
// the element, and 56 bytes of padding.
type MPMCRing[T any] struct {
	_         pad
	tail      atomix.Uint64 // Producer index (FAA)
	_         pad
	head      atomix.Uint64 // Consumer index (FAA)
	_         pad
	threshold atomix.Int64 // Livelock prevention for dequeue
	_         pad
	draining  atomix.Bool // Drain mode: skip threshold check
	_         pad
	buffer    []scqSlot[T]
	capacity  uint64 // n (usable capacity)
	size      uint64 // 2n (physical slots)
	mask      uint64 // 2n - 1
}

// NewMPMC creates a new FAA-based unicast MPMC ring.
// Capacity rounds up to the next power of 2.
// Physical slot count is 2n for capacity n (SCQ requirement).
func NewMPMC[T any](capacity int) *MPMCRing[T] {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	size := n * 2 // 2n physical slots

	q := &MPMCRing[T]{
		buffer:   newScqSlots[T](n, size),
		capacity: n,
		size:     size,
		mask:     size - 1,
	}
	q.threshold.StoreRelaxed(3*int64(n) - 1)

	return q
}

// Enqueue adds an element to the ring.
// Returns ErrWouldBlock if the ring is full.
func (q *MPMCRing[T]) Enqueue(elem *T) error {
	tail := q.tail.LoadAcquire()
	head := q.head.LoadAcquire()
	if tail >= head+q.capacity {
		return ErrWouldBlock
	}

	slot, myTail, err := scqClaim(&q.tail, q.buffer, q.capacity, q.mask, 0)
	if err != nil {
		return err
	}
	slot.data = *elem
	slot.cycle.StoreRelease(myTail/q.capacity + 1)
	q.threshold.StoreRelaxed(3*int64(q.capacity) - 1)
	return nil
}

// Drain signals that no more enqueues will occur.
// After Drain is called, Dequeue skips the threshold check to allow
// consumers to drain all remaining items without producer pressure.
func (q *MPMCRing[T]) Drain() {
	q.draining.StoreRelease(true)
}

// Dequeue removes and returns an element from the ring.
// Returns (zero-value, ErrWouldBlock) if the ring is empty.
func (q *MPMCRing[T]) Dequeue() (T, error) {
	if !q.draining.LoadAcquire() && q.threshold.LoadRelaxed() < 0 {
		var zero T
		return zero, ErrWouldBlock
	}

	slot, myHead, err := scqDequeueClaim(&q.head, &q.tail, q.buffer, q.capacity, q.size, q.mask, &q.threshold, true, &q.draining)
	if err != nil {
		var zero T
		return zero, err
	}

	elem := slot.data
	var zero T
	slot.data = zero
	nextEnqCycle := (myHead + q.size) / q.capacity
	slot.cycle.StoreRelease(nextEnqCycle)
	return elem, nil
}

// DequeueInto is Dequeue with caller-provided storage.
func (q *MPMCRing[T]) DequeueInto(out *T) bool {
	elem, err := q.Dequeue()
	if err != nil {
		return false
	}
	*out = elem
	return true
}

// Cap returns the ring capacity.
func (q *MPMCRing[T]) Cap() int {
	return int(q.capacity)
}
