// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "code.hybscloud.com/atomix"

// SPMCRing is an FAA-based single-producer multi-consumer unicast ring: each
// pushed value is delivered to exactly one of the consumers.
//
// The single producer writes tail sequentially with no contention.
// Consumers use FAA to blindly claim positions (SCQ-style, see
// scqDequeueClaim in faa_ring.go), requiring 2n physical slots for
// capacity n.
//
// Memory: 2n slots for capacity n; each slot holds an 8-byte cycle counter,
// the element, and 56 bytes of padding.
type SPMCRing[T any] struct {
	_         pad
	head      atomix.Uint64 // Consumer index (FAA)
	_         pad
	tail      atomix.Uint64 // Producer index (single producer writes, but consumers read)
	_         pad
	threshold atomix.Int64 // Livelock prevention for consumers
	_         pad
	draining  atomix.Bool // Drain mode: skip threshold check
	_         pad
	buffer    []scqSlot[T]
	capacity  uint64 // n (usable capacity)
	size      uint64 // 2n (physical slots)
	mask      uint64 // 2n - 1
}

// NewSPMC creates a new FAA-based unicast SPMC ring.
// Capacity rounds up to the next power of 2.
func NewSPMC[T any](capacity int) *SPMCRing[T] {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	size := n * 2

	q := &SPMCRing[T]{
		buffer:   newScqSlots[T](n, size),
		capacity: n,
		size:     size,
		mask:     size - 1,
	}
	q.threshold.StoreRelaxed(3*int64(n) - 1)

	return q
}

// Drain signals that no more enqueues will occur.
// After Drain is called, Dequeue skips the threshold check to allow
// consumers to drain all remaining items without producer pressure.
func (q *SPMCRing[T]) Drain() {
	q.draining.StoreRelease(true)
}

// Enqueue adds an element to the ring (single producer only).
// Returns ErrWouldBlock if the ring is full.
func (q *SPMCRing[T]) Enqueue(elem *T) error {
	tail := q.tail.LoadRelaxed()
	head := q.head.LoadAcquire()

	if tail >= head+q.capacity {
		return ErrWouldBlock
	}

	cycle := tail / q.capacity
	slot := &q.buffer[tail&q.mask]

	slotCycle := slot.cycle.LoadAcquire()

	if slotCycle != cycle {
		return ErrWouldBlock
	}

	slot.data = *elem
	slot.cycle.StoreRelease(cycle + 1)
	q.tail.StoreRelaxed(tail + 1)

	q.threshold.StoreRelaxed(3*int64(q.capacity) - 1)

	return nil
}

// Dequeue removes and returns an element (multiple consumers safe).
// Returns (zero-value, ErrWouldBlock) if the ring is empty.
func (q *SPMCRing[T]) Dequeue() (T, error) {
	if !q.draining.LoadAcquire() && q.threshold.LoadRelaxed() < 0 {
		var zero T
		return zero, ErrWouldBlock
	}

	slot, myHead, err := scqDequeueClaim(&q.head, &q.tail, q.buffer, q.capacity, q.size, q.mask, &q.threshold, false, &q.draining)
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
func (q *SPMCRing[T]) DequeueInto(out *T) bool {
	elem, err := q.Dequeue()
	if err != nil {
		return false
	}
	*out = elem
	return true
}

// Cap returns the ring capacity.
func (q *SPMCRing[T]) Cap() int {
	return int(q.capacity)
}
