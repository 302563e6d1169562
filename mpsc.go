// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "code.hybscloud.com/atomix"

// MPSCRing is an FAA-based multi-producer single-consumer bounded ring.
//
// Producers use FAA to blindly claim positions (SCQ-style, see scqClaim in
// faa_ring.go), requiring 2n physical slots for capacity n. The single
// consumer reads head sequentially with no contention.
//
// Memory: 2n slots for capacity n; each slot holds an 8-byte cycle counter,
// the element, and 56 bytes of padding.
type MPSCRing[T any] struct {
	_        pad
	head     atomix.Uint64 // Consumer index (single consumer writes, but producers read)
	_        pad
	tail     atomix.Uint64 // Producer index (FAA)
	_        pad
	draining atomix.Bool // Drain mode: advisory only, MPSC has no livelock threshold
	_        pad
	buffer   []scqSlot[T]
	capacity uint64 // n (usable capacity)
	size     uint64 // 2n (physical slots)
	mask     uint64 // 2n - 1
}

// NewMPSC creates a new FAA-based MPSC ring.
// Capacity rounds up to the next power of 2.
func NewMPSC[T any](capacity int) *MPSCRing[T] {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	size := n * 2

	return &MPSCRing[T]{
		buffer:   newScqSlots[T](n, size),
		capacity: n,
		size:     size,
		mask:     size - 1,
	}
}

// Drain signals that no more enqueues will occur. MPSCRing's single
// consumer never contends for slots, so this is documentation only — unlike
// SPMCRing/MPMCRing there is no livelock threshold for it to bypass.
func (q *MPSCRing[T]) Drain() {
	q.draining.StoreRelease(true)
}

// Enqueue adds an element to the ring (multiple producers safe).
// Returns ErrWouldBlock if the ring is full.
func (q *MPSCRing[T]) Enqueue(elem *T) error {
	tail := q.tail.LoadAcquire()
	head := q.head.LoadRelaxed()
	if tail >= head+q.capacity {
		return ErrWouldBlock
	}

	slot, myTail, err := scqClaim(&q.tail, q.buffer, q.capacity, q.mask, 0)
	if err != nil {
		return err
	}
	slot.data = *elem
	slot.cycle.StoreRelease(myTail/q.capacity + 1)
	return nil
}

// Dequeue removes and returns an element (single consumer only).
// Returns (zero-value, ErrWouldBlock) if the ring is empty.
func (q *MPSCRing[T]) Dequeue() (T, error) {
	head := q.head.LoadRelaxed()
	cycle := head / q.capacity
	slot := &q.buffer[head&q.mask]

	slotCycle := slot.cycle.LoadAcquire()

	if slotCycle != cycle+1 {
		var zero T
		return zero, ErrWouldBlock
	}

	elem := slot.data
	var zero T
	slot.data = zero
	nextEnqCycle := (head + q.size) / q.capacity
	slot.cycle.StoreRelease(nextEnqCycle)
	q.head.StoreRelaxed(head + 1)

	return elem, nil
}

// DequeueInto is Dequeue with caller-provided storage.
func (q *MPSCRing[T]) DequeueInto(out *T) bool {
	elem, err := q.Dequeue()
	if err != nil {
		return false
	}
	*out = elem
	return true
}

// Cap returns the ring capacity.
func (q *MPSCRing[T]) Cap() int {
	return int(q.capacity)
}
