// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "code.hybscloud.com/atomix"

// SPMCSeqRing is a CAS-based single-producer multi-consumer unicast ring.
//
// The single producer writes sequentially with no CAS. Consumers CAS-claim
// slots via seqClaimRead (seq_ring.go).
//
// This is the Compact variant using n slots (vs 2n for FAA-based default).
// Use NewSPMC for the default FAA-based implementation with better scalability.
//
// Memory: n slots; each slot holds an 8-byte sequence number, the element,
// and 56 bytes of padding.
type SPMCSeqRing[T any] struct {
	_        pad
	head     atomix.Uint64 // Consumers CAS here
	_        pad
	tail     atomix.Uint64 // Producer writes here
	_        pad
	buffer   []seqSlot[T]
	mask     uint64
	capacity uint64
}

// NewSPMCSeq creates a new CAS-based unicast SPMC ring.
// Capacity rounds up to the next power of 2.
// This is the Compact variant. Use NewSPMC for the default FAA-based implementation.
func NewSPMCSeq[T any](capacity int) *SPMCSeqRing[T] {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	return &SPMCSeqRing[T]{
		buffer:   newSeqSlots[T](n),
		mask:     n - 1,
		capacity: n,
	}
}

// Enqueue adds an element to the ring (single producer only).
// Returns ErrWouldBlock if the ring is full.
func (q *SPMCSeqRing[T]) Enqueue(elem *T) error {
	tail := q.tail.LoadRelaxed()
	slot := &q.buffer[tail&q.mask]
	seq := slot.seq.LoadAcquire()

	if seq != tail {
		return ErrWouldBlock
	}

	slot.data = *elem
	slot.seq.StoreRelease(tail + 1)
	q.tail.StoreRelease(tail + 1)

	return nil
}

// Dequeue removes and returns an element (multiple consumers safe).
// Returns (zero-value, ErrWouldBlock) if the ring is empty.
func (q *SPMCSeqRing[T]) Dequeue() (T, error) {
	head := q.head.LoadAcquire()
	tail := q.tail.LoadAcquire()
	if head >= tail {
		var zero T
		return zero, ErrWouldBlock
	}

	slot, claimed, err := seqClaimRead(&q.head, q.buffer, q.mask)
	if err != nil {
		var zero T
		return zero, err
	}

	elem := slot.data
	var zero T
	slot.data = zero
	slot.seq.StoreRelease(claimed + q.capacity)
	return elem, nil
}

// DequeueInto is Dequeue with caller-provided storage.
func (q *SPMCSeqRing[T]) DequeueInto(out *T) bool {
	elem, err := q.Dequeue()
	if err != nil {
		return false
	}
	*out = elem
	return true
}

// Cap returns the ring capacity.
func (q *SPMCSeqRing[T]) Cap() int {
	return int(q.capacity)
}
