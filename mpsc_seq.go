// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "code.hybscloud.com/atomix"

// MPSCSeqRing is a CAS-based multi-producer single-consumer bounded ring.
//
// Producers CAS-claim slots via seqClaimWrite (seq_ring.go). The single
// consumer reads sequentially with no contention and no CAS.
//
// This is the Compact variant using n slots (vs 2n for FAA-based default).
// Use NewMPSC for the default FAA-based implementation with better scalability.
//
// Memory: n slots; each slot holds an 8-byte sequence number, the element,
// and 56 bytes of padding.
type MPSCSeqRing[T any] struct {
	_        pad
	head     atomix.Uint64 // Consumer reads from here
	_        pad
	tail     atomix.Uint64 // Producers CAS here
	_        pad
	buffer   []seqSlot[T]
	mask     uint64
	capacity uint64
}

// NewMPSCSeq creates a new CAS-based MPSC ring.
// Capacity rounds up to the next power of 2.
// This is the Compact variant. Use NewMPSC for the default FAA-based implementation.
func NewMPSCSeq[T any](capacity int) *MPSCSeqRing[T] {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	return &MPSCSeqRing[T]{
		buffer:   newSeqSlots[T](n),
		mask:     n - 1,
		capacity: n,
	}
}

// Enqueue adds an element to the ring (multiple producers safe).
// Returns ErrWouldBlock if the ring is full.
func (q *MPSCSeqRing[T]) Enqueue(elem *T) error {
	tail := q.tail.LoadAcquire()
	head := q.head.LoadAcquire()
	if tail >= head+q.capacity {
		return ErrWouldBlock
	}

	slot, claimed, err := seqClaimWrite(&q.tail, q.buffer, q.mask)
	if err != nil {
		return err
	}
	slot.data = *elem
	slot.seq.StoreRelease(claimed + 1)
	return nil
}

// Dequeue removes and returns an element (single consumer only).
// Returns (zero-value, ErrWouldBlock) if the ring is empty.
func (q *MPSCSeqRing[T]) Dequeue() (T, error) {
	head := q.head.LoadRelaxed()
	slot := &q.buffer[head&q.mask]
	seq := slot.seq.LoadAcquire()

	if seq != head+1 {
		var zero T
		return zero, ErrWouldBlock
	}

	elem := slot.data
	var zero T
	slot.data = zero
	slot.seq.StoreRelease(head + q.capacity)
	q.head.StoreRelease(head + 1)

	return elem, nil
}

// DequeueInto is Dequeue with caller-provided storage.
func (q *MPSCSeqRing[T]) DequeueInto(out *T) bool {
	elem, err := q.Dequeue()
	if err != nil {
		return false
	}
	*out = elem
	return true
}

// Cap returns the ring capacity.
func (q *MPSCSeqRing[T]) Cap() int {
	return int(q.capacity)
}
