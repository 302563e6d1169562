// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "code.hybscloud.com/atomix"

// MPMCSeqRing is a CAS-based multi-producer multi-consumer unicast ring.
//
// Both ends CAS-claim slots via seqClaimWrite/seqClaimRead (seq_ring.go),
// the same primitives MPSCSeqRing and SPMCSeqRing build their contended
// side on. Per-slot sequence numbers provide:
//   - Full ABA safety via sequence-based validation
//   - Works with both distinct and non-distinct values
//   - Good performance under moderate contention
//
// This is the Compact variant using n slots (vs 2n for FAA-based default).
// Use NewMPMC for the default FAA-based implementation with better scalability.
//
// Memory: n slots; each slot holds an 8-byte sequence number, the element,
// and 56 bytes of padding.
type MPMCSeqRing[T any] struct {
	_        pad
	tail     atomix.Uint64 // Producer index
	_        pad
	head     atomix.Uint64 // Consumer index
	_        pad
	buffer   []seqSlot[T]
	mask     uint64
	capacity uint64
}

// NewMPMCSeq creates a new CAS-based unicast MPMC ring.
// Capacity rounds up to the next power of 2.
// This is the Compact variant. Use NewMPMC for the default FAA-based implementation.
func NewMPMCSeq[T any](capacity int) *MPMCSeqRing[T] {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	return &MPMCSeqRing[T]{
		buffer:   newSeqSlots[T](n),
		mask:     n - 1,
		capacity: n,
	}
}

// Enqueue adds an element to the ring.
// Returns ErrWouldBlock if the ring is full.
func (q *MPMCSeqRing[T]) Enqueue(elem *T) error {
	slot, claimed, err := seqClaimWrite(&q.tail, q.buffer, q.mask)
	if err != nil {
		return err
	}
	slot.data = *elem
	slot.seq.StoreRelease(claimed + 1)
	return nil
}

// Dequeue removes and returns an element from the ring.
// Returns (zero-value, ErrWouldBlock) if the ring is empty.
func (q *MPMCSeqRing[T]) Dequeue() (T, error) {
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
func (q *MPMCSeqRing[T]) DequeueInto(out *T) bool {
	elem, err := q.Dequeue()
	if err != nil {
		return false
	}
	*out = elem
	return true
}

// Cap returns the ring capacity.
func (q *MPMCSeqRing[T]) Cap() int {
	return int(q.capacity)
}
