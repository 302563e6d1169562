// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// broadcastMpmcSlot gates reader visibility independently of the producer
// claim counter: a reader may only observe data at position pos once
// seq == pos+1, which is only true after the claiming producer's write has
// completed. This is what lets multiple producers race on the same claim
// counter without a reader ever observing a slot mid-write.
type broadcastMpmcSlot[T any] struct {
	seq  atomix.Uint64
	data T
	_    padShort
}

// BroadcastMPMCRing is a multi-producer, multi-reader ring where every
// registered reader independently observes every pushed value not lost to
// an overwrite.
//
// Producers race on a single claim counter (CAS, as in MPMCSeqRing) but
// signal write completion through a per-slot sequence number rather than
// the counter itself, so a reader can never observe a claimed-but-not-yet-
// written slot. Because producers are contended, the minimum reader cursor
// is rescanned on every push rather than cached, unlike BroadcastSPMCRing.
type BroadcastMPMCRing[T any] struct {
	_       pad
	tail    atomix.Uint64 // producer claim counter (CAS)
	_       pad
	buffer  []broadcastMpmcSlot[T]
	mask    uint64
	readers []broadcastReaderCursor
}

// NewBroadcastMPMC creates a broadcast MPMC ring with k independently
// addressed reader cursors, all starting at position 0.
//
// Capacity rounds up to the next power of 2. Panics if k < 1.
func NewBroadcastMPMC[T any](capacity, k int) *BroadcastMPMCRing[T] {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}
	if k < 1 {
		panic("ringq: reader count must be >= 1")
	}

	n := uint64(roundToPow2(capacity))
	q := &BroadcastMPMCRing[T]{
		buffer:  make([]broadcastMpmcSlot[T], n),
		mask:    n - 1,
		readers: make([]broadcastReaderCursor, k),
	}
	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}
	return q
}

// Cap returns the ring capacity.
func (q *BroadcastMPMCRing[T]) Cap() int {
	return int(q.mask + 1)
}

// Readers returns K, the number of registered reader cursors.
func (q *BroadcastMPMCRing[T]) Readers() int {
	return len(q.readers)
}

func (q *BroadcastMPMCRing[T]) scanMinRead() uint64 {
	minRead := q.readers[0].pos.LoadAcquire()
	for i := 1; i < len(q.readers); i++ {
		if p := q.readers[i].pos.LoadAcquire(); p < minRead {
			minRead = p
		}
	}
	return minRead
}

// Enqueue adds an element (multiple producers safe). Returns ErrWouldBlock
// if the slowest reader is a full capacity behind the claim counter.
func (q *BroadcastMPMCRing[T]) Enqueue(elem *T) error {
	n := q.mask + 1
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		minRead := q.scanMinRead()
		if tail-minRead >= n {
			return ErrWouldBlock
		}

		if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
			slot := &q.buffer[tail&q.mask]
			slot.data = *elem
			slot.seq.StoreRelease(tail + 1)
			return nil
		}
		sw.Once()
	}
}

// EnqueueOverwrite adds an element unconditionally, regardless of how far
// behind the slowest reader is. A reader that falls a full capacity behind
// detects the loss on its next DequeueOverwrite call.
func (q *BroadcastMPMCRing[T]) EnqueueOverwrite(elem *T) {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
			slot := &q.buffer[tail&q.mask]
			slot.data = *elem
			slot.seq.StoreRelease(tail + 1)
			return
		}
		sw.Once()
	}
}

// Dequeue returns the next value for readerID. Returns (zero-value,
// ErrWouldBlock) if readerID has already caught up to the writers, or if
// the claiming producer's write is still in flight.
func (q *BroadcastMPMCRing[T]) Dequeue(readerID int) (T, error) {
	cur := &q.readers[readerID]
	pos := cur.pos.LoadRelaxed()
	slot := &q.buffer[pos&q.mask]
	seq := slot.seq.LoadAcquire()

	if seq != pos+1 {
		var zero T
		return zero, ErrWouldBlock
	}

	elem := slot.data
	cur.pos.StoreRelease(pos + 1)
	return elem, nil
}

// DequeueOverwrite is like Dequeue but first detects whether readerID has
// fallen more than a full capacity behind the claim counter. If so, the
// cursor is clamped to the oldest still-retained position and ErrWouldBlock
// is returned once, indistinguishable from ordinary emptiness except by
// the discontinuous jump visible via ReadPos.
func (q *BroadcastMPMCRing[T]) DequeueOverwrite(readerID int) (T, error) {
	cur := &q.readers[readerID]
	pos := cur.pos.LoadRelaxed()
	tail := q.tail.LoadAcquire()

	if tail-pos > q.mask+1 {
		cur.pos.StoreRelease(tail - (q.mask + 1))
		var zero T
		return zero, ErrWouldBlock
	}

	slot := &q.buffer[pos&q.mask]
	seq := slot.seq.LoadAcquire()
	if seq != pos+1 {
		var zero T
		return zero, ErrWouldBlock
	}

	elem := slot.data
	cur.pos.StoreRelease(pos + 1)
	return elem, nil
}

// DequeueInto is Dequeue with caller-provided storage.
func (q *BroadcastMPMCRing[T]) DequeueInto(readerID int, out *T) bool {
	elem, err := q.Dequeue(readerID)
	if err != nil {
		return false
	}
	*out = elem
	return true
}

// ReadPos returns readerID's current cursor.
func (q *BroadcastMPMCRing[T]) ReadPos(readerID int) uint64 {
	return q.readers[readerID].pos.LoadAcquire()
}

// SetReadPos overwrites readerID's cursor.
func (q *BroadcastMPMCRing[T]) SetReadPos(readerID int, pos uint64) {
	q.readers[readerID].pos.StoreRelease(pos)
}

// AddReadPos advances readerID's cursor by delta and returns the new value.
func (q *BroadcastMPMCRing[T]) AddReadPos(readerID int, delta uint64) uint64 {
	return q.readers[readerID].pos.AddAcqRel(delta)
}

// SubReadPos rewinds readerID's cursor by delta and returns the new value.
// Used to reclaim an item whose side-effectful delivery failed: decrement
// by 1, then Dequeue the same item again.
func (q *BroadcastMPMCRing[T]) SubReadPos(readerID int, delta uint64) uint64 {
	cur := &q.readers[readerID]
	for {
		old := cur.pos.LoadAcquire()
		next := old - delta
		if cur.pos.CompareAndSwapAcqRel(old, next) {
			return next
		}
	}
}
