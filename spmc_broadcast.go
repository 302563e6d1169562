// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "code.hybscloud.com/atomix"

// broadcastRefreshInterval bounds how stale the producer's cached view of
// the slowest reader can get: even if no push ever looks close to full, the
// cache is refreshed unconditionally every R pushes.
const broadcastRefreshInterval = 64

// broadcastReaderCursor is one reader's position, cache-line isolated so K
// readers advancing concurrently don't ping-pong the same line.
type broadcastReaderCursor struct {
	_   pad
	pos atomix.Uint64
	_   padShort
}

// BroadcastSPMCRing is a single-producer, multi-reader ring where every
// registered reader independently observes every pushed value not lost to
// an overwrite.
//
// Unlike the unicast SPMC ring, values are never removed from a slot on
// read: a slot is only overwritten once every reader has advanced past it.
// The producer tracks this via K independent reader cursors, cached as
// their minimum to avoid scanning all K on every push.
//
// Capacity must be strictly greater than the refresh interval (64), since
// the periodic cache refresh assumes at most one lap of the ring occurs
// between refreshes.
type BroadcastSPMCRing[T any] struct {
	_       pad
	write   atomix.Uint64 // published write cursor, single producer
	_       pad
	buffer  []T
	mask    uint64
	readers []broadcastReaderCursor

	// producer-local state, touched only by the single producer goroutine.
	localWrite    uint64
	cachedMinRead uint64
	sinceRefresh  int
}

// NewBroadcastSPMC creates a broadcast SPMC ring with k independently
// addressed reader cursors, all starting at position 0.
//
// Capacity rounds up to the next power of 2 and must exceed 64. Panics if
// k < 1.
func NewBroadcastSPMC[T any](capacity, k int) *BroadcastSPMCRing[T] {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}
	if k < 1 {
		panic("ringq: reader count must be >= 1")
	}

	n := roundToPow2(capacity)
	if n <= broadcastRefreshInterval {
		panic("ringq: broadcast SPMC capacity must exceed the refresh interval (64)")
	}

	return &BroadcastSPMCRing[T]{
		buffer:  make([]T, n),
		mask:    uint64(n) - 1,
		readers: make([]broadcastReaderCursor, k),
	}
}

// Cap returns the ring capacity.
func (q *BroadcastSPMCRing[T]) Cap() int {
	return int(q.mask + 1)
}

// Readers returns K, the number of registered reader cursors.
func (q *BroadcastSPMCRing[T]) Readers() int {
	return len(q.readers)
}

// refreshMinRead rescans every reader cursor and updates the cached
// minimum. Called by the producer only.
func (q *BroadcastSPMCRing[T]) refreshMinRead() {
	minRead := q.readers[0].pos.LoadAcquire()
	for i := 1; i < len(q.readers); i++ {
		if p := q.readers[i].pos.LoadAcquire(); p < minRead {
			minRead = p
		}
	}
	q.cachedMinRead = minRead
}

// Enqueue adds an element (single producer only). Returns ErrWouldBlock if
// the slowest reader is a full capacity behind the write cursor.
func (q *BroadcastSPMCRing[T]) Enqueue(elem *T) error {
	n := q.mask + 1
	if q.localWrite-q.cachedMinRead >= n {
		q.refreshMinRead()
		if q.localWrite-q.cachedMinRead >= n {
			return ErrWouldBlock
		}
	}

	q.buffer[q.localWrite&q.mask] = *elem
	q.write.StoreRelease(q.localWrite + 1)
	q.localWrite++

	q.sinceRefresh++
	if q.sinceRefresh >= broadcastRefreshInterval {
		q.refreshMinRead()
		q.sinceRefresh = 0
	}
	return nil
}

// EnqueueOverwrite adds an element unconditionally, regardless of how far
// behind the slowest reader is. A reader that falls a full capacity behind
// detects the loss on its next DequeueOverwrite call.
func (q *BroadcastSPMCRing[T]) EnqueueOverwrite(elem *T) {
	q.buffer[q.localWrite&q.mask] = *elem
	q.write.StoreRelease(q.localWrite + 1)
	q.localWrite++

	q.sinceRefresh++
	if q.sinceRefresh >= broadcastRefreshInterval {
		q.refreshMinRead()
		q.sinceRefresh = 0
	}
}

// Dequeue returns the next value for readerID. Returns (zero-value,
// ErrWouldBlock) if readerID has already caught up to the writer.
func (q *BroadcastSPMCRing[T]) Dequeue(readerID int) (T, error) {
	cur := &q.readers[readerID]
	pos := cur.pos.LoadRelaxed()
	w := q.write.LoadAcquire()

	if pos >= w {
		var zero T
		return zero, ErrWouldBlock
	}

	elem := q.buffer[pos&q.mask]
	cur.pos.StoreRelease(pos + 1)
	return elem, nil
}

// DequeueOverwrite is like Dequeue but first detects whether readerID has
// fallen more than a full capacity behind the writer. If so, the cursor is
// clamped to the oldest still-retained position and ErrWouldBlock is
// returned once, indistinguishable from ordinary emptiness except by the
// discontinuous jump visible via ReadPos.
func (q *BroadcastSPMCRing[T]) DequeueOverwrite(readerID int) (T, error) {
	cur := &q.readers[readerID]
	pos := cur.pos.LoadRelaxed()
	w := q.write.LoadAcquire()

	if w-pos > q.mask+1 {
		cur.pos.StoreRelease(w - (q.mask + 1))
		var zero T
		return zero, ErrWouldBlock
	}

	if pos >= w {
		var zero T
		return zero, ErrWouldBlock
	}

	elem := q.buffer[pos&q.mask]
	cur.pos.StoreRelease(pos + 1)
	return elem, nil
}

// DequeueInto is Dequeue with caller-provided storage.
func (q *BroadcastSPMCRing[T]) DequeueInto(readerID int, out *T) bool {
	elem, err := q.Dequeue(readerID)
	if err != nil {
		return false
	}
	*out = elem
	return true
}

// ReadPos returns readerID's current cursor.
func (q *BroadcastSPMCRing[T]) ReadPos(readerID int) uint64 {
	return q.readers[readerID].pos.LoadAcquire()
}

// SetReadPos overwrites readerID's cursor.
func (q *BroadcastSPMCRing[T]) SetReadPos(readerID int, pos uint64) {
	q.readers[readerID].pos.StoreRelease(pos)
}

// AddReadPos advances readerID's cursor by delta and returns the new value.
func (q *BroadcastSPMCRing[T]) AddReadPos(readerID int, delta uint64) uint64 {
	return q.readers[readerID].pos.AddAcqRel(delta)
}

// SubReadPos rewinds readerID's cursor by delta and returns the new value.
// Used to reclaim an item whose side-effectful delivery failed: decrement
// by 1, then Dequeue the same item again.
func (q *BroadcastSPMCRing[T]) SubReadPos(readerID int, delta uint64) uint64 {
	cur := &q.readers[readerID]
	for {
		old := cur.pos.LoadAcquire()
		next := old - delta
		if cur.pos.CompareAndSwapAcqRel(old, next) {
			return next
		}
	}
}
