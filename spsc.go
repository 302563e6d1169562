// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "unsafe"

// SPSCRing is a single-producer single-consumer bounded ring buffer built
// on lamportRing: each side owns one index and only reloads the peer's
// index when its cached copy would otherwise report full or empty.
//
// Memory: n slots for capacity n, no per-slot metadata beyond the element
// itself.
type SPSCRing[T any] struct {
	lamportRing
	buffer []T
}

// NewSPSC creates a new SPSC ring.
// Capacity rounds up to the next power of 2.
func NewSPSC[T any](capacity int) *SPSCRing[T] {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	return &SPSCRing[T]{
		lamportRing: newLamportRing(n),
		buffer:      make([]T, n),
	}
}

// Enqueue adds an element to the ring (producer only).
// Returns ErrWouldBlock if the ring is full.
func (q *SPSCRing[T]) Enqueue(elem *T) error {
	pos, ok := q.claimWrite()
	if !ok {
		return ErrWouldBlock
	}
	q.buffer[pos&q.mask] = *elem
	q.commitWrite(pos)
	return nil
}

// Dequeue removes and returns an element (consumer only).
// Returns (zero-value, ErrWouldBlock) if the ring is empty.
func (q *SPSCRing[T]) Dequeue() (T, error) {
	pos, ok := q.claimRead()
	if !ok {
		var zero T
		return zero, ErrWouldBlock
	}
	elem := q.buffer[pos&q.mask]
	var zero T
	q.buffer[pos&q.mask] = zero
	q.commitRead(pos)
	return elem, nil
}

// DequeueInto is Dequeue with caller-provided storage.
func (q *SPSCRing[T]) DequeueInto(out *T) bool {
	pos, ok := q.claimRead()
	if !ok {
		return false
	}
	*out = q.buffer[pos&q.mask]
	var zero T
	q.buffer[pos&q.mask] = zero
	q.commitRead(pos)
	return true
}

// SPSCIndirectRing is a SPSC ring for uintptr values, e.g. pool indices or
// other handle-like values that do not need generic element storage.
type SPSCIndirectRing struct {
	lamportRing
	buffer []uintptr
}

// NewSPSCIndirect creates a new SPSC ring for uintptr values.
// Capacity rounds up to the next power of 2.
func NewSPSCIndirect(capacity int) *SPSCIndirectRing {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	return &SPSCIndirectRing{
		lamportRing: newLamportRing(n),
		buffer:      make([]uintptr, n),
	}
}

// Enqueue adds an element (producer only).
// Returns ErrWouldBlock if the ring is full.
func (q *SPSCIndirectRing) Enqueue(elem uintptr) error {
	pos, ok := q.claimWrite()
	if !ok {
		return ErrWouldBlock
	}
	q.buffer[pos&q.mask] = elem
	q.commitWrite(pos)
	return nil
}

// Dequeue removes and returns an element (consumer only).
// Returns (0, ErrWouldBlock) if the ring is empty.
func (q *SPSCIndirectRing) Dequeue() (uintptr, error) {
	pos, ok := q.claimRead()
	if !ok {
		return 0, ErrWouldBlock
	}
	elem := q.buffer[pos&q.mask]
	q.buffer[pos&q.mask] = 0
	q.commitRead(pos)
	return elem, nil
}

// DequeueInto is Dequeue with caller-provided storage.
func (q *SPSCIndirectRing) DequeueInto(out *uintptr) bool {
	pos, ok := q.claimRead()
	if !ok {
		return false
	}
	*out = q.buffer[pos&q.mask]
	q.buffer[pos&q.mask] = 0
	q.commitRead(pos)
	return true
}

// SPSCPtrRing is a SPSC ring for unsafe.Pointer values, useful for
// zero-copy pointer handoff between goroutines.
//
// Slot access goes through unsafe.Add over the backing array instead of
// slice indexing, via the unexported slot helper below; everything else
// (claiming and publishing positions) comes from the embedded lamportRing,
// same as SPSCRing and SPSCIndirectRing. The teacher's original layout
// dispatches this same path to hand-written amd64/arm64/riscv64/loong64
// assembly with a build-tag-gated Go fallback for every other architecture;
// no .s files for any of those architectures were available to carry
// forward, so this ring always runs the portable fallback's algorithm.
type SPSCPtrRing struct {
	lamportRing
	buffer []unsafe.Pointer
}

// NewSPSCPtr creates a new SPSC ring for unsafe.Pointer values.
// Capacity rounds up to the next power of 2.
func NewSPSCPtr(capacity int) *SPSCPtrRing {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	return &SPSCPtrRing{
		lamportRing: newLamportRing(n),
		buffer:      make([]unsafe.Pointer, n),
	}
}

func (q *SPSCPtrRing) slot(pos uint64) *unsafe.Pointer {
	return (*unsafe.Pointer)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(q.buffer)), int(pos&q.mask)*ptrSize))
}

// Enqueue adds an element (producer only).
func (q *SPSCPtrRing) Enqueue(elem unsafe.Pointer) error {
	pos, ok := q.claimWrite()
	if !ok {
		return ErrWouldBlock
	}
	*q.slot(pos) = elem
	q.commitWrite(pos)
	return nil
}

// Dequeue removes and returns an element (consumer only).
func (q *SPSCPtrRing) Dequeue() (unsafe.Pointer, error) {
	pos, ok := q.claimRead()
	if !ok {
		return nil, ErrWouldBlock
	}
	elem := *q.slot(pos)
	q.commitRead(pos)
	return elem, nil
}

// DequeueInto is Dequeue with caller-provided storage.
func (q *SPSCPtrRing) DequeueInto(out *unsafe.Pointer) bool {
	pos, ok := q.claimRead()
	if !ok {
		return false
	}
	*out = *q.slot(pos)
	q.commitRead(pos)
	return true
}
