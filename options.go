// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "unsafe"

// Options configures queue creation and algorithm selection.
type Options struct {
	// Producer/Consumer constraints (determines queue type)
	singleProducer bool
	singleConsumer bool

	// Performance hints
	compact bool // Effort to save slots

	// Transmission mode
	broadcast bool
	readers   int

	// Capacity (rounds up to next power of 2)
	capacity int
}

// Builder creates queues with fluent configuration.
//
// Builder provides a fluent API for configuring and creating queues.
// The builder automatically selects the algorithm based on
// producer/consumer constraints, performance hints, and transmission mode.
//
// Example:
//
//	// SPSC queue (optimal for single producer/consumer)
//	q := ringq.BuildSPSC[Event](ringq.New(1024).SingleProducer().SingleConsumer())
//
//	// MPMC queue (default, general purpose)
//	q := ringq.BuildMPMC[Request](ringq.New(4096))
//
//	// Compact queue for memory efficiency
//	q := ringq.Build[Request](ringq.New(8192).Compact())
//
//	// Broadcast SPMC with 3 readers
//	q := ringq.BuildBroadcastSPMC[Tick](ringq.New(1024).SingleProducer().Broadcast().Readers(3))
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity.
//
// Capacity rounds up to the next power of 2.
// For example, capacity=4 results in actual capacity=4, capacity=1000 results
// in actual capacity=1024.
//
// Panics if capacity < 2.
//
// Example:
//
//	// Create builder, then configure and build
//	b := ringq.New(1024)
//	q := ringq.BuildSPSC[int](b.SingleProducer().SingleConsumer())
//
//	// Or chain directly
//	q := ringq.BuildMPMC[int](ringq.New(1024))
func New(capacity int) *Builder {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}
	return &Builder{opts: Options{capacity: capacity}}
}

// SingleProducer declares that only one goroutine will enqueue.
// Enables optimized algorithms for SPSC or SPMC patterns.
func (b *Builder) SingleProducer() *Builder {
	b.opts.singleProducer = true
	return b
}

// SingleConsumer declares that only one goroutine will dequeue.
// Enables optimized algorithms for SPSC or MPSC patterns.
func (b *Builder) SingleConsumer() *Builder {
	b.opts.singleConsumer = true
	return b
}

// Compact selects CAS-based algorithms with n physical slots instead of
// FAA-based algorithms with 2n slots.
//
// Trade-off: Half memory usage, reduced scalability under high contention.
//
// SPSC already uses n slots (Lamport ring buffer) and ignores Compact().
func (b *Builder) Compact() *Builder {
	b.opts.compact = true
	return b
}

// Broadcast selects the broadcast transmission mode: every registered
// reader observes every value not lost to an overwrite, rather than each
// value going to exactly one consumer.
//
// Only meaningful together with SingleProducer() (BuildBroadcastSPMC) or
// with neither constraint (BuildBroadcastMPMC); combine with Readers to
// set the reader count.
func (b *Builder) Broadcast() *Builder {
	b.opts.broadcast = true
	return b
}

// Readers sets K, the number of independently-addressed reader cursors
// for a broadcast queue. Ignored outside Broadcast().
func (b *Builder) Readers(k int) *Builder {
	b.opts.readers = k
	return b
}

// Build creates a Queue[T] with automatic algorithm selection.
//
// Algorithm selection:
//
//	SingleProducer + SingleConsumer → SPSC (Lamport ring buffer)
//	SingleProducer only             → SPMC (FAA default, CAS if Compact)
//	SingleConsumer only             → MPSC (FAA default, CAS if Compact)
//	Neither                         → MPMC (FAA default, CAS if Compact)
//
// Default: FAA-based algorithms with 2n physical slots (better scalability).
// Compact(): CAS-based algorithms with n slots (half memory footprint).
//
// Build does not select broadcast rings; use BuildBroadcastSPMC or
// BuildBroadcastMPMC for those.
//
// Topology-specific builders that panic on a mismatched configuration:
//   - BuildSPSC[T](b) → *SPSCRing[T]
//   - BuildMPSC[T](b) → Queue[T] holding *MPSCRing[T] (or *MPSCSeqRing[T] if Compact)
//   - BuildSPMC[T](b) → Queue[T] holding *SPMCRing[T] (or *SPMCSeqRing[T] if Compact)
//   - BuildMPMC[T](b) → Queue[T] holding *MPMCRing[T] (or *MPMCSeqRing[T] if Compact)
func Build[T any](b *Builder) Queue[T] {
	switch {
	case b.opts.singleProducer && b.opts.singleConsumer:
		return NewSPSC[T](b.opts.capacity)
	case b.opts.singleProducer && b.opts.compact:
		return NewSPMCSeq[T](b.opts.capacity)
	case b.opts.singleProducer:
		return NewSPMC[T](b.opts.capacity)
	case b.opts.singleConsumer && b.opts.compact:
		return NewMPSCSeq[T](b.opts.capacity)
	case b.opts.singleConsumer:
		return NewMPSC[T](b.opts.capacity)
	case b.opts.compact:
		return NewMPMCSeq[T](b.opts.capacity)
	default:
		return NewMPMC[T](b.opts.capacity)
	}
}

// BuildSPSC creates an SPSC queue with compile-time type safety.
// Panics if builder is not configured with SingleProducer().SingleConsumer().
func BuildSPSC[T any](b *Builder) *SPSCRing[T] {
	if !b.opts.singleProducer || !b.opts.singleConsumer {
		panic("ringq: BuildSPSC requires SingleProducer().SingleConsumer()")
	}
	return NewSPSC[T](b.opts.capacity)
}

// BuildMPSC creates an MPSC queue, returned as a Queue[T].
// Panics if builder is not configured with SingleConsumer() only.
func BuildMPSC[T any](b *Builder) Queue[T] {
	if b.opts.singleProducer || !b.opts.singleConsumer {
		panic("ringq: BuildMPSC requires SingleConsumer() without SingleProducer()")
	}
	if b.opts.compact {
		return NewMPSCSeq[T](b.opts.capacity)
	}
	return NewMPSC[T](b.opts.capacity)
}

// BuildSPMC creates an SPMC queue, returned as a Queue[T].
// Panics if builder is not configured with SingleProducer() only.
func BuildSPMC[T any](b *Builder) Queue[T] {
	if !b.opts.singleProducer || b.opts.singleConsumer {
		panic("ringq: BuildSPMC requires SingleProducer() without SingleConsumer()")
	}
	if b.opts.compact {
		return NewSPMCSeq[T](b.opts.capacity)
	}
	return NewSPMC[T](b.opts.capacity)
}

// BuildMPMC creates an MPMC queue, returned as a Queue[T].
// Panics if builder has any constraints set.
func BuildMPMC[T any](b *Builder) Queue[T] {
	if b.opts.singleProducer || b.opts.singleConsumer {
		panic("ringq: BuildMPMC requires no constraints")
	}
	if b.opts.compact {
		return NewMPMCSeq[T](b.opts.capacity)
	}
	return NewMPMC[T](b.opts.capacity)
}

// BuildBroadcastSPMC creates a BroadcastSPMCRing with compile-time type
// safety. Panics unless the builder is configured with SingleProducer()
// and Broadcast(), and Readers(k) with k >= 1.
func BuildBroadcastSPMC[T any](b *Builder) *BroadcastSPMCRing[T] {
	if !b.opts.singleProducer || b.opts.singleConsumer || !b.opts.broadcast {
		panic("ringq: BuildBroadcastSPMC requires SingleProducer().Broadcast()")
	}
	if b.opts.readers < 1 {
		panic("ringq: BuildBroadcastSPMC requires Readers(k) with k >= 1")
	}
	return NewBroadcastSPMC[T](b.opts.capacity, b.opts.readers)
}

// BuildBroadcastMPMC creates a BroadcastMPMCRing with compile-time type
// safety. Panics unless the builder is configured with Broadcast() and no
// producer/consumer cardinality constraints, and Readers(k) with k >= 1.
func BuildBroadcastMPMC[T any](b *Builder) *BroadcastMPMCRing[T] {
	if b.opts.singleProducer || b.opts.singleConsumer || !b.opts.broadcast {
		panic("ringq: BuildBroadcastMPMC requires Broadcast() with no cardinality constraints")
	}
	if b.opts.readers < 1 {
		panic("ringq: BuildBroadcastMPMC requires Readers(k) with k >= 1")
	}
	return NewBroadcastMPMC[T](b.opts.capacity, b.opts.readers)
}

// BuildIndirectSPSC creates an SPSC queue for uintptr values.
// Panics if builder is not configured with SingleProducer().SingleConsumer().
func (b *Builder) BuildIndirectSPSC() *SPSCIndirectRing {
	if !b.opts.singleProducer || !b.opts.singleConsumer {
		panic("ringq: BuildIndirectSPSC requires SingleProducer().SingleConsumer()")
	}
	return NewSPSCIndirect(b.opts.capacity)
}

// BuildPtrSPSC creates an SPSC queue for unsafe.Pointer values.
// Panics if builder is not configured with SingleProducer().SingleConsumer().
func (b *Builder) BuildPtrSPSC() *SPSCPtrRing {
	if !b.opts.singleProducer || !b.opts.singleConsumer {
		panic("ringq: BuildPtrSPSC requires SingleProducer().SingleConsumer()")
	}
	return NewSPSCPtr(b.opts.capacity)
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// ptrSize is the size of a pointer in bytes.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte

// padPtr is padding to fill cache line after pointer-sized field.
type padPtr [64 - ptrSize]byte
