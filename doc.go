// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ringq provides fixed-capacity, lock-free ring buffers for every
// producer/consumer cardinality, plus a task executor built on top of one
// of them.
//
// Four ring topologies are offered, matching the four combinations of
// producer and consumer cardinality:
//
//   - SPSC: Single-Producer Single-Consumer
//   - MPSC: Multi-Producer Single-Consumer
//   - SPMC: Single-Producer Multi-Consumer
//   - MPMC: Multi-Producer Multi-Consumer
//
// The two multi-consumer topologies (SPMC, MPMC) additionally come in two
// transmission modes:
//
//   - Unicast: each pushed value is delivered to exactly one consumer.
//   - Broadcast: each pushed value is delivered to every registered
//     reader, addressed by a caller-supplied reader id.
//
// # Quick Start
//
//	q := ringq.NewSPSC[Event](1024)
//	q := ringq.NewMPMC[*Request](4096)
//	q := ringq.NewBroadcastSPMC[Tick](1024, 3) // 3 readers
//
// Builder API auto-selects the algorithm from constraints:
//
//	q := ringq.Build[Event](ringq.New(1024).SingleProducer().SingleConsumer())  // → SPSC
//	q := ringq.Build[Event](ringq.New(1024).SingleConsumer())                   // → MPSC
//	q := ringq.Build[Event](ringq.New(1024).SingleProducer())                   // → SPMC (unicast)
//	q := ringq.Build[Event](ringq.New(1024))                                    // → MPMC (unicast)
//
// # Basic Usage
//
// Every unicast ring shares the same push/pop interface:
//
//	value := 42
//	if err := q.Enqueue(&value); ringq.IsWouldBlock(err) {
//	    // full — back off and retry
//	}
//	elem, err := q.Dequeue()
//	if ringq.IsWouldBlock(err) {
//	    // empty — back off and retry
//	}
//
// DequeueInto is Dequeue with caller-provided storage, for callers that
// already have a T to overwrite:
//
//	var elem Event
//	if q.DequeueInto(&elem) {
//	    // use elem
//	}
//
// Broadcast rings are addressed per reader:
//
//	q := ringq.NewBroadcastSPMC[Tick](1024, 3)
//	q.Enqueue(&tick)                 // ErrWouldBlock when the slowest reader is N behind
//	q.EnqueueOverwrite(&tick)        // never fails; may clip a slow reader
//	v, err := q.Dequeue(readerID)
//	v, err = q.DequeueOverwrite(readerID) // signals loss by returning ErrWouldBlock once
//
// # Worker Pool
//
// Pipeline Stage (SPSC), Event Aggregation (MPSC), Work Distribution
// (SPMC unicast), Worker Pool (MPMC unicast), and Fan-out (SPMC/MPMC
// broadcast) all follow the same shape: producers loop on Enqueue with
// backoff, consumers loop on Dequeue with backoff.
//
//	q := ringq.NewMPMC[Job](4096)
//	backoff := iox.Backoff{}
//	for q.Enqueue(&job) != nil {
//	    backoff.Wait()
//	}
//
// The executor package builds a fixed worker pool directly on top of an
// MPMC unicast ring (see code.hybscloud.com/ringq/executor):
//
//	pool := executor.NewPool(4, 1024)
//	defer pool.Close()
//	future := executor.Submit(pool, func() (int, error) { return 42, nil })
//	result, err := future.Wait()
//
// # Algorithm Selection
//
// The MPSC, SPMC and MPMC unicast rings each ship in two physical layouts:
//
//	Default (FAA):    2n physical slots, fetch-and-add claims, per-slot
//	                  cycle counter for ABA-safe reuse. Best under high
//	                  contention.
//	Compact (Seq):    n physical slots, CAS claims, per-slot sequence
//	                  number for the same ABA safety at half the memory.
//
// The Compact/Seq layout is selected with Compact() on the builder, or by
// calling the *Seq constructors directly (NewMPSCSeq, NewSPMCSeq,
// NewMPMCSeq). SPSC has no Compact variant — its Lamport ring buffer is
// already n slots.
//
// Broadcast rings have no FAA layout: the broadcast producer-side algorithm
// is the same either way (see BroadcastSPMCRing, BroadcastMPMCRing).
//
// # Error Handling
//
// Rings return ErrWouldBlock when an operation cannot proceed immediately.
// This is a control-flow signal, not a failure — callers are expected to
// retry with backoff:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Enqueue(&item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if !ringq.IsWouldBlock(err) {
//	        return err
//	    }
//	    backoff.Wait()
//	}
//
// # Capacity
//
// Capacity rounds up to the next power of 2 and must be at least 2.
// Broadcast SPMC additionally requires capacity strictly greater than the
// reader-cursor refresh interval (64) — see BroadcastSPMCRing.
//
// Length is intentionally not provided: an accurate occupancy count in a
// lock-free ring requires cross-core synchronization the algorithms are
// explicitly designed to avoid.
//
// # Graceful Shutdown
//
// SPMCRing and MPMCRing implement Drainer with real effect: after producers
// have finished, call Drain so consumers can fully empty the ring without
// the livelock-prevention threshold returning early ErrWouldBlock while
// items remain. MPSCRing also implements Drainer, but only as a
// documentation hint — its single uncontended consumer has no threshold to
// bypass. The Compact/Seq variants and SPSCRing implement no threshold at
// all, so they do not implement Drainer.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channel, WaitGroup) but not the acquire/release orderings these rings
// establish through atomic loads and stores on plain memory. Concurrent
// tests and examples that would otherwise false-positive are built with
// //go:build !race, matching the layout used throughout this package.
//
// # Dependencies
//
// This package uses code.hybscloud.com/iox for semantic errors,
// code.hybscloud.com/atomix for atomics with explicit memory ordering, and
// code.hybscloud.com/spin for CPU pause instructions in CAS retry loops.
package ringq
