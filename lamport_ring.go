// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "code.hybscloud.com/atomix"

// lamportRing is the index state shared by every SPSC layout: one producer
// and one consumer, each caching the peer's index and only reloading it
// (with acquire ordering) when the cached value would otherwise report the
// ring full or empty. Because both sides are single actors, no CAS or FAA
// is needed on either index — a plain load/store pair per operation
// suffices.
//
// The three SPSC storage flavors (generic T, uintptr, unsafe.Pointer) embed
// this and add only their own slice.
type lamportRing struct {
	_          pad
	head       atomix.Uint64 // consumer's own index
	_          pad
	cachedTail uint64 // consumer's cached view of the producer's index
	_          pad
	tail       atomix.Uint64 // producer's own index
	_          pad
	cachedHead uint64 // producer's cached view of the consumer's index
	_          pad
	mask       uint64
}

func newLamportRing(n uint64) lamportRing {
	return lamportRing{mask: n - 1}
}

// claimWrite reserves the next slot for the producer. Returns false if the
// ring is full, reloading the consumer's index first in case it has moved
// since the last cached value was taken.
func (r *lamportRing) claimWrite() (pos uint64, ok bool) {
	tail := r.tail.LoadRelaxed()
	if tail-r.cachedHead > r.mask {
		r.cachedHead = r.head.LoadAcquire()
		if tail-r.cachedHead > r.mask {
			return 0, false
		}
	}
	return tail, true
}

// commitWrite publishes pos+1 as the new producer index with release
// ordering, making the slot written at pos visible to the consumer.
func (r *lamportRing) commitWrite(pos uint64) {
	r.tail.StoreRelease(pos + 1)
}

// claimRead reserves the next slot for the consumer. Returns false if the
// ring is empty, reloading the producer's index first in case it has moved.
func (r *lamportRing) claimRead() (pos uint64, ok bool) {
	head := r.head.LoadRelaxed()
	if head >= r.cachedTail {
		r.cachedTail = r.tail.LoadAcquire()
		if head >= r.cachedTail {
			return 0, false
		}
	}
	return head, true
}

// commitRead publishes pos+1 as the new consumer index with release
// ordering, making the slot available for the producer to reuse.
func (r *lamportRing) commitRead(pos uint64) {
	r.head.StoreRelease(pos + 1)
}

func (r *lamportRing) Cap() int {
	return int(r.mask + 1)
}
