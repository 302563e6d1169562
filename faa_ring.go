// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// scqSlot is the physical slot shared by every FAA-based (SCQ-style) ring
// topology (MPSCRing, SPMCRing, MPMCRing): a per-slot round counter paired
// with the element, so a claimed-but-unwritten slot can be told apart from
// one that already wrapped around. Capacity n needs 2n of these.
type scqSlot[T any] struct {
	cycle atomix.Uint64
	data  T
	_     padShort
}

// newScqSlots allocates the 2n physical slots for usable capacity n and
// seeds each slot's starting cycle.
func newScqSlots[T any](n, size uint64) []scqSlot[T] {
	buf := make([]scqSlot[T], size)
	for i := uint64(0); i < size; i++ {
		buf[i].cycle.StoreRelaxed(i / n)
	}
	return buf
}

// scqClaim blindly claims the next position via FAA on pos and spins until
// the claimed slot's cycle confirms it is ready, or reports the position
// observably out of range. cycleOffset is 0 for a producer claiming a slot
// to write and 1 for a consumer claiming a slot that a producer must have
// already filled. Used by the producer side of MPSCRing/MPMCRing directly;
// the consumer side additionally needs slot-repair on a stale claim, so it
// is inlined in scqDequeueClaim instead of built on top of this.
func scqClaim[T any](pos *atomix.Uint64, buffer []scqSlot[T], capacity, mask, cycleOffset uint64) (slot *scqSlot[T], myPos uint64, err error) {
	sw := spin.Wait{}
	for {
		myPos = pos.AddAcqRel(1) - 1
		slot = &buffer[myPos&mask]
		expectedCycle := myPos/capacity + cycleOffset
		slotCycle := slot.cycle.LoadAcquire()

		if slotCycle == expectedCycle {
			return slot, myPos, nil
		}
		if int64(slotCycle) < int64(expectedCycle) {
			return nil, myPos, ErrWouldBlock
		}
		sw.Once()
	}
}

// scqDequeueClaim implements the FAA-contended consumer side shared by
// SPMCRing and MPMCRing: it blindly claims positions via FAA on headPos,
// repairs and steps past any stale slot it finds (a producer hasn't caught
// up to it yet), and returns a slot ready to read — or reports the ring
// empty once threshold says further searching would livelock.
//
// tailAcquire selects the load ordering SPMCRing (Relaxed, single producer)
// and MPMCRing (Acquire, multiple producers) each need when consulting
// tail during repair. draining, if non-nil, is consulted so a drained ring
// can bypass the threshold and let consumers empty it completely.
func scqDequeueClaim[T any](headPos, tailPos *atomix.Uint64, buffer []scqSlot[T], capacity, size, mask uint64, threshold *atomix.Int64, tailAcquire bool, draining *atomix.Bool) (slot *scqSlot[T], myHead uint64, err error) {
	sw := spin.Wait{}
	for {
		myHead = headPos.AddAcqRel(1) - 1
		slot = &buffer[myHead&mask]
		expectedCycle := myHead/capacity + 1
		slotCycle := slot.cycle.LoadAcquire()

		if slotCycle == expectedCycle {
			return slot, myHead, nil
		}

		if int64(slotCycle) < int64(expectedCycle) {
			// SCQ slot repair: advance stale slot for future enqueuers
			nextEnqCycle := (myHead + size) / capacity
			slot.cycle.CompareAndSwapAcqRel(slotCycle, nextEnqCycle)

			var tail uint64
			if tailAcquire {
				tail = tailPos.LoadAcquire()
			} else {
				tail = tailPos.LoadRelaxed()
			}
			if tail <= myHead+1 {
				scqCatchup(tailPos, headPos, tail, myHead+1)
				threshold.AddAcqRel(-1)
				return nil, myHead, ErrWouldBlock
			}
			if threshold.AddAcqRel(-1) <= 0 && (draining == nil || !draining.LoadAcquire()) {
				return nil, myHead, ErrWouldBlock
			}
		}
		sw.Once()
	}
}

// scqCatchup nudges tail forward to head when a consumer discovers a slot
// range no producer has claimed yet.
func scqCatchup(tailPos, headPos *atomix.Uint64, tail, head uint64) {
	for tail < head {
		if tailPos.CompareAndSwapRelaxed(tail, head) {
			return
		}
		tail = tailPos.LoadRelaxed()
		head = headPos.LoadRelaxed()
	}
}
