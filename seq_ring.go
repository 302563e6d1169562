// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// seqSlot is the physical slot shared by every Compact (CAS-based) ring
// topology (MPSCSeqRing, SPMCSeqRing, MPMCSeqRing): a per-slot sequence
// number paired with the element. Capacity n needs exactly n of these, half
// the FAA family's 2n.
type seqSlot[T any] struct {
	seq  atomix.Uint64
	data T
	_    padShort
}

// newSeqSlots allocates the n physical slots for capacity n and seeds each
// slot's starting sequence.
func newSeqSlots[T any](n uint64) []seqSlot[T] {
	buf := make([]seqSlot[T], n)
	for i := uint64(0); i < n; i++ {
		buf[i].seq.StoreRelaxed(i)
	}
	return buf
}

// seqClaimWrite retries a CAS on pos until it wins a slot whose sequence
// confirms it is free to write, or observes the ring full. Shared by the
// contended producer side of MPSCSeqRing and MPMCSeqRing.
func seqClaimWrite[T any](pos *atomix.Uint64, buffer []seqSlot[T], mask uint64) (slot *seqSlot[T], claimed uint64, err error) {
	sw := spin.Wait{}
	for {
		p := pos.LoadAcquire()
		slot = &buffer[p&mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(p)

		if diff == 0 {
			if pos.CompareAndSwapAcqRel(p, p+1) {
				return slot, p, nil
			}
		} else if diff < 0 {
			return nil, p, ErrWouldBlock
		}
		sw.Once()
	}
}

// seqClaimRead retries a CAS on pos until it wins a slot whose sequence
// confirms an element is ready, or observes the ring empty. Shared by the
// contended consumer side of SPMCSeqRing and MPMCSeqRing.
func seqClaimRead[T any](pos *atomix.Uint64, buffer []seqSlot[T], mask uint64) (slot *seqSlot[T], claimed uint64, err error) {
	sw := spin.Wait{}
	for {
		p := pos.LoadAcquire()
		slot = &buffer[p&mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(p+1)

		if diff == 0 {
			if pos.CompareAndSwapAcqRel(p, p+1) {
				return slot, p, nil
			}
		} else if diff < 0 {
			return nil, p, ErrWouldBlock
		}
		sw.Once()
	}
}
