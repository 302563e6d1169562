// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq_test

import (
	"fmt"
	"testing"

	"code.hybscloud.com/ringq"
)

func TestBuilderAlgorithmSelection(t *testing.T) {
	cases := []struct {
		name string
		b    *ringq.Builder
		want string
	}{
		{"spsc", ringq.New(8).SingleProducer().SingleConsumer(), "*ringq.SPSCRing[int]"},
		{"mpsc", ringq.New(8).SingleConsumer(), "*ringq.MPSCRing[int]"},
		{"spmc", ringq.New(8).SingleProducer(), "*ringq.SPMCRing[int]"},
		{"mpmc", ringq.New(8), "*ringq.MPMCRing[int]"},
		{"mpmc-compact", ringq.New(8).Compact(), "*ringq.MPMCSeqRing[int]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q := ringq.Build[int](c.b)
			if got := fmt.Sprintf("%T", q); got != c.want {
				t.Fatalf("type: got %s, want %s", got, c.want)
			}
			if q.Cap() != 8 {
				t.Fatalf("Cap: got %d, want 8", q.Cap())
			}
		})
	}
}

func TestBuilderCapacityPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for capacity < 2")
		}
	}()
	ringq.New(1)
}

func TestBuilderBroadcast(t *testing.T) {
	q := ringq.BuildBroadcastSPMC[int](ringq.New(128).SingleProducer().Broadcast().Readers(3))
	if q.Cap() != 128 || q.Readers() != 3 {
		t.Fatalf("got Cap=%d Readers=%d, want 128, 3", q.Cap(), q.Readers())
	}

	mq := ringq.BuildBroadcastMPMC[int](ringq.New(64).Broadcast().Readers(2))
	if mq.Cap() != 64 || mq.Readers() != 2 {
		t.Fatalf("got Cap=%d Readers=%d, want 64, 2", mq.Cap(), mq.Readers())
	}
}

func TestBuilderMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for SingleProducer used with BuildMPSC")
		}
	}()
	ringq.BuildMPSC[int](ringq.New(8).SingleProducer())
}
