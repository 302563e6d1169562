// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package executor provides a fixed-size worker pool backed by an
// [code.hybscloud.com/ringq.MPMCRing], with results delivered through a
// generic one-shot [Future].
package executor

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/ringq"
)

// ErrPoolClosed is the error carried by the Future that Submit returns once
// Close has been called.
var ErrPoolClosed = errors.New("ringq/executor: pool is closed")

// task is the type-erased unit of work held in the pool's queue. Each
// concrete task knows how to report its own result or panic into its
// Future; the pool only needs to run it.
type task interface {
	run()
}

// Pool is a fixed pool of worker goroutines pulling from a shared,
// lock-free MPMC task queue.
type Pool struct {
	queue  *ringq.MPMCRing[task]
	stopCh chan struct{}
	closed atomic.Bool
	wg     sync.WaitGroup
}

// NewPool starts a pool of workers goroutines pulling from a queue with
// the given capacity (rounded up to the next power of 2, per ringq's
// convention).
func NewPool(workers, queueCapacity int) *Pool {
	if workers < 1 {
		panic("ringq/executor: workers must be >= 1")
	}
	p := &Pool{
		queue:  ringq.NewMPMC[task](queueCapacity),
		stopCh: make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.workerLoop()
	}
	return p
}

func (p *Pool) workerLoop() {
	defer p.wg.Done()
	backoff := iox.Backoff{}
	for {
		t, err := p.queue.Dequeue()
		if err != nil {
			if !ringq.IsWouldBlock(err) {
				return
			}
			select {
			case <-p.stopCh:
				return
			default:
			}
			backoff.Wait()
			continue
		}
		backoff.Reset()
		p.runTask(t)
	}
}

// runTask executes t, recovering from any panic that escapes t.run itself
// (which should already have recovered into its own Future) so a buggy
// task can never take a worker goroutine down with it.
func (p *Pool) runTask(t task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ringq/executor: task panicked: %v", r)
		}
	}()
	t.run()
}

// Close stops accepting new tasks, drains the queue of everything already
// submitted, and waits for all workers to exit.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.queue.Drain()
	close(p.stopCh)
	p.wg.Wait()
}
