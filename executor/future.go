// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package executor

import (
	"fmt"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/ringq"
)

// Future is a one-shot handle to the result of a task submitted with
// Submit. The result is read through Wait, which blocks until Done is
// closed.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Wait blocks until the task completes and returns its result.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.value, f.err
}

// Done returns a channel that closes once the task has completed,
// successfully, with an error, or via a recovered panic.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// submittedTask adapts a typed fn/Future pair to the pool's type-erased
// task interface.
type submittedTask[T any] struct {
	fn     func() (T, error)
	future *Future[T]
}

func (t *submittedTask[T]) run() {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			t.future.value = zero
			t.future.err = fmt.Errorf("ringq/executor: task panicked: %v", r)
		}
		close(t.future.done)
	}()
	t.future.value, t.future.err = t.fn()
}

// Submit enqueues fn for execution by the pool and returns immediately
// with a Future for its result. Submit retries with backoff while the
// pool's queue is full, and returns an already-failed Future carrying
// ErrPoolClosed if the pool has been closed.
func Submit[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	var t task = &submittedTask[T]{fn: fn, future: f}

	backoff := iox.Backoff{}
	for {
		if p.closed.Load() {
			f.err = ErrPoolClosed
			close(f.done)
			return f
		}
		err := p.queue.Enqueue(&t)
		if err == nil {
			return f
		}
		if !ringq.IsWouldBlock(err) {
			f.err = err
			close(f.done)
			return f
		}
		backoff.Wait()
	}
}
