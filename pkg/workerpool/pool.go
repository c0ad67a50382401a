// Package workerpool bounds concurrent fan-out work. The reservation
// feed uses one to deliver "reservation.received" events without
// spawning a goroutine per record during a busy service.
//
//	pool := workerpool.New(8)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(deliver); errors.Is(err, workerpool.ErrPoolFull) {
//	    // backpressure: drop or retry later
//	}
package workerpool

import (
	"errors"
	"sync"
)

// ErrPoolFull is returned by Submit when every worker is busy and the
// queue has no room.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool runs submitted tasks on a fixed set of worker goroutines.
type Pool struct {
	queue  chan func()
	closed chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// New starts a pool with n workers and a queue of 2n pending tasks.
func New(n int) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{
		queue:  make(chan func(), n*2),
		closed: make(chan struct{}),
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.work()
	}
	return p
}

// Submit enqueues task without blocking. It returns ErrPoolFull when the
// queue is at capacity and ErrPoolClosed after Shutdown.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.closed:
		return ErrPoolClosed
	default:
	}
	select {
	case p.queue <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until the task is queued or the pool shuts down.
func (p *Pool) SubmitWait(task func()) error {
	select {
	case <-p.closed:
		return ErrPoolClosed
	case p.queue <- task:
		return nil
	}
}

// Shutdown rejects further tasks, drains the queue, and waits for the
// workers to exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closed)
		close(p.queue)
		p.wg.Wait()
	})
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.queue {
		run(task)
	}
}

// run shields the worker from a panicking task.
func run(task func()) {
	defer func() { recover() }() //nolint:errcheck
	task()
}
