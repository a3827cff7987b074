// Package workerpool runs background tasks on a fixed number of goroutines.
// The event dispatcher uses it so a burst of orders cannot spawn an
// unbounded number of listener goroutines.
package workerpool

import (
	"errors"
	"sync"

	"github.com/shashiranjanraj/cafe/pkg/logger"
)

var (
	ErrPoolFull   = errors.New("workerpool: pool is full")
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

type Pool struct {
	name     string
	tasks    chan func()
	workers  sync.WaitGroup
	inflight sync.WaitGroup

	// mu guards closed; senders hold it shared so tasks is never closed
	// under them.
	mu     sync.RWMutex
	closed bool
}

// New starts size workers. The task buffer holds twice that many tasks.
func New(name string, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{
		name:  name,
		tasks: make(chan func(), size*2),
	}
	p.workers.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	p.inflight.Add(1)
	select {
	case p.tasks <- task:
		return nil
	default:
		p.inflight.Done()
		return ErrPoolFull
	}
}

// SubmitWait blocks until the task is queued.
func (p *Pool) SubmitWait(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	p.inflight.Add(1)
	p.tasks <- task
	return nil
}

// Wait blocks until every queued task has finished. New tasks may still be
// submitted afterwards.
func (p *Pool) Wait() {
	p.inflight.Wait()
}

// Shutdown stops accepting tasks, drains the queue and stops the workers.
// Safe to call more than once.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.workers.Wait()
}

func (p *Pool) worker() {
	defer p.workers.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	defer p.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.L.Error("workerpool: task panicked", "pool", p.name, "panic", r)
		}
	}()
	task()
}
