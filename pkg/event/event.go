// Package event is an in-process publish/subscribe dispatcher for domain
// events such as "order.placed". Listeners register at boot; services fire
// after their transaction commits.
package event

import (
	"errors"
	"sync"

	"github.com/shashiranjanraj/cafe/pkg/logger"
	"github.com/shashiranjanraj/cafe/pkg/workerpool"
)

// Handler receives an event payload.
type Handler func(payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
	pool     *workerpool.Pool
)

// Listen registers handler for name.
func Listen(name string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[name] = append(handlers[name], handler)
}

func listeners(name string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	hs := make([]Handler, len(handlers[name]))
	copy(hs, handlers[name])
	return hs
}

// Fire runs every listener for name on the calling goroutine.
func Fire(name string, payload interface{}) {
	for _, h := range listeners(name) {
		h(payload)
	}
}

// UsePool routes FireAsync through p. Without a pool FireAsync starts one
// goroutine per listener.
func UsePool(p *workerpool.Pool) {
	mu.Lock()
	pool = p
	mu.Unlock()
}

// FireAsync hands every listener for name to the pool and returns at once.
// When the pool is saturated the listener runs inline rather than being
// dropped.
func FireAsync(name string, payload interface{}) {
	mu.RLock()
	p := pool
	mu.RUnlock()

	for _, h := range listeners(name) {
		h := h
		task := func() { h(payload) }
		if p == nil {
			go task()
			continue
		}
		if err := p.Submit(task); err != nil {
			if errors.Is(err, workerpool.ErrPoolFull) {
				logger.Warn("event: pool full, running listener inline", "event", name)
			}
			task()
		}
	}
}

// Wait blocks until the pool has run every listener fired so far. It is a
// no-op without a pool.
func Wait() {
	mu.RLock()
	p := pool
	mu.RUnlock()
	if p != nil {
		p.Wait()
	}
}

// Flush removes every listener.
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
