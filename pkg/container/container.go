// Package container is the service registry the providers fill at boot.
// Bindings are keyed by name and resolved with a type parameter:
//
//	container.Singleton("services.cart", services.NewCartService)
//	cart := container.Make[*services.CartService]("services.cart")
package container

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnbound  = errors.New("container: unbound key")
	ErrMismatch = errors.New("container: type mismatch")
	ErrCycle    = errors.New("container: dependency cycle")
)

type binding struct {
	build    func() any
	shared   bool
	once     sync.Once
	instance any
	building bool
}

var (
	mu       sync.RWMutex
	bindings = map[string]*binding{}
)

// Bind registers a factory that runs on every resolve.
func Bind[T any](key string, factory func() T) {
	put(key, &binding{build: func() any { return factory() }})
}

// Singleton registers a factory that runs on first resolve only. It may
// resolve its own dependencies.
func Singleton[T any](key string, factory func() T) {
	put(key, &binding{build: func() any { return factory() }, shared: true})
}

// Instance registers an already built value.
func Instance[T any](key string, v T) {
	b := &binding{shared: true, instance: v}
	b.once.Do(func() {})
	put(key, b)
}

func put(key string, b *binding) {
	mu.Lock()
	bindings[key] = b
	mu.Unlock()
}

// Resolve builds or returns the value bound to key as a T.
func Resolve[T any](key string) (T, error) {
	var zero T

	mu.Lock()
	b, ok := bindings[key]
	if ok && b.building {
		mu.Unlock()
		return zero, fmt.Errorf("%w at %q", ErrCycle, key)
	}
	mu.Unlock()
	if !ok {
		return zero, fmt.Errorf("%w %q", ErrUnbound, key)
	}

	var v any
	if b.shared {
		b.once.Do(func() {
			setBuilding(b, true)
			defer setBuilding(b, false)
			b.instance = b.build()
		})
		v = b.instance
	} else {
		v = b.build()
	}

	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q holds %T, want %T", ErrMismatch, key, v, zero)
	}
	return t, nil
}

func setBuilding(b *binding, on bool) {
	mu.Lock()
	b.building = on
	mu.Unlock()
}

// Make is Resolve for wiring code, where a missing binding is a
// programming error.
func Make[T any](key string) T {
	v, err := Resolve[T](key)
	if err != nil {
		panic(err)
	}
	return v
}

func Has(key string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := bindings[key]
	return ok
}

// Reset drops every binding.
func Reset() {
	mu.Lock()
	bindings = map[string]*binding{}
	mu.Unlock()
}
