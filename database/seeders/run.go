// Package seeders fills a fresh database with the admin account and a
// starter menu. Every seeder is idempotent so `cafe seed` can be re-run.
package seeders

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/cafe/pkg/logger"
)

type Seeder func(db *gorm.DB) error

type named struct {
	name string
	run  Seeder
}

var (
	mu       sync.Mutex
	registry []named
)

// Register is called from init in this package's files.
func Register(name string, fn Seeder) {
	mu.Lock()
	defer mu.Unlock()
	registry = append(registry, named{name: name, run: fn})
}

// Names lists registered seeders in run order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, len(registry))
	for i, s := range registry {
		out[i] = s.name
	}
	return out
}

// RunAll runs the registered seeders in order, or just those named in only,
// stopping at the first failure.
func RunAll(db *gorm.DB, only ...string) error {
	mu.Lock()
	list := slices.Clone(registry)
	mu.Unlock()

	for _, want := range only {
		if !slices.ContainsFunc(list, func(s named) bool { return s.name == want }) {
			return fmt.Errorf("seeders: unknown seeder %q", want)
		}
	}

	for _, s := range list {
		if len(only) > 0 && !slices.Contains(only, s.name) {
			continue
		}
		start := time.Now()
		if err := s.run(db); err != nil {
			return fmt.Errorf("seeders: %s: %w", s.name, err)
		}
		logger.Info("seeders: done", "seeder", s.name, "took", time.Since(start).Round(time.Millisecond))
	}
	return nil
}
