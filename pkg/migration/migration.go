// Package migration applies schema changes in numbered batches and records
// them in the cafe_migrations table.
//
// Migrations register from init() in database/migrations:
//
//	func init() {
//	    migration.Register("20260101000000_create_users_table", &CreateUsersTable{})
//	}
package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/shashiranjanraj/cafe/pkg/logger"
	"gorm.io/gorm"
)

// ErrNoMigrations is returned by Run when nothing is registered.
var ErrNoMigrations = errors.New("migration: no migrations registered")

type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type record struct {
	ID    uint      `gorm:"primaryKey"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null;index"`
	RanAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "cafe_migrations" }

// ─── Registry ────────────────────────────────────────────────────────────────

var (
	regMu    sync.Mutex
	registry = map[string]Migration{}
)

// Register adds m under name. Names sort chronologically, so prefix them
// with a timestamp. Registering a name twice panics.
func Register(name string, m Migration) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("migration: duplicate name " + name)
	}
	registry[name] = m
}

func names() []string {
	regMu.Lock()
	defer regMu.Unlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func lookup(name string) (Migration, bool) {
	regMu.Lock()
	defer regMu.Unlock()
	m, ok := registry[name]
	return m, ok
}

// ─── Runner ──────────────────────────────────────────────────────────────────

type Runner struct {
	db  *gorm.DB
	out io.Writer
}

// New returns a silent runner; see Verbose.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db, out: io.Discard}
}

// Verbose prints one line per applied or reverted migration to w.
func (r *Runner) Verbose(w io.Writer) *Runner {
	r.out = w
	return r
}

// State is one row of Status.
type State struct {
	Name  string
	Ran   bool
	Batch int
	RanAt time.Time
}

func (r *Runner) applied(ctx context.Context) (map[string]record, error) {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migration: tracking table: %w", err)
	}
	var rows []record
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: load history: %w", err)
	}
	out := make(map[string]record, len(rows))
	for _, row := range rows {
		out[row.Name] = row
	}
	return out, nil
}

// Run applies every pending migration as one new batch. Each migration and
// its history row commit together.
func (r *Runner) Run(ctx context.Context) error {
	all := names()
	if len(all) == 0 {
		return ErrNoMigrations
	}
	done, err := r.applied(ctx)
	if err != nil {
		return err
	}

	batch := 1
	for _, row := range done {
		batch = max(batch, row.Batch+1)
	}

	ran := 0
	for _, name := range all {
		if _, ok := done[name]; ok {
			continue
		}
		m, _ := lookup(name)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&record{Name: name, Batch: batch}).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s: %w", name, err)
		}
		ran++
		fmt.Fprintf(r.out, "migrated  %s\n", name)
	}

	if ran == 0 {
		fmt.Fprintln(r.out, "nothing to migrate")
		return nil
	}
	logger.Info("migration: applied", "count", ran, "batch", batch)
	return nil
}

// Rollback reverts the last steps batches, newest migration first.
func (r *Runner) Rollback(ctx context.Context, steps int) error {
	if steps < 1 {
		steps = 1
	}
	done, err := r.applied(ctx)
	if err != nil {
		return err
	}

	rows := make([]record, 0, len(done))
	for _, row := range done {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Batch != rows[j].Batch {
			return rows[i].Batch > rows[j].Batch
		}
		return rows[i].Name > rows[j].Name
	})

	var batches []int
	for _, row := range rows {
		if len(batches) == 0 || batches[len(batches)-1] != row.Batch {
			if len(batches) == steps {
				break
			}
			batches = append(batches, row.Batch)
		}

		m, ok := lookup(row.Name)
		if !ok {
			return fmt.Errorf("migration: %s is recorded but not registered", row.Name)
		}
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&record{}, row.ID).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s down: %w", row.Name, err)
		}
		fmt.Fprintf(r.out, "reverted  %s\n", row.Name)
	}

	if len(batches) == 0 {
		fmt.Fprintln(r.out, "nothing to roll back")
	}
	return nil
}

// Status lists every registered migration in order.
func (r *Runner) Status(ctx context.Context) ([]State, error) {
	done, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	all := names()
	out := make([]State, 0, len(all))
	for _, name := range all {
		st := State{Name: name}
		if row, ok := done[name]; ok {
			st.Ran, st.Batch, st.RanAt = true, row.Batch, row.RanAt
		}
		out = append(out, st)
	}
	return out, nil
}
