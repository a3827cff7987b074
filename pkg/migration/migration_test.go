package migration

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shashiranjanraj/cafe/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type table struct {
	name string
	fail bool
}

func (m table) Up(db *gorm.DB) error {
	if m.fail {
		if err := db.Exec("CREATE TABLE " + m.name + " (id INTEGER)").Error; err != nil {
			return err
		}
		return errors.New("boom")
	}
	return db.Exec("CREATE TABLE " + m.name + " (id INTEGER)").Error
}

func (m table) Down(db *gorm.DB) error {
	return db.Exec("DROP TABLE " + m.name).Error
}

func withRegistry(t *testing.T, migrations map[string]Migration) *gorm.DB {
	t.Helper()
	regMu.Lock()
	prev := registry
	registry = migrations
	regMu.Unlock()
	t.Cleanup(func() {
		regMu.Lock()
		registry = prev
		regMu.Unlock()
	})

	db, err := database.Open(database.SQLite("file:" + t.Name() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestRunBatchesAndRollback(t *testing.T) {
	ctx := context.Background()
	migrations := map[string]Migration{
		"20260101000000_a": table{name: "a"},
		"20260101000001_b": table{name: "b"},
	}
	db := withRegistry(t, migrations)

	var out bytes.Buffer
	r := New(db).Verbose(&out)
	require.NoError(t, r.Run(ctx))
	assert.Contains(t, out.String(), "migrated  20260101000000_a")

	Register("20260101000002_c", table{name: "c"})
	require.NoError(t, r.Run(ctx))

	states, err := r.Status(ctx)
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.Equal(t, 1, states[0].Batch)
	assert.Equal(t, 1, states[1].Batch)
	assert.Equal(t, 2, states[2].Batch)

	require.NoError(t, r.Rollback(ctx, 1))
	assert.False(t, db.Migrator().HasTable("c"))
	assert.True(t, db.Migrator().HasTable("a"))

	states, err = r.Status(ctx)
	require.NoError(t, err)
	assert.False(t, states[2].Ran)

	require.NoError(t, r.Rollback(ctx, 5))
	assert.False(t, db.Migrator().HasTable("a"))
	assert.False(t, db.Migrator().HasTable("b"))
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	db := withRegistry(t, map[string]Migration{
		"20260101000000_ok":  table{name: "ok"},
		"20260101000001_bad": table{name: "bad", fail: true},
	})

	err := New(db).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "20260101000001_bad")

	states, err := New(db).Status(ctx)
	require.NoError(t, err)
	assert.True(t, states[0].Ran)
	assert.False(t, states[1].Ran)
	assert.False(t, db.Migrator().HasTable("bad"))
}

func TestRunWithoutMigrations(t *testing.T) {
	db := withRegistry(t, map[string]Migration{})
	assert.ErrorIs(t, New(db).Run(context.Background()), ErrNoMigrations)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	withRegistry(t, map[string]Migration{})
	Register("x", table{name: "x"})
	assert.Panics(t, func() { Register("x", table{name: "x"}) })
}
