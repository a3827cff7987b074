package testkit

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shashiranjanraj/cafe/pkg/cache"
	"github.com/shashiranjanraj/cafe/pkg/database"
	"github.com/shashiranjanraj/cafe/pkg/migration"
	"github.com/shashiranjanraj/cafe/pkg/queue"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// FreshDB opens a private in-memory SQLite database, runs every registered
// migration against it and installs it as database.DB for the duration of
// the test. The cache is flushed as well so cached menu reads cannot leak
// between tests.
//
// Migrations register themselves from init, so callers blank-import them:
//
//	import _ "github.com/shashiranjanraj/cafe/database/migrations"
func FreshDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:cafe_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := database.Open(database.SQLite(name))
	if err != nil {
		t.Fatalf("testkit: open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("testkit: sql.DB: %v", err)
	}
	// One connection keeps the in-memory database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)

	if err := migration.New(db).Run(context.Background()); err != nil && !errors.Is(err, migration.ErrNoMigrations) {
		t.Fatalf("testkit: migrate: %v", err)
	}

	prev := database.DB
	database.DB = db
	queue.UseDB(db)
	cache.Flush()

	t.Cleanup(func() {
		database.DB = prev
		queue.UseDB(nil)
		cache.Flush()
		sqlDB.Close()
	})
	return db
}
