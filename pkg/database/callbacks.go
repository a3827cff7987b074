package database

import (
	"errors"
	"time"

	"github.com/shashiranjanraj/cafe/pkg/metrics"
	"gorm.io/gorm"
)

const startedAtKey = "cafe:started_at"

func markStart(tx *gorm.DB) { tx.InstanceSet(startedAtKey, time.Now()) }

func observe(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		if start, ok := v.(time.Time); ok {
			metrics.ObserveDBQuery(op, start)
		}
	}
}

// instrument times every statement gorm runs, raw SQL included.
func instrument(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Query().Before("gorm:query").Register("cafe:start_select", markStart),
		cb.Query().After("gorm:query").Register("cafe:observe_select", observe("select")),
		cb.Create().Before("gorm:create").Register("cafe:start_insert", markStart),
		cb.Create().After("gorm:create").Register("cafe:observe_insert", observe("insert")),
		cb.Update().Before("gorm:update").Register("cafe:start_update", markStart),
		cb.Update().After("gorm:update").Register("cafe:observe_update", observe("update")),
		cb.Delete().Before("gorm:delete").Register("cafe:start_delete", markStart),
		cb.Delete().After("gorm:delete").Register("cafe:observe_delete", observe("delete")),
		cb.Raw().Before("gorm:raw").Register("cafe:start_raw", markStart),
		cb.Raw().After("gorm:raw").Register("cafe:observe_raw", observe("raw")),
	)
}
