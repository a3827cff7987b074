// Package database owns the gorm connection. DB is set once by Connect and
// swapped by testkit.FreshDB in tests.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/cafe/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ErrNotConnected is returned by Ping before Connect succeeds.
var ErrNotConnected = errors.New("database: not connected")

// Pool holds the connection-pool limits read from config.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

func poolFromConfig() Pool {
	return Pool{
		MaxOpen:     config.Int("DB_MAX_OPEN_CONNS", 25),
		MaxIdle:     config.Int("DB_MAX_IDLE_CONNS", 10),
		MaxLifetime: config.Duration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		MaxIdleTime: config.Duration("DB_CONN_MAX_IDLE_TIME", 2*time.Minute),
	}
}

// Connect opens the configured database, applies the pool limits and pings
// it before installing it as DB.
func Connect(ctx context.Context) error {
	dialector, err := dialectorFor(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return err
	}
	db, err := Open(dialector)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database: sql handle: %w", err)
	}
	p := poolFromConfig()
	sqlDB.SetMaxOpenConns(p.MaxOpen)
	sqlDB.SetMaxIdleConns(p.MaxIdle)
	sqlDB.SetConnMaxLifetime(p.MaxLifetime)
	sqlDB.SetConnMaxIdleTime(p.MaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("database: ping %s: %w", config.DatabaseDriver(), err)
	}

	DB = db
	return nil
}

// Open returns a *gorm.DB logging through pkg/logger with the query metric
// callbacks installed. DB is left untouched.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(config.Duration("DB_SLOW_QUERY", 200*time.Millisecond)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", dialector.Name(), err)
	}
	if err := instrument(db); err != nil {
		return nil, fmt.Errorf("database: callbacks: %w", err)
	}
	return db, nil
}

// Ping checks the live connection. The health probes call it.
func Ping(ctx context.Context) error {
	if DB == nil {
		return ErrNotConnected
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool. Safe to call when never connected.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQLite is the dialector tests open in-memory databases with.
func SQLite(dsn string) gorm.Dialector { return sqlite.Open(dsn) }

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	}
	return nil, fmt.Errorf("database: unsupported DB_DRIVER %q", driver)
}
