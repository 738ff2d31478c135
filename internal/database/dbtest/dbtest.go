// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// Open returns a fresh in-memory database migrated for models. It has a single
// connection, so statements from concurrent goroutines run one at a time.
func Open(t testing.TB, models ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:dbtest_%d?mode=memory&cache=shared&_busy_timeout=5000", seq.Add(1))
	return open(t, dsn, 1, models)
}

// OpenConcurrent returns a file-backed WAL database with several connections,
// so conditional updates from concurrent goroutines really interleave.
// Transactions begin IMMEDIATE and wait on each other through the busy timeout.
func OpenConcurrent(t testing.TB, models ...any) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "concurrent.db")
	dsn := "file:" + path + "?_journal_mode=WAL&_busy_timeout=10000&_txlock=immediate"
	return open(t, dsn, 8, models)
}

func open(t testing.TB, dsn string, conns int, models []any) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
