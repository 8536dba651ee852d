package sqlite

import (
	"fmt"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates a GORM *DB backed by a SQLite file.
func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

var memSeq atomic.Int64

// OpenMemory creates an in-memory database. The unique name keeps
// separate calls isolated; cache=shared plus a single pooled connection
// keeps every goroutine on the same database, since a plain :memory:
// DSN gives each new pool connection its own empty one.
func OpenMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:memdb%d?mode=memory&cache=shared", memSeq.Add(1))
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
