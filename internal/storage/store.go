// Package storage owns the durable keyed store backing all collections.
// It is a thin layer over a sqlite database: repositories provide the
// typed access paths, this package provides durability, schema setup and
// the atomic multi-collection transaction primitive.
package storage

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	expenseDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/expense"
	jobDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/job"
	workentryDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/workentry"
)

// Store wraps the sqlite database holding the jobs, work_entries and
// expenses collections.
type Store struct {
	db *gorm.DB
}

// Open creates or opens the sqlite database at path (":memory:" for an
// ephemeral store), applies pragmas and migrates the schema. Safe to call
// repeatedly on the same path.
//
// WAL mode keeps reads available during writes; the busy timeout covers
// lock contention from a second process looking at the same file.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}

	// sqlite supports a single writer; one connection avoids SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		sqlDB.Close()
		return nil, err
	}

	if err := db.AutoMigrate(
		&jobDatamodel.Job{},
		&workentryDatamodel.WorkEntry{},
		&expenseDatamodel.Expense{},
	); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

func applyPragmas(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// DB returns the underlying gorm handle for direct queries. Prefer the
// repositories for normal access.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside one atomic batch: every write fn performs is
// either fully visible afterward or not at all. fn returning an error
// rolls the whole batch back.
func (s *Store) Transaction(fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(fn)
}

// ReadTransaction runs fn inside one transaction so reads across several
// collections observe a consistent snapshot with no interleaved writes.
// sqlite transactions are snapshot-isolated, so a transaction that only
// reads needs no special mode.
func (s *Store) ReadTransaction(fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(fn)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Put inserts or overwrites a record by its primary key.
func Put[T any](db *gorm.DB, record *T) error {
	return db.Save(record).Error
}

// Get fetches a record by id. Returns gorm.ErrRecordNotFound when absent.
func Get[T any](db *gorm.DB, id string) (*T, error) {
	var record T
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes a record by id. Deleting an absent id is not an error.
func Delete[T any](db *gorm.DB, id string) error {
	var record T
	return db.Delete(&record, "id = ?", id).Error
}

// All returns every record of a collection.
func All[T any](db *gorm.DB) ([]T, error) {
	var records []T
	if err := db.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Range returns records whose indexed column lies within [lower, upper],
// bounds inclusive.
func Range[T any](db *gorm.DB, column string, lower, upper any) ([]T, error) {
	var records []T
	err := db.Where(fmt.Sprintf("%s >= ? AND %s <= ?", column, column), lower, upper).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ByIndex returns records whose indexed column equals value.
func ByIndex[T any](db *gorm.DB, column string, value any) ([]T, error) {
	var records []T
	if err := db.Where(fmt.Sprintf("%s = ?", column), value).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
