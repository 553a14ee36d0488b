// Package gormstore implements store.Store on an embedded SQLite database through GORM.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/store"
)

// Unique keys over nullable columns. SQLite treats NULLs as distinct, so the
// null side is folded to 0.
var expressionIndexes = []string{
	`create unique index if not exists categories_name_parent_uidx on categories (name, coalesce(parent_id, 0))`,
	`create unique index if not exists price_values_cell_uidx on price_values (country_id, category_id, coalesce(module_id, 0))`,
}

type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err = db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}
	for _, stmt := range expressionIndexes {
		if err = db.Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) InTx(ctx context.Context, fn func(store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return constants.ErrDBNotFound
	}
	return fmt.Errorf("%w: %w", constants.ErrStorage, err)
}

func nullableEq(db *gorm.DB, col string, v *int64) *gorm.DB {
	if v == nil {
		return db.Where(col + " IS NULL")
	}
	return db.Where(col+" = ?", *v)
}

var _ store.Store = (*Store)(nil)
