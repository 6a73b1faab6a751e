package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is the row stored by the gorm backend.
type Entry struct {
	Key       string `gorm:"column:storage_key;primaryKey"`
	Value     []byte `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return TableName }

type gormBackend struct {
	db *gorm.DB
	// mu serializes Update; SQLite fails a deferred transaction that
	// upgrades to a write lock while another writer holds it.
	mu  sync.Mutex
	log *logrus.Logger
}

// NewGormBackend migrates the entries table and returns a backend over db.
// It is used with the SQLite driver.
func NewGormBackend(db *gorm.DB, logger *logrus.Logger) (Backend, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		logger.Errorf("Storage: failed to migrate %s table: %v", TableName, err)
		return nil, fmt.Errorf("could not migrate storage table: %w", err)
	}
	logger.Infof("Storage: gorm backend ready (table %s)", TableName)
	return &gormBackend{db: db, log: logger}, nil
}

func (g *gormBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	return getEntry(g.db.WithContext(ctx), key)
}

func (g *gormBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := putEntry(g.db.WithContext(ctx), key, value); err != nil {
		g.log.Errorf("Storage: failed to write key %s: %v", key, err)
		return err
	}
	return nil
}

func (g *gormBackend) Remove(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := g.db.WithContext(ctx).Delete(&Entry{}, "storage_key = ?", key).Error; err != nil {
		g.log.Errorf("Storage: failed to delete key %s: %v", key, err)
		return fmt.Errorf("could not delete storage key: %w", err)
	}
	return nil
}

func (g *gormBackend) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := validateKey(key); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, found, err := getEntry(tx, key)
		if err != nil {
			return err
		}
		next, remove, err := fn(current, found)
		if err != nil {
			return err
		}
		if remove {
			if err := tx.Delete(&Entry{}, "storage_key = ?", key).Error; err != nil {
				return fmt.Errorf("could not delete storage key: %w", err)
			}
			return nil
		}
		return putEntry(tx, key, next)
	})
}

func getEntry(db *gorm.DB, key string) ([]byte, bool, error) {
	var row Entry
	err := db.Where("storage_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not read storage key: %w", err)
	}
	return row.Value, true, nil
}

func putEntry(db *gorm.DB, key string, value []byte) error {
	row := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("could not write storage key: %w", err)
	}
	return nil
}
