package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLStore is a gorm backed Store. Each key is one row in kv_entries.
type SQLStore struct {
	db *gorm.DB
}

// entry represents a single stored value
type entry struct {
	Key       string `gorm:"column:kv_key;primaryKey;size:255"`
	Value     string
	UpdatedAt time.Time
}

func (entry) TableName() string {
	return "kv_entries"
}

// NewSQL creates a SQLStore on db. The kv_entries table is created if missing.
func NewSQL(db *gorm.DB) (*SQLStore, error) {
	s := &SQLStore{db: db}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return s, nil
}

// OpenSQLite opens (or creates) a sqlite database at path and returns a SQLStore on it
func OpenSQLite(path string) (*SQLStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(filepath.Dir(p), "state.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return NewSQL(db)
}

func (s *SQLStore) Get(key string) (string, bool, error) {
	e := &entry{}
	tx := s.db.Where("kv_key = ?", key).Limit(1).Find(e)
	if tx.Error != nil {
		return "", false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return "", false, nil
	}
	return e.Value, true, nil
}

func (s *SQLStore) Set(key, value string) error {
	e := &entry{}
	// a map so that an empty value still overwrites
	tx := s.db.Where(entry{Key: key}).Assign(map[string]any{"value": value}).FirstOrCreate(e)
	return tx.Error
}

func (s *SQLStore) Delete(key string) error {
	return s.db.Delete(&entry{}, "kv_key = ?", key).Error
}
