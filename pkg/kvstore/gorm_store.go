package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is a single row of the key/value table.
type Entry struct {
	Key       string `gorm:"primaryKey;column:item_key;type:varchar(255)"`
	Value     string `gorm:"column:item_value;type:text"`
	UpdatedAt time.Time
}

// TableName pins the table name independent of GORM's naming strategy.
func (Entry) TableName() string { return "kv_entries" }

// GORMStore is a GORM implementation of Store.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a GORMStore and migrates its table.
func NewGORMStore(db *gorm.DB) (*GORMStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &GORMStore{db: db}, nil
}

// Get retrieves the value stored under key.
func (s *GORMStore) Get(ctx context.Context, key string) (string, error) {
	var entry Entry
	if err := s.db.WithContext(ctx).First(&entry, "item_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return entry.Value, nil
}

// Set upserts value under key.
func (s *GORMStore) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"item_value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *GORMStore) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&Entry{}, "item_key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}
