package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is the row layout of the SQL-backed store.
type Entry struct {
	Key       string         `gorm:"primaryKey;size:191"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName pins the table name regardless of naming strategy.
func (Entry) TableName() string { return "kv_entries" }

// SQLStore persists values in a single key/value table through gorm. Values must be JSON.
type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLStore migrates the kv table and returns a store backed by db.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where(map[string]any{"key": key}).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, ioError("get", key, err)
	}
	return string(entry.Value), true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: datatypes.JSON(value), UpdatedAt: s.now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	return ioError("set", key, err)
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	return ioError("remove", key, s.db.WithContext(ctx).Where(map[string]any{"key": key}).Delete(&Entry{}).Error)
}

func (s *SQLStore) RemoveMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return ioError("remove_many", "", s.db.WithContext(ctx).Where(map[string]any{"key": keys}).Delete(&Entry{}).Error)
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
