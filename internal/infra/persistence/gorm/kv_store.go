package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"drawbit/internal/domain"
)

// GormKVStore 是 KVStore 接口的 GORM (MySQL) 实现，数据存放在 kv_entries 表
type GormKVStore struct {
	db *gorm.DB
}

// NewGormKVStore 创建 GormKVStore 实例
func NewGormKVStore(db *gorm.DB) *GormKVStore {
	if db == nil {
		panic("database connection cannot be nil for GormKVStore")
	}
	return &GormKVStore{db: db}
}

// Get 实现按 key 读取
func (s *GormKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry domain.KVEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("gorm: get kv entry '%s': %w", key, err)
	}
	return entry.Value, true, nil
}

// Set 实现 upsert：主键冲突时整体覆盖 value
func (s *GormKVStore) Set(ctx context.Context, key, value string) error {
	entry := domain.KVEntry{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("gorm: upsert kv entry '%s': %w", key, err)
	}
	return nil
}

// Delete 实现按 key 删除
func (s *GormKVStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&domain.KVEntry{}).Error
	if err != nil {
		return fmt.Errorf("gorm: delete kv entry '%s': %w", key, err)
	}
	return nil
}
