// Package store 在通用的 KVStore 之上实现按用户划分的白板记录存储。
//
// 每个用户的数据使用两个逻辑 key：drawbit-whiteboards (JSON 数组) 和 user-email (纯字符串)，
// 物理 key 形如 "user:<ownerID>:<逻辑 key>"。
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"drawbit/internal/domain"
	"drawbit/internal/repository"
)

// RecordStore 是 repository.RecordStore 的实现，作用域为单个用户
type RecordStore struct {
	kv      repository.KVStore
	ownerID uint
}

// NewRecordStore 创建指定用户的 RecordStore
func NewRecordStore(kv repository.KVStore, ownerID uint) *RecordStore {
	if kv == nil {
		panic("KVStore cannot be nil for RecordStore")
	}
	return &RecordStore{kv: kv, ownerID: ownerID}
}

// NewFactory 返回一个按用户创建 RecordStore 的工厂
func NewFactory(kv repository.KVStore) repository.RecordStoreFactory {
	return func(ownerID uint) repository.RecordStore {
		return NewRecordStore(kv, ownerID)
	}
}

// Key 返回用户作用域内的物理 key
func Key(ownerID uint, name string) string {
	return fmt.Sprintf("user:%d:%s", ownerID, name)
}

// LoadAll 读取白板集合。
// key 不存在、值为空或解码失败时都返回空集合；解码失败会记录 WARN 日志，但不返回给调用者。
func (s *RecordStore) LoadAll(ctx context.Context) ([]domain.WhiteboardRecord, error) {
	key := Key(s.ownerID, domain.WhiteboardsKey)
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load whiteboards for user %d: %w", s.ownerID, err)
	}
	if !found || raw == "" {
		return []domain.WhiteboardRecord{}, nil
	}

	var records []domain.WhiteboardRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": s.ownerID,
			"key":     key,
			"size":    len(raw),
		}).WithError(err).Warn("Stored whiteboard collection is corrupted, treating it as empty")
		return []domain.WhiteboardRecord{}, nil
	}
	if records == nil { // 存储的是 "null"
		records = []domain.WhiteboardRecord{}
	}
	return records, nil
}

// SaveAll 用一次写入替换整个集合
func (s *RecordStore) SaveAll(ctx context.Context, records []domain.WhiteboardRecord) error {
	if records == nil {
		records = []domain.WhiteboardRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal whiteboards for user %d: %w", s.ownerID, err)
	}
	if err := s.kv.Set(ctx, Key(s.ownerID, domain.WhiteboardsKey), string(data)); err != nil {
		return fmt.Errorf("save whiteboards for user %d: %w", s.ownerID, err)
	}
	return nil
}

// LoadIdentity 读取用户邮箱，缺失时返回默认值
func (s *RecordStore) LoadIdentity(ctx context.Context) (string, error) {
	email, found, err := s.kv.Get(ctx, Key(s.ownerID, domain.UserEmailKey))
	if err != nil {
		return "", fmt.Errorf("load identity for user %d: %w", s.ownerID, err)
	}
	if !found || email == "" {
		return domain.DefaultUserEmail, nil
	}
	return email, nil
}

// SaveIdentity 保存用户邮箱
func (s *RecordStore) SaveIdentity(ctx context.Context, email string) error {
	if err := s.kv.Set(ctx, Key(s.ownerID, domain.UserEmailKey), email); err != nil {
		return fmt.Errorf("save identity for user %d: %w", s.ownerID, err)
	}
	return nil
}

// ClearIdentity 删除用户邮箱
func (s *RecordStore) ClearIdentity(ctx context.Context) error {
	if err := s.kv.Delete(ctx, Key(s.ownerID, domain.UserEmailKey)); err != nil {
		return fmt.Errorf("clear identity for user %d: %w", s.ownerID, err)
	}
	return nil
}
