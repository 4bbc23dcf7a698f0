package repository

import (
	"context"

	"drawbit/internal/domain"
)

// RecordStore 负责单个用户的白板集合以及显示身份的持久化。
type RecordStore interface {
	// LoadAll 返回解码后的白板集合。
	// key 不存在或存储的数据无法解码时返回空集合，不视为错误。
	LoadAll(ctx context.Context) ([]domain.WhiteboardRecord, error)

	// SaveAll 用一次写入整体替换存储的集合，不做合并，后写者胜出。
	SaveAll(ctx context.Context, records []domain.WhiteboardRecord) error

	// LoadIdentity 返回存储的邮箱，缺失时返回 domain.DefaultUserEmail。
	LoadIdentity(ctx context.Context) (string, error)

	// SaveIdentity 保存当前用户的显示身份 (登录/注册成功时调用)。
	SaveIdentity(ctx context.Context, email string) error

	// ClearIdentity 删除存储的身份 (登出时调用)，之后 LoadIdentity 返回默认值。
	ClearIdentity(ctx context.Context) error
}

// RecordStoreFactory 根据用户 ID 返回该用户作用域内的 RecordStore。
type RecordStoreFactory func(ownerID uint) RecordStore
