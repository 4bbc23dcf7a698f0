package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// KVStore 是 repository.KVStore 的 Mock，用于模拟后端故障
type KVStore struct {
	mock.Mock
}

// Get 提供一个 Mock 函数
func (m *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

// Set 提供一个 Mock 函数
func (m *KVStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// Delete 提供一个 Mock 函数
func (m *KVStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
