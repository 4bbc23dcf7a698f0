// Package mocks 提供基于 testify/mock 的仓库接口 Mock 实现，供测试使用。
package mocks

import (
	"context"

	"drawbit/internal/domain"

	"github.com/stretchr/testify/mock"
)

// UserRepository 是 repository.UserRepository 的 Mock
type UserRepository struct {
	mock.Mock
}

// FindByEmail 提供一个 Mock 函数
func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if u := args.Get(0); u != nil {
		user = u.(*domain.User)
	}
	return user, args.Error(1)
}

// Save 提供一个 Mock 函数
func (m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
