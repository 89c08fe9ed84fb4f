// Package mocks 提供 repository 接口的 testify Mock 实现，供 service 层单元测试使用。
package mocks

import (
	context "context"

	domain "github.com/ToucheSir/svblog/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// UserRepository 是 repository.UserRepository 的 Mock 实现
type UserRepository struct {
	mock.Mock
}

func (_m *UserRepository) FindByName(ctx context.Context, name string) (*domain.User, error) {
	ret := _m.Called(ctx, name)

	var r0 *domain.User
	if rf, ok := ret.Get(0).(func(context.Context, string) *domain.User); ok {
		r0 = rf(ctx, name)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.User)
	}
	return r0, ret.Error(1)
}

func (_m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	ret := _m.Called(ctx, user)
	return ret.Error(0)
}

func (_m *UserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	ret := _m.Called(ctx)

	var r0 []domain.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.User)
	}
	return r0, ret.Error(1)
}
