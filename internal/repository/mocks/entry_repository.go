package mocks

import (
	context "context"

	domain "github.com/ToucheSir/svblog/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// EntryRepository 是 repository.EntryRepository 的 Mock 实现
type EntryRepository struct {
	mock.Mock
}

func (_m *EntryRepository) Insert(ctx context.Context, entry *domain.Entry) error {
	ret := _m.Called(ctx, entry)
	return ret.Error(0)
}

func (_m *EntryRepository) ListAll(ctx context.Context) ([]domain.Entry, error) {
	ret := _m.Called(ctx)

	var r0 []domain.Entry
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Entry)
	}
	return r0, ret.Error(1)
}

func (_m *EntryRepository) FindOwned(ctx context.Context, id uint, owner string) (*domain.Entry, error) {
	ret := _m.Called(ctx, id, owner)

	var r0 *domain.Entry
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Entry)
	}
	return r0, ret.Error(1)
}

func (_m *EntryRepository) Delete(ctx context.Context, id uint) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}
