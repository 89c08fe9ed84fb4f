package mocks

import (
	context "context"

	domain "github.com/ToucheSir/svblog/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// UploadRepository 是 repository.UploadRepository 的 Mock 实现
type UploadRepository struct {
	mock.Mock
}

func (_m *UploadRepository) Insert(ctx context.Context, upload *domain.Upload) error {
	ret := _m.Called(ctx, upload)
	return ret.Error(0)
}

func (_m *UploadRepository) ListAll(ctx context.Context) ([]domain.Upload, error) {
	ret := _m.Called(ctx)

	var r0 []domain.Upload
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Upload)
	}
	return r0, ret.Error(1)
}

func (_m *UploadRepository) FindOwned(ctx context.Context, filename, owner string) (*domain.Upload, error) {
	ret := _m.Called(ctx, filename, owner)

	var r0 *domain.Upload
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Upload)
	}
	return r0, ret.Error(1)
}

func (_m *UploadRepository) ExistsByFilename(ctx context.Context, filename string) (bool, error) {
	ret := _m.Called(ctx, filename)
	return ret.Bool(0), ret.Error(1)
}

func (_m *UploadRepository) Delete(ctx context.Context, id uint) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}
