package mocks

import (
	context "context"

	domain "github.com/ToucheSir/svblog/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// SessionRepository 是 repository.SessionRepository 的 Mock 实现
type SessionRepository struct {
	mock.Mock
}

func (_m *SessionRepository) Find(ctx context.Context, id string) (*domain.Session, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Session)
	}
	return r0, ret.Error(1)
}

func (_m *SessionRepository) Save(ctx context.Context, sess *domain.Session) error {
	ret := _m.Called(ctx, sess)
	return ret.Error(0)
}

func (_m *SessionRepository) Delete(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *SessionRepository) PushFlash(ctx context.Context, id string, message string) error {
	ret := _m.Called(ctx, id, message)
	return ret.Error(0)
}

func (_m *SessionRepository) PopFlashes(ctx context.Context, id string) ([]string, error) {
	ret := _m.Called(ctx, id)

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0, ret.Error(1)
}
