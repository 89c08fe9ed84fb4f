package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ToucheSir/svblog/internal/domain"
	"github.com/ToucheSir/svblog/internal/repository"
	"github.com/ToucheSir/svblog/internal/repository/mocks"
	"github.com/ToucheSir/svblog/internal/service"
)

func newSessionService(sessionRepo *mocks.SessionRepository, userRepo *mocks.UserRepository) *service.SessionService {
	return service.NewSessionService(sessionRepo, userRepo, "blue", "admin")
}

// --- 测试 Load 方法 ---

func TestSessionService_Load_EmptyIDCreatesAnonymousSession(t *testing.T) {
	// Arrange
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)
	ctx := context.Background()

	mockSessionRepo.On("Save", ctx, mock.MatchedBy(func(sess *domain.Session) bool {
		return sess.ID != "" && sess.Identity == "" && sess.Theme == "blue"
	})).Return(nil).Once()

	// Act
	sess, err := sessionService.Load(ctx, "")

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, sess)
	assert.NotEmpty(t, sess.ID, "匿名会话也应分配 ID")
	assert.False(t, sess.Authenticated())
	assert.Equal(t, "blue", sess.Theme)

	mockSessionRepo.AssertExpectations(t)
}

func TestSessionService_Load_ExpiredIDCreatesFreshSession(t *testing.T) {
	// Arrange: Redis 中已无对应键，按过期处理
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)
	ctx := context.Background()
	staleID := "stale-session-id"

	mockSessionRepo.On("Find", ctx, staleID).Return(nil, repository.ErrSessionNotFound).Once()
	mockSessionRepo.On("Save", ctx, mock.AnythingOfType("*domain.Session")).Return(nil).Once()

	// Act
	sess, err := sessionService.Load(ctx, staleID)

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, sess)
	assert.NotEqual(t, staleID, sess.ID, "过期会话不应复用旧 ID")
	assert.False(t, sess.Authenticated())

	mockSessionRepo.AssertExpectations(t)
}

func TestSessionService_Load_ExistingSession(t *testing.T) {
	// Arrange
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)
	ctx := context.Background()

	stored := &domain.Session{ID: "live-id", Identity: "alice", PostingEnabled: true, Theme: "dark"}
	mockSessionRepo.On("Find", ctx, "live-id").Return(stored, nil).Once()

	// Act
	sess, err := sessionService.Load(ctx, "live-id")

	// Assert
	assert.NoError(t, err)
	assert.Same(t, stored, sess)
	assert.True(t, sess.Authenticated())

	mockSessionRepo.AssertExpectations(t)
	mockSessionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// --- 测试 Establish / Clear ---

func TestSessionService_Establish(t *testing.T) {
	// Arrange
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)
	ctx := context.Background()

	sess := &domain.Session{ID: "sid", Theme: "blue"}
	user := &domain.User{ID: 1, Name: "alice", PostingEnabled: false, Theme: "purple"}

	mockSessionRepo.On("Save", ctx, sess).Return(nil).Once()

	// Act
	err := sessionService.Establish(ctx, sess, user)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "alice", sess.Identity)
	// 发帖许可在登录时快照到会话
	assert.False(t, sess.PostingEnabled)
	assert.Equal(t, "purple", sess.Theme, "会话主题应切换为用户保存的主题")

	mockSessionRepo.AssertExpectations(t)
}

func TestSessionService_Clear(t *testing.T) {
	// Arrange
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)
	ctx := context.Background()

	sess := &domain.Session{ID: "sid", Identity: "alice", PostingEnabled: true, Theme: "dark"}
	mockSessionRepo.On("Save", ctx, sess).Return(nil).Once()

	// Act
	err := sessionService.Clear(ctx, sess)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "sid", sess.ID, "注销保留会话 ID")
	assert.False(t, sess.Authenticated())
	assert.Equal(t, "blue", sess.Theme, "注销后主题恢复为默认值")

	mockSessionRepo.AssertExpectations(t)
}

// --- 测试 SyncTheme ---

func TestSessionService_SyncTheme_NoWriteWhenUnchanged(t *testing.T) {
	// Arrange
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)

	sess := &domain.Session{ID: "sid", Theme: "green"}

	// Act
	err := sessionService.SyncTheme(context.Background(), sess, "green")

	// Assert
	assert.NoError(t, err)
	mockSessionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSessionService_SyncTheme_WritesOnChange(t *testing.T) {
	// Arrange
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)
	ctx := context.Background()

	sess := &domain.Session{ID: "sid", Theme: "blue"}
	mockSessionRepo.On("Save", ctx, sess).Return(nil).Once()

	// Act
	err := sessionService.SyncTheme(ctx, sess, "red")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "red", sess.Theme)
	mockSessionRepo.AssertExpectations(t)
}

// --- 测试访问控制判定 ---

func TestSessionService_CheckOwnerAccess_Owner(t *testing.T) {
	// Arrange
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)

	sess := &domain.Session{ID: "sid", Identity: "alice"}

	// Act
	err := sessionService.CheckOwnerAccess(context.Background(), sess, "alice")

	// Assert
	assert.NoError(t, err)
	// 身份匹配时无需查库
	mockUserRepo.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
}

func TestSessionService_CheckOwnerAccess_TargetMissing(t *testing.T) {
	// Arrange
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)
	ctx := context.Background()

	sess := &domain.Session{ID: "sid", Identity: "alice"}
	mockUserRepo.On("FindByName", ctx, "ghost").Return(nil, repository.ErrUserNotFound).Once()

	// Act
	err := sessionService.CheckOwnerAccess(ctx, sess, "ghost")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrUserNotFound))
	mockUserRepo.AssertExpectations(t)
}

func TestSessionService_CheckOwnerAccess_NotAuthorized(t *testing.T) {
	// Arrange: 已登录但访问他人的写操作
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)
	ctx := context.Background()

	sess := &domain.Session{ID: "sid", Identity: "alice"}
	mockUserRepo.On("FindByName", ctx, "bob").Return(&domain.User{ID: 2, Name: "bob"}, nil).Once()

	// Act
	err := sessionService.CheckOwnerAccess(ctx, sess, "bob")

	// Assert
	require.Error(t, err)
	var notAuthorized *service.NotAuthorizedError
	require.True(t, errors.As(err, &notAuthorized))
	assert.Equal(t, "bob", notAuthorized.Name, "错误应携带目标用户名，供提示文案使用")

	mockUserRepo.AssertExpectations(t)
}

func TestSessionService_CheckOwnerAccess_Anonymous(t *testing.T) {
	// Arrange: 未登录会话同样走 NotAuthorized 路径
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)
	ctx := context.Background()

	sess := &domain.Session{ID: "sid"}
	mockUserRepo.On("FindByName", ctx, "alice").Return(&domain.User{ID: 1, Name: "alice"}, nil).Once()

	// Act
	err := sessionService.CheckOwnerAccess(ctx, sess, "alice")

	// Assert
	var notAuthorized *service.NotAuthorizedError
	require.True(t, errors.As(err, &notAuthorized))
	assert.Equal(t, "alice", notAuthorized.Name)
}

func TestSessionService_CheckAdminAccess(t *testing.T) {
	// Arrange
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)

	// Act & Assert: 管理员放行
	assert.NoError(t, sessionService.CheckAdminAccess(&domain.Session{ID: "sid", Identity: "admin"}))

	// 普通用户和匿名会话都被拒绝
	var notAuthorized *service.NotAuthorizedError
	err := sessionService.CheckAdminAccess(&domain.Session{ID: "sid", Identity: "alice"})
	require.True(t, errors.As(err, &notAuthorized))
	assert.Equal(t, "admin", notAuthorized.Name)

	err = sessionService.CheckAdminAccess(&domain.Session{ID: "sid"})
	assert.Error(t, err)
}

// --- 测试闪现消息 ---

func TestSessionService_Flash_ErrorIsSwallowed(t *testing.T) {
	// Arrange: 闪现写入失败不应影响请求处理
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)
	ctx := context.Background()

	sess := &domain.Session{ID: "sid"}
	mockSessionRepo.On("PushFlash", ctx, "sid", "Post successful!").
		Return(errors.New("redis: connection refused")).
		Once()

	// Act: 不返回错误，也不 panic
	sessionService.Flash(ctx, sess, "Post successful!")

	mockSessionRepo.AssertExpectations(t)
}

func TestSessionService_PopFlashes(t *testing.T) {
	// Arrange
	mockSessionRepo := new(mocks.SessionRepository)
	mockUserRepo := new(mocks.UserRepository)
	sessionService := newSessionService(mockSessionRepo, mockUserRepo)
	ctx := context.Background()

	sess := &domain.Session{ID: "sid"}
	mockSessionRepo.On("PopFlashes", ctx, "sid").
		Return([]string{"Successfully logged in.", "Post successful!"}, nil).
		Once()

	// Act
	messages := sessionService.PopFlashes(ctx, sess)

	// Assert
	assert.Equal(t, []string{"Successfully logged in.", "Post successful!"}, messages)
	mockSessionRepo.AssertExpectations(t)
}
