package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ToucheSir/svblog/internal/domain"
	"github.com/ToucheSir/svblog/internal/repository"
)

// SessionService 管理会话生命周期、闪现消息和访问控制判定。
type SessionService struct {
	sessionRepo  repository.SessionRepository
	userRepo     repository.UserRepository
	defaultTheme string
	adminName    string
}

// NewSessionService 创建 SessionService 实例。
func NewSessionService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository, defaultTheme, adminName string) *SessionService {
	if sessionRepo == nil {
		panic("SessionRepository cannot be nil for SessionService")
	}
	if userRepo == nil {
		panic("UserRepository cannot be nil for SessionService")
	}
	if defaultTheme == "" {
		defaultTheme = "blue"
	}
	if adminName == "" {
		adminName = "admin"
	}
	return &SessionService{
		sessionRepo:  sessionRepo,
		userRepo:     userRepo,
		defaultTheme: defaultTheme,
		adminName:    adminName,
	}
}

// Load 根据会话 ID 取回会话状态。
// ID 为空或会话已过期时建立一个新的匿名会话，主题初始化为系统默认值。
func (s *SessionService) Load(ctx context.Context, id string) (*domain.Session, error) {
	if id != "" {
		sess, err := s.sessionRepo.Find(ctx, id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, repository.ErrSessionNotFound) {
			logrus.WithError(err).Error("Failed to load session state")
			return nil, ErrInternalServer
		}
		// 会话已过期，落入新建逻辑
	}

	sess := &domain.Session{
		ID:    uuid.NewString(),
		Theme: s.defaultTheme,
	}
	if err := s.sessionRepo.Save(ctx, sess); err != nil {
		logrus.WithError(err).Error("Failed to create anonymous session")
		return nil, ErrInternalServer
	}
	return sess, nil
}

// Establish 在登录成功后把用户身份写入会话。
// 发帖许可在此刻快照；主题采用用户记录中存储的值。
func (s *SessionService) Establish(ctx context.Context, sess *domain.Session, user *domain.User) error {
	sess.Identity = user.Name
	sess.PostingEnabled = user.PostingEnabled
	sess.Theme = user.Theme
	if err := s.sessionRepo.Save(ctx, sess); err != nil {
		logrus.WithError(err).WithField("username", user.Name).Error("Failed to establish session")
		return ErrInternalServer
	}
	return nil
}

// Clear 注销会话：清除身份和发帖标志，主题恢复为系统默认值。
func (s *SessionService) Clear(ctx context.Context, sess *domain.Session) error {
	sess.Identity = ""
	sess.PostingEnabled = false
	sess.Theme = s.defaultTheme
	if err := s.sessionRepo.Save(ctx, sess); err != nil {
		logrus.WithError(err).Error("Failed to clear session")
		return ErrInternalServer
	}
	return nil
}

// SyncTheme 把会话主题同步为给定值 (渲染某个用户的博客页或主题变更后调用)。
// 值未变化时不产生写入。
func (s *SessionService) SyncTheme(ctx context.Context, sess *domain.Session, theme string) error {
	if sess.Theme == theme {
		return nil
	}
	sess.Theme = theme
	if err := s.sessionRepo.Save(ctx, sess); err != nil {
		logrus.WithError(err).Error("Failed to sync session theme")
		return ErrInternalServer
	}
	return nil
}

// Flash 给会话追加一条闪现消息。
// 闪现失败只记录日志，不中断正在处理的请求。
func (s *SessionService) Flash(ctx context.Context, sess *domain.Session, message string) {
	if err := s.sessionRepo.PushFlash(ctx, sess.ID, message); err != nil {
		logrus.WithError(err).WithField("session_id", sess.ID).Warn("Failed to push flash message")
	}
}

// PopFlashes 取出会话累积的全部闪现消息。
func (s *SessionService) PopFlashes(ctx context.Context, sess *domain.Session) []string {
	messages, err := s.sessionRepo.PopFlashes(ctx, sess.ID)
	if err != nil {
		logrus.WithError(err).WithField("session_id", sess.ID).Warn("Failed to pop flash messages")
		return nil
	}
	return messages
}

// CheckOwnerAccess 判定当前会话是否有权以 target 的身份执行操作。
// 会话已以 target 登录时返回 nil；target 不存在时返回 ErrUserNotFound；
// 否则返回 NotAuthorizedError。发帖、上传、删除和主题变更之前都要经过这道闸门。
func (s *SessionService) CheckOwnerAccess(ctx context.Context, sess *domain.Session, target string) error {
	if sess.Authenticated() && sess.Identity == target {
		return nil
	}
	if _, err := s.userRepo.FindByName(ctx, target); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		logrus.WithError(err).WithField("target", target).Error("Database error during access check")
		return ErrInternalServer
	}
	return &NotAuthorizedError{Name: target}
}

// CheckAdminAccess 判定当前会话是否为管理员。
// 管理员身份是唯一的特权路径，没有其他提权方式。
func (s *SessionService) CheckAdminAccess(sess *domain.Session) error {
	if sess.Authenticated() && sess.Identity == s.adminName {
		return nil
	}
	return &NotAuthorizedError{Name: s.adminName}
}
