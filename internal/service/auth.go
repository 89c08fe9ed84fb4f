package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ToucheSir/svblog/internal/domain"
	"github.com/ToucheSir/svblog/internal/repository"
)

// usernamePattern 限定用户名字符集：字母、数字、下划线。
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// AllowedThemes 是主题设置允许的取值集合，防止任意字符串进入模板。
var AllowedThemes = []string{"blue", "green", "red", "purple", "dark"}

// AuthService 负责账号注册、登录验证和用户记录的修改。
type AuthService struct {
	userRepo     repository.UserRepository
	defaultTheme string
	gracePeriod  time.Duration // 超过该时长的账号在下次登录时被永久禁止发帖；0 表示关闭该规则
}

// NewAuthService 创建 AuthService 实例。
// gracePeriod 为 0 时不启用发帖宽限期规则。
func NewAuthService(userRepo repository.UserRepository, defaultTheme string, gracePeriod time.Duration) *AuthService {
	if userRepo == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if defaultTheme == "" {
		defaultTheme = "blue"
	}
	return &AuthService{
		userRepo:     userRepo,
		defaultTheme: defaultTheme,
		gracePeriod:  gracePeriod,
	}
}

// Register 处理账号注册。
// 验证用户名字符集、密码非空、两次输入一致和用户名唯一性，任何一项失败都不会创建记录。
func (s *AuthService) Register(ctx context.Context, username, password, confirm string) (*domain.User, error) {
	logCtx := logrus.WithField("username", username)

	// 1. 表单验证
	if !usernamePattern.MatchString(username) {
		logCtx.Warn("Registration rejected: invalid username characters")
		return nil, ErrInvalidUsername
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	// 2. 唯一性检查
	existing, err := s.userRepo.FindByName(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		logCtx.WithError(err).Error("Database error checking username availability")
		return nil, ErrInternalServer
	}
	if existing != nil {
		logCtx.Warn("Registration rejected: username already taken")
		return nil, ErrUsernameTaken
	}

	// 3. 哈希密码，组装用户记录
	hash, err := hashPassword(password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternalServer
	}
	user := &domain.User{
		Name:           username,
		PasswordHash:   hash,
		CreationDate:   time.Now(),
		PostingEnabled: true,
		Theme:          s.defaultTheme,
	}

	// 4. 保存用户
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// 唯一性检查和保存之间的竞争窗口，按同名冲突处理
			logCtx.WithError(err).Warn("Registration failed: duplicate entry on save")
			return nil, ErrUsernameTaken
		}
		logCtx.WithError(err).Error("Database error during user creation")
		return nil, ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User registered successfully")
	return user, nil
}

// Login 验证登录凭据并返回用户记录。
// 账号超过宽限期时，先把 posting_enabled=false 持久化到用户记录，再放行登录。
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	logCtx := logrus.WithField("username", username)

	// 1. 查找用户
	user, err := s.userRepo.FindByName(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("Login attempt failed: user not found")
			return nil, ErrUserNotFound
		}
		logCtx.WithError(err).Error("Database error finding user during login")
		return nil, ErrInternalServer
	}

	// 2. 验证密码
	if !checkPassword(password, user.PasswordHash) {
		logCtx.Warn("Login attempt failed: invalid password")
		return nil, ErrWrongPassword
	}

	// 3. 宽限期检查：过期账号的博客固定为只读快照
	if s.gracePeriod > 0 && user.PostingEnabled &&
		time.Now().After(user.CreationDate.Add(s.gracePeriod)) {
		user.PostingEnabled = false
		if err := s.userRepo.Save(ctx, user); err != nil {
			logCtx.WithError(err).Error("Failed to persist posting_enabled=false after grace period")
			return nil, ErrInternalServer
		}
		logCtx.Info("Posting disabled: account grace period expired")
	}

	logCtx.WithField("user_id", user.ID).Info("User logged in successfully")
	return user, nil
}

// UpdateTheme 持久化用户的主题选择。
func (s *AuthService) UpdateTheme(ctx context.Context, username, theme string) error {
	logCtx := logrus.WithFields(logrus.Fields{"username": username, "theme": theme})

	if !isAllowedTheme(theme) {
		logCtx.Warn("Theme change rejected: unknown theme")
		return ErrInvalidTheme
	}

	user, err := s.userRepo.FindByName(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		logCtx.WithError(err).Error("Database error finding user for theme change")
		return ErrInternalServer
	}

	user.Theme = theme
	if err := s.userRepo.Save(ctx, user); err != nil {
		logCtx.WithError(err).Error("Failed to persist theme change")
		return ErrInternalServer
	}

	logCtx.Info("Theme updated")
	return nil
}

// ListUsers 返回全部用户，供管理员总览页使用。
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		logrus.WithError(err).Error("Database error listing users")
		return nil, ErrInternalServer
	}
	return users, nil
}

// FindUser 按用户名查找用户记录。
func (s *AuthService) FindUser(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.FindByName(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("username", username).Error("Database error finding user")
		return nil, ErrInternalServer
	}
	return user, nil
}

// --- 私有辅助函数 ---

// hashPassword 使用 bcrypt 对密码进行哈希处理
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from password: %w", err)
	}
	return string(bytes), nil
}

// checkPassword 验证提供的密码是否与存储的哈希匹配
func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func isAllowedTheme(theme string) bool {
	for _, t := range AllowedThemes {
		if t == theme {
			return true
		}
	}
	return false
}
