// Package repository 定义了持久层的抽象接口 (Record Store)。
// 具体实现位于 internal/infra 下，可以用内存假实现替换以便测试。
package repository

import (
	"context"

	"github.com/ToucheSir/svblog/internal/domain"
)

// UserRepository 定义了用户数据的存储和检索操作。
type UserRepository interface {
	// FindByName 根据用户名查找用户。
	// 如果用户不存在，返回 ErrUserNotFound。
	FindByName(ctx context.Context, name string) (*domain.User, error)

	// Save 保存用户信息。
	// 如果用户已存在 (基于 ID)，则更新；否则创建新用户。
	// 用户名冲突时返回 ErrDuplicateEntry。
	Save(ctx context.Context, user *domain.User) error

	// ListAll 返回所有用户，按创建时间升序排列。供管理员总览使用。
	ListAll(ctx context.Context) ([]domain.User, error)
}
