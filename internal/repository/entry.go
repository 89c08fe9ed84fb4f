package repository

import (
	"context"

	"github.com/ToucheSir/svblog/internal/domain"
)

// EntryRepository 定义了博客文章的存储和检索操作。
type EntryRepository interface {
	// Insert 追加一条新文章记录，并回填存储层分配的 ID。
	Insert(ctx context.Context, entry *domain.Entry) error

	// ListAll 返回全部文章，按插入顺序 (ID 升序) 排列。
	// 读取端负责反转为最新在前的展示顺序。
	ListAll(ctx context.Context) ([]domain.Entry, error)

	// FindOwned 根据文章 ID 和所属用户名查找文章。
	// ID 不存在或所属用户不匹配时一律返回 ErrEntryNotFound。
	FindOwned(ctx context.Context, id uint, owner string) (*domain.Entry, error)

	// Delete 删除指定文章记录。
	Delete(ctx context.Context, id uint) error
}
