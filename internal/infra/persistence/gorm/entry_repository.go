package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ToucheSir/svblog/internal/domain"
	"github.com/ToucheSir/svblog/internal/repository"
)

// GormEntryRepository 是 EntryRepository 接口的 GORM 实现
type GormEntryRepository struct {
	db *gorm.DB
}

// NewGormEntryRepository 创建 GormEntryRepository 实例
func NewGormEntryRepository(db *gorm.DB) *GormEntryRepository {
	if db == nil {
		panic("database connection cannot be nil for GormEntryRepository")
	}
	return &GormEntryRepository{db: db}
}

// Insert 实现追加一条文章记录，GORM 会回填自增 ID
func (r *GormEntryRepository) Insert(ctx context.Context, entry *domain.Entry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("gorm: insert entry (owner: %s): %w", entry.UserID, err)
	}
	return nil
}

// ListAll 实现按插入顺序返回全部文章
func (r *GormEntryRepository) ListAll(ctx context.Context) ([]domain.Entry, error) {
	var entries []domain.Entry
	if err := r.db.WithContext(ctx).Order("id asc").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("gorm: list all entries: %w", err)
	}
	return entries, nil
}

// FindOwned 实现按 ID 和所属用户名查找文章
// 所属用户不匹配与记录不存在同样返回 ErrEntryNotFound，避免泄露他人文章的存在性
func (r *GormEntryRepository) FindOwned(ctx context.Context, id uint, owner string) (*domain.Entry, error) {
	var entry domain.Entry
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEntryNotFound
		}
		return nil, fmt.Errorf("gorm: find entry %d owned by '%s': %w", id, owner, err)
	}
	return &entry, nil
}

// Delete 实现删除指定文章记录
func (r *GormEntryRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Entry{}, id).Error; err != nil {
		return fmt.Errorf("gorm: delete entry %d: %w", id, err)
	}
	return nil
}
