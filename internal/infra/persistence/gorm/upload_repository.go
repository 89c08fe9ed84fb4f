package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ToucheSir/svblog/internal/domain"
	"github.com/ToucheSir/svblog/internal/repository"
)

// GormUploadRepository 是 UploadRepository 接口的 GORM 实现
type GormUploadRepository struct {
	db *gorm.DB
}

// NewGormUploadRepository 创建 GormUploadRepository 实例
func NewGormUploadRepository(db *gorm.DB) *GormUploadRepository {
	if db == nil {
		panic("database connection cannot be nil for GormUploadRepository")
	}
	return &GormUploadRepository{db: db}
}

// Insert 实现追加一条上传记录
func (r *GormUploadRepository) Insert(ctx context.Context, upload *domain.Upload) error {
	err := r.db.WithContext(ctx).Create(upload).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: insert upload '%s' (owner: %s): %w", upload.Filename, upload.UserID, err)
	}
	return nil
}

// ListAll 实现按插入顺序返回全部上传记录
func (r *GormUploadRepository) ListAll(ctx context.Context) ([]domain.Upload, error) {
	var uploads []domain.Upload
	if err := r.db.WithContext(ctx).Order("id asc").Find(&uploads).Error; err != nil {
		return nil, fmt.Errorf("gorm: list all uploads: %w", err)
	}
	return uploads, nil
}

// FindOwned 实现按文件名和所属用户名查找上传记录
func (r *GormUploadRepository) FindOwned(ctx context.Context, filename, owner string) (*domain.Upload, error) {
	var upload domain.Upload
	err := r.db.WithContext(ctx).Where("filename = ? AND user_id = ?", filename, owner).First(&upload).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUploadNotFound
		}
		return nil, fmt.Errorf("gorm: find upload '%s' owned by '%s': %w", filename, owner, err)
	}
	return &upload, nil
}

// ExistsByFilename 实现检查指定文件名的记录是否存在
func (r *GormUploadRepository) ExistsByFilename(ctx context.Context, filename string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Upload{}).Where("filename = ?", filename).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count uploads named '%s': %w", filename, err)
	}
	return count > 0, nil
}

// Delete 实现删除指定上传记录
func (r *GormUploadRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Upload{}, id).Error; err != nil {
		return fmt.Errorf("gorm: delete upload %d: %w", id, err)
	}
	return nil
}
