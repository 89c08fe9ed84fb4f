package repository

import (
	"context"

	"github.com/ToucheSir/svblog/internal/domain"
)

// UploadRepository 定义了上传文件记录的存储和检索操作。
type UploadRepository interface {
	// Insert 追加一条新上传记录，并回填存储层分配的 ID。
	Insert(ctx context.Context, upload *domain.Upload) error

	// ListAll 返回全部上传记录，按插入顺序排列。
	ListAll(ctx context.Context) ([]domain.Upload, error)

	// FindOwned 根据文件名和所属用户名查找上传记录。
	// 文件名不存在或所属用户不匹配时一律返回 ErrUploadNotFound。
	FindOwned(ctx context.Context, filename, owner string) (*domain.Upload, error)

	// ExistsByFilename 检查指定文件名的记录是否存在。
	// 供后台清理任务判断磁盘文件是否已成为孤儿。
	ExistsByFilename(ctx context.Context, filename string) (bool, error)

	// Delete 删除指定上传记录。
	Delete(ctx context.Context, id uint) error
}
