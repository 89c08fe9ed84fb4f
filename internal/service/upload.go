package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"github.com/ToucheSir/svblog/internal/domain"
	"github.com/ToucheSir/svblog/internal/repository"
)

// allowedExtensions 是允许上传的文件扩展名集合 (小写比较)。
var allowedExtensions = map[string]struct{}{
	"pdf": {}, "png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "html": {}, "css": {},
}

// BlobStore 抽象了文件字节的存储位置，磁盘实现见 internal/infra/storage。
type BlobStore interface {
	Path(name string) string
	Exists(name string) bool
	Save(name string, src io.Reader) error
	Remove(name string) error
	List() ([]string, error)
}

// UploadService 负责上传文件的验证、命名、存储和删除。
type UploadService struct {
	uploadRepo repository.UploadRepository
	store      BlobStore

	// 冲突扫描和写入之间按文件名互斥。
	// 并发上传同名文件的竞争是接受的边界情况，这里只保证进程内不互相覆盖。
	mu sync.Mutex
}

// NewUploadService 创建 UploadService 实例。
func NewUploadService(uploadRepo repository.UploadRepository, store BlobStore) *UploadService {
	if uploadRepo == nil {
		panic("UploadRepository cannot be nil for UploadService")
	}
	if store == nil {
		panic("BlobStore cannot be nil for UploadService")
	}
	return &UploadService{uploadRepo: uploadRepo, store: store}
}

// Store 验证并保存一个上传文件，返回写入的记录 (含最终文件名)。
// 文件名先清洗掉路径穿越和不安全字符，再用 (1)、(2)… 后缀解决同名冲突，
// 扩展名始终保留。字节先落盘，随后写入数据库记录。
func (s *UploadService) Store(ctx context.Context, owner, suppliedFilename string, src io.Reader) (*domain.Upload, error) {
	logCtx := logrus.WithFields(logrus.Fields{"owner": owner, "filename": suppliedFilename})

	base, ext, err := splitAllowedFilename(suppliedFilename)
	if err != nil {
		logCtx.Warn("Upload rejected: invalid filename or file type")
		return nil, err
	}

	s.mu.Lock()
	final := s.resolveCollision(base, ext)
	if err := s.store.Save(final, src); err != nil {
		s.mu.Unlock()
		logCtx.WithError(err).Error("Failed to write upload to storage")
		return nil, ErrInternalServer
	}
	s.mu.Unlock()

	upload := &domain.Upload{
		UserID:   owner,
		Filename: final,
		Filetype: ext,
	}
	if err := s.uploadRepo.Insert(ctx, upload); err != nil {
		logCtx.WithError(err).WithField("final_filename", final).Error("Failed to insert upload record")
		// 落盘的字节留给后台清理任务回收
		return nil, ErrInternalServer
	}

	logCtx.WithField("final_filename", final).Info("File uploaded")
	return upload, nil
}

// Delete 删除请求者拥有的上传文件。
// 先移除磁盘文件 (容忍文件已不存在)，再删除数据库记录。
func (s *UploadService) Delete(ctx context.Context, owner, filename string) error {
	logCtx := logrus.WithFields(logrus.Fields{"owner": owner, "filename": filename})

	upload, err := s.uploadRepo.FindOwned(ctx, filename, owner)
	if err != nil {
		if errors.Is(err, repository.ErrUploadNotFound) {
			logCtx.Warn("Upload delete rejected: no matching record for owner")
			return ErrUploadNotFound
		}
		logCtx.WithError(err).Error("Database error finding upload for delete")
		return ErrInternalServer
	}

	if err := s.store.Remove(upload.Filename); err != nil {
		logCtx.WithError(err).Error("Failed to remove stored file")
		return ErrInternalServer
	}
	if err := s.uploadRepo.Delete(ctx, upload.ID); err != nil {
		logCtx.WithError(err).Error("Failed to delete upload record")
		return ErrInternalServer
	}

	logCtx.Info("File deleted")
	return nil
}

// List 返回全部上传记录，按插入顺序排列。
func (s *UploadService) List(ctx context.Context) ([]domain.Upload, error) {
	uploads, err := s.uploadRepo.ListAll(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list uploads")
		return nil, ErrInternalServer
	}
	return uploads, nil
}

// Path 返回某个已存储文件的磁盘路径，供下载路由回传字节。
// 剥掉任何目录成分，请求只能命中存储目录内的文件。
func (s *UploadService) Path(filename string) string {
	return s.store.Path(filepath.Base(filename))
}

// resolveCollision 在存储目录内为清洗后的文件名找到一个未占用的变体。
// 扫描是确定性的：base.ext、base(1).ext、base(2).ext… 取第一个空位。
func (s *UploadService) resolveCollision(base, ext string) string {
	candidate := base + "." + ext
	for n := 1; s.store.Exists(candidate); n++ {
		candidate = fmt.Sprintf("%s(%d).%s", base, n, ext)
	}
	return candidate
}

// splitAllowedFilename 清洗文件名并校验扩展名。
// 返回清洗后的主名和小写扩展名。
func splitAllowedFilename(name string) (base, ext string, err error) {
	// 去掉路径成分，防止目录穿越
	name = filepath.Base(name)

	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return "", "", ErrInvalidFile
	}
	ext = strings.ToLower(name[dot+1:])
	if _, ok := allowedExtensions[ext]; !ok {
		return "", "", ErrInvalidFile
	}

	// slug 化主名：去掉不安全字符，结果只含字母数字和连字符
	base = slug.Make(name[:dot])
	if base == "" {
		base = "file"
	}
	return base, ext, nil
}
